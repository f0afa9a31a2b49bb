package ocean

import (
	"OceanFFT/internal/compute"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// checker is (−1)^(x+z): the lattice is centred on k = 0, which shifts the
// transform by N/2 in each axis.
func checker(x, z int) float64 {
	if (x+z)&1 == 1 {
		return -1
	}
	return 1
}

// Invert applies the sign correction to the transformed channels and packs
// the real parts into the displacement map (X, height, Z). Slopes are
// written when both the channels and the destination carry them.
func Invert(dev *compute.Dispatcher, ch *Channels, disp []mgl32.Vec3, slopes []mgl32.Vec2) error {
	n := ch.N
	if len(disp) != n*n {
		return fmt.Errorf("ocean: displacement map has %d samples, need %d", len(disp), n*n)
	}
	withSlopes := ch.HasSlopes() && len(slopes) == n*n

	return dev.Dispatch("inversion", n, func(z int) {
		for x := 0; x < n; x++ {
			i := z*n + x
			sign := checker(x, z)
			disp[i] = mgl32.Vec3{
				float32(sign * real(ch.DispX[i])),
				float32(sign * real(ch.Height[i])),
				float32(sign * real(ch.DispZ[i])),
			}
			if withSlopes {
				slopes[i] = mgl32.Vec2{
					float32(sign * real(ch.SlopeX[i])),
					float32(sign * real(ch.SlopeZ[i])),
				}
			}
		}
	})
}
