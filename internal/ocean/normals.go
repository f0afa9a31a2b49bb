package ocean

import (
	"OceanFFT/internal/compute"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

var up = mgl32.Vec3{0, 1, 0}

// Normals derives per-cell normals and the Jacobian of the horizontal
// displacement from the displacement map. Neighbours wrap around, since the
// field is periodic.
//
// In finite-difference mode the normal is the cross product of the central
// differences of the displaced surface P = (xΔ + Dx, h, zΔ + Dz). In spectral
// mode it comes from the analytic slopes. The Jacobian always uses finite
// differences; J < 0 marks folded crests.
func Normals(dev *compute.Dispatcher, n int, cell float64, mode string,
	disp []mgl32.Vec3, slopes []mgl32.Vec2, normals []mgl32.Vec3, jacobian []float32) error {
	if len(disp) != n*n || len(normals) != n*n || len(jacobian) != n*n {
		return fmt.Errorf("ocean: normal stage buffers do not match N=%d", n)
	}
	spectral := mode == NormalsSpectral
	if spectral && len(slopes) != n*n {
		return fmt.Errorf("ocean: spectral normals need %d slope samples, have %d", n*n, len(slopes))
	}
	step := float32(2 * cell)

	return dev.Dispatch("normals", n, func(z int) {
		down := ((z-1+n)%n)*n
		upRow := ((z+1)%n)*n
		row := z * n
		for x := 0; x < n; x++ {
			left := row + (x-1+n)%n
			right := row + (x+1)%n
			i := row + x

			ddx := disp[right].Sub(disp[left])
			ddz := disp[upRow+x].Sub(disp[down+x])

			jxx := 1 + ddx.X()/step
			jzz := 1 + ddz.Z()/step
			jxz := ddz.X() / step
			jzx := ddx.Z() / step
			jacobian[i] = jxx*jzz - jxz*jzx

			var nrm mgl32.Vec3
			if spectral {
				nrm = mgl32.Vec3{-slopes[i].X(), 1, -slopes[i].Y()}
			} else {
				tx := mgl32.Vec3{step + ddx.X(), ddx.Y(), ddx.Z()}
				tz := mgl32.Vec3{ddz.X(), ddz.Y(), step + ddz.Z()}
				nrm = tz.Cross(tx)
			}
			if l := nrm.Len(); l > 0 && !math.IsNaN(float64(l)) && !math.IsInf(float64(l), 0) {
				nrm = nrm.Mul(1 / l)
			} else {
				nrm = up
			}
			normals[i] = nrm
		}
	})
}
