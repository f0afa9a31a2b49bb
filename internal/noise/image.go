package noise

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"os"
)

// Images reads file-backed noise: one grayscale image per field. Each image
// must be at least n×n; the top-left n×n block is used.
type Images struct {
	Paths [FieldCount]string
}

func FromImages(paths [FieldCount]string) *Images {
	return &Images{Paths: paths}
}

func (s *Images) Fields(n int) ([FieldCount][]float64, error) {
	out, err := alloc(n)
	if err != nil {
		return out, err
	}
	for f, path := range s.Paths {
		img, err := decode(path)
		if err != nil {
			return out, err
		}
		b := img.Bounds()
		if b.Dx() < n || b.Dy() < n {
			return out, fmt.Errorf("noise: %s is %dx%d, need at least %dx%d", path, b.Dx(), b.Dy(), n, n)
		}
		for row := 0; row < n; row++ {
			for col := 0; col < n; col++ {
				g := color.Gray16Model.Convert(img.At(b.Min.X+col, b.Min.Y+row)).(color.Gray16)
				out[f][row*n+col] = clampUnit(float64(g.Y) / 65536)
			}
		}
	}
	return out, nil
}

func decode(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("noise: open %s: %w", path, err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("noise: decode %s: %w", path, err)
	}
	return img, nil
}
