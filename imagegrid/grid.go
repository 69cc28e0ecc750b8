// Package imagegrid tiles generated samples into one image and writes it to disk.
package imagegrid

import "math"

import "github.com/pkg/errors"
import "gorgonia.org/tensor"

import "github.com/neurlang/gantrainer/layer"

// ErrUnknownGeometry is returned for a sample size that is neither 28x28x1 nor 32x32x3.
var ErrUnknownGeometry = errors.New("unknown sample geometry")

// Side is the number of tiles per grid row and column.
const Side = 8

// Geometry is the height, width and channel count of one sample.
type Geometry struct {
	H, W, C int
}

// GeometryFor maps a flattened sample size to its image geometry.
func GeometryFor(dim int) (Geometry, error) {
	switch dim {
	case 28 * 28:
		return Geometry{28, 28, 1}, nil
	case 32 * 32 * 3:
		return Geometry{32, 32, 3}, nil
	}
	return Geometry{}, errors.Wrapf(ErrUnknownGeometry, "dimension %d", dim)
}

// Image is an interleaved 8-bit image, rows top to bottom.
type Image struct {
	Pix      []byte
	Width    int
	Height   int
	Channels int
}

// Merge tiles the first rows*cols samples row by row. Samples are channel
// planes in [-1, 1]; values outside are clipped. Missing samples stay black.
func Merge(samples *tensor.Dense, rows, cols int) (*Image, error) {
	n, dim := layer.Dims(samples)
	g, err := GeometryFor(dim)
	if err != nil {
		return nil, err
	}
	img := &Image{
		Width:    g.W * cols,
		Height:   g.H * rows,
		Channels: g.C,
	}
	img.Pix = make([]byte, img.Width*img.Height*img.Channels)
	data := layer.Floats(samples)
	plane := g.H * g.W
	for idx := 0; idx < rows*cols && idx < n; idx++ {
		v := data[idx*dim : (idx+1)*dim]
		tx, ty := idx%cols, idx/cols
		for a := 0; a < g.H; a++ {
			for b := 0; b < g.W; b++ {
				y, x := ty*g.H+a, tx*g.W+b
				for k := 0; k < g.C; k++ {
					img.Pix[(y*img.Width+x)*g.C+k] = toByte(v[k*plane+a*g.W+b])
				}
			}
		}
	}
	return img, nil
}

func toByte(x float32) byte {
	f := (float64(x) + 1) / 2 * 255
	if f <= 0 || math.IsNaN(f) {
		return 0
	}
	if f >= 255 {
		return 255
	}
	return byte(f)
}

// RGB returns the pixels with three channels, replicating gray.
func (i *Image) RGB() []byte {
	if i.Channels == 3 {
		return i.Pix
	}
	out := make([]byte, 0, len(i.Pix)*3)
	for _, p := range i.Pix {
		out = append(out, p, p, p)
	}
	return out
}
