package imagegrid

import "testing"

import "github.com/pkg/errors"
import "github.com/stretchr/testify/assert"
import "github.com/stretchr/testify/require"

import "github.com/neurlang/gantrainer/layer"

func TestMergeGrayLayout(t *testing.T) {
	const dim = 28 * 28
	data := make([]float32, 2*dim)
	for i := range data {
		data[i] = -1
	}
	// sample 0, row 2, col 5
	data[2*28+5] = 1
	// sample 1, row 0, col 0, clipped
	data[dim] = 3

	img, err := Merge(layer.NewMatrix(2, dim, data), 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 56, img.Width)
	assert.Equal(t, 56, img.Height)
	assert.Equal(t, 1, img.Channels)
	assert.Equal(t, byte(255), img.Pix[2*56+5])
	assert.Equal(t, byte(255), img.Pix[28])
	assert.Equal(t, byte(0), img.Pix[0])
	// missing tiles are black
	assert.Equal(t, byte(0), img.Pix[30*56+30])
}

func TestMergeColorPlanes(t *testing.T) {
	const dim = 32 * 32 * 3
	data := make([]float32, dim)
	for i := range data {
		data[i] = -1
	}
	plane := 32 * 32
	data[0*plane+1*32+2] = 1
	data[2*plane+1*32+2] = 0

	img, err := Merge(layer.NewMatrix(1, dim, data), 1, 1)
	require.NoError(t, err)
	px := img.Pix[(1*32+2)*3:]
	assert.Equal(t, []byte{255, 0, 127}, px[:3])
	assert.Len(t, img.RGB(), 32*32*3)
}

func TestMergeUnknownGeometry(t *testing.T) {
	_, err := Merge(layer.Zeros(1, 100), Side, Side)
	assert.True(t, errors.Is(err, ErrUnknownGeometry))
}

func TestRGBReplicatesGray(t *testing.T) {
	img := &Image{Pix: []byte{1, 2}, Width: 2, Height: 1, Channels: 1}
	assert.Equal(t, []byte{1, 1, 1, 2, 2, 2}, img.RGB())
}
