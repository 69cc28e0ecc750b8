package full

import "testing"

import "github.com/stretchr/testify/assert"
import "gorgonia.org/tensor"
import "github.com/stretchr/testify/require"

import "github.com/neurlang/gantrainer/layer"

func TestForwardBackward(t *testing.T) {
	f := MustNew("fc", 2, 3)
	copy(f.Weights().Value, []float32{
		1, 2, 3,
		4, 5, 6,
	})
	copy(f.Bias().Value, []float32{0.5, 0, -1})

	x := layer.NewMatrix(2, 2, []float32{
		1, 0,
		1, 1,
	})
	y, err := f.Forward(x)
	require.NoError(t, err)
	assert.Equal(t, []float32{1.5, 2, 2, 5.5, 7, 8}, layer.Floats(y))

	g := layer.NewMatrix(2, 3, []float32{
		1, 0, 0,
		0, 1, 0,
	})
	dx, err := f.Backward(g)
	require.NoError(t, err)
	// g·Wᵀ
	assert.Equal(t, []float32{1, 4, 2, 5}, layer.Floats(dx))
	// xᵀ·g
	assert.Equal(t, []float32{1, 1, 0, 0, 1, 0}, f.Weights().Grad)
	assert.Equal(t, []float32{1, 1, 0}, f.Bias().Grad)
}

func TestForwardRejectsWidth(t *testing.T) {
	f := MustNew("fc", 3, 1)
	_, err := f.Forward(layer.Zeros(2, 2))
	require.Error(t, err)
}

func TestNewRejectsSize(t *testing.T) {
	_, err := New("fc", 0, 1)
	require.Error(t, err)
}

func TestHooksAndClone(t *testing.T) {
	f := MustNew("fc", 1, 1)
	f.Weights().Value[0] = 2
	var seen []float32
	h := f.Hooks().RegisterForwardPostHook(func(l layer.Layer, in, out *tensor.Dense) {
		seen = append(seen, layer.Floats(out)...)
	}, false)
	_, err := f.Forward(layer.NewMatrix(1, 1, []float32{3}))
	require.NoError(t, err)
	assert.Equal(t, []float32{6}, seen)

	c := f.Clone().(*FullLayer)
	assert.Equal(t, 0, c.Hooks().Len())
	c.Weights().Value[0] = 7
	assert.Equal(t, float32(2), f.Weights().Value[0])

	h.Remove()
	assert.Equal(t, 0, f.Hooks().Len())
}
