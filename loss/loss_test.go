package loss

import "math"
import "testing"

import "github.com/stretchr/testify/assert"
import "github.com/stretchr/testify/require"

import "github.com/neurlang/gantrainer/layer"
import "github.com/neurlang/gantrainer/layer/activation"

func TestZeroLogit(t *testing.T) {
	l, g, err := BinaryCrossEntropyWithLogits(layer.NewMatrix(2, 1, []float32{0, 0}), []int{1, 0})
	require.NoError(t, err)
	assert.InDelta(t, math.Ln2, l, 1e-6)
	assert.InDeltaSlice(t, []float32{-0.25, 0.25}, layer.Floats(g), 1e-6)
}

func TestLargeLogitsStayFinite(t *testing.T) {
	l, _, err := BinaryCrossEntropyWithLogits(layer.NewMatrix(2, 1, []float32{200, -200}), []int{0, 1})
	require.NoError(t, err)
	assert.InDelta(t, 200, l, 1e-3)
	assert.False(t, math.IsInf(l, 0))
}

func TestLabelCountMismatch(t *testing.T) {
	_, _, err := BinaryCrossEntropyWithLogits(layer.Zeros(2, 1), []int{1})
	require.Error(t, err)
}

func TestGradientIsLogisticMinusLabel(t *testing.T) {
	z := []float32{-3, 0.5, 40}
	_, g, err := BinaryCrossEntropyWithLogits(layer.NewMatrix(3, 1, z), []int{1, 0, 1})
	require.NoError(t, err)
	want := []float32{
		(activation.Logistic(-3) - 1) / 3,
		activation.Logistic(0.5) / 3,
		(activation.Logistic(40) - 1) / 3,
	}
	assert.InDeltaSlice(t, want, layer.Floats(g), 1e-7)
}
