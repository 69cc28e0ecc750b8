package ptq

import "math"
import "testing"

import "github.com/pkg/errors"
import "github.com/stretchr/testify/assert"
import "github.com/stretchr/testify/require"
import "gorgonia.org/tensor"

import "github.com/neurlang/gantrainer/layer"

func TestNewQuantizer(t *testing.T) {
	for _, name := range []string{AbsmaxName, PerChannelAbsmaxName, HistName} {
		q, err := NewQuantizer(name, 8, 1024, 0.99999)
		require.NoError(t, err)
		assert.Equal(t, name, q.Name())
		assert.Equal(t, 8, q.Bits())
	}
	_, err := NewQuantizer("kl", 8, 1024, 0.99999)
	assert.True(t, errors.Is(err, ErrUnsupportedQuantizer))
	_, err = NewQuantizer(HistName, 8, 0, 0.99999)
	assert.Error(t, err)
	_, err = NewQuantizer(AbsmaxName, 1, 0, 0)
	assert.Error(t, err)
}

func TestAbsmax(t *testing.T) {
	q := NewAbsmax(8)
	assert.Nil(t, q.Thresholds())
	q.SampleData(nil, []*tensor.Dense{layer.NewMatrix(1, 3, []float32{0.5, -2, 1})})
	q.SampleData(nil, []*tensor.Dense{layer.NewMatrix(1, 1, []float32{1.5})})
	q.CalThresholds()
	assert.Equal(t, []float32{2}, q.Thresholds())

	c := q.Clone()
	c.CalThresholds()
	assert.Equal(t, []float32{0}, c.Thresholds())
}

func TestPerChannelAbsmax(t *testing.T) {
	q := NewPerChannelAbsmax(8)
	q.SampleData(nil, []*tensor.Dense{layer.NewMatrix(2, 3, []float32{
		1, -5, 0,
		-2, 1, 0.25,
	})})
	q.CalThresholds()
	assert.Equal(t, []float32{2, 5, 0.25}, q.Thresholds())
}

func TestHistPercentile(t *testing.T) {
	q := NewHist(8, 10, 0.9)
	data := make([]float32, 100)
	for i := range data {
		data[i] = 0.05
	}
	// one outlier sets the range to [0, 10)
	data[99] = 10
	q.SampleData(nil, []*tensor.Dense{layer.NewMatrix(1, 100, data)})
	q.CalThresholds()
	assert.Equal(t, []float32{0.5}, q.Thresholds())
}

func TestHistRebins(t *testing.T) {
	q := NewHist(8, 4, 1)
	q.SampleData(nil, []*tensor.Dense{layer.NewMatrix(1, 2, []float32{1, 1})})
	q.SampleData(nil, []*tensor.Dense{layer.NewMatrix(1, 1, []float32{8})})
	assert.Equal(t, float32(8), q.upper)
	assert.InDelta(t, 3, float64(q.hist[0]+q.hist[1]+q.hist[2]+q.hist[3]), 1e-6)
	q.CalThresholds()
	assert.Equal(t, []float32{7}, q.Thresholds())
}

func TestHistEmpty(t *testing.T) {
	q := NewHist(8, 4, 0.5)
	q.SampleData(nil, []*tensor.Dense{layer.Zeros(1, 3)})
	q.CalThresholds()
	assert.Equal(t, []float32{0}, q.Thresholds())
}

func TestHistNonFinite(t *testing.T) {
	inf := float32(math.Inf(1))
	nan := float32(math.NaN())
	q := NewHist(8, 1024, 0.99999)
	assert.NotPanics(t, func() {
		q.SampleData(nil, []*tensor.Dense{layer.NewMatrix(1, 2, []float32{0.5, inf})})
		q.SampleData(nil, []*tensor.Dense{layer.NewMatrix(1, 3, []float32{nan, 1, -inf})})
	})
	assert.Equal(t, 3, q.NonFinite())
	assert.Equal(t, float32(1), q.upper)
	q.CalThresholds()
	require.Len(t, q.Thresholds(), 1)
	assert.InDelta(t, 1, float64(q.Thresholds()[0]), 1e-3)

	only := NewHist(8, 16, 0.9)
	only.SampleData(nil, []*tensor.Dense{layer.NewMatrix(1, 2, []float32{nan, inf})})
	only.CalThresholds()
	assert.Equal(t, []float32{0}, only.Thresholds())
}

func TestAbsmaxIgnoresNonFinite(t *testing.T) {
	inf := float32(math.Inf(-1))
	q := NewAbsmax(8)
	q.SampleData(nil, []*tensor.Dense{layer.NewMatrix(1, 3, []float32{inf, -0.75, float32(math.NaN())})})
	q.CalThresholds()
	assert.Equal(t, []float32{0.75}, q.Thresholds())

	c := NewPerChannelAbsmax(8)
	c.SampleData(nil, []*tensor.Dense{layer.NewMatrix(2, 2, []float32{inf, 1, 0.5, -2})})
	c.SampleData(nil, []*tensor.Dense{layer.NewMatrix(1, 3, []float32{9, 9, 9})})
	c.CalThresholds()
	assert.Equal(t, []float32{0.5, 2}, c.Thresholds())
}

func TestScale(t *testing.T) {
	assert.InDelta(t, 1, Scale(127, 8), 1e-6)
}
