package learning

import "testing"

import "github.com/pkg/errors"
import "github.com/stretchr/testify/assert"
import "github.com/stretchr/testify/require"

import "github.com/neurlang/gantrainer/param"

func TestSGDSkipsStatic(t *testing.T) {
	h := HyperParameters{Optimizer: "sgd", LearningRate: 0.5}
	o, err := h.New()
	require.NoError(t, err)

	a := param.New("a", 2)
	a.Grad[0], a.Grad[1] = 1, -2
	s := param.New("s", 1)
	s.Static = true
	s.Grad[0] = 1

	o.Step([]*param.Parameter{a, s})
	assert.Equal(t, []float32{-0.5, 1}, a.Value)
	assert.Equal(t, []float32{0}, s.Value)
}

func TestSGDMomentum(t *testing.T) {
	o := NewSGD(HyperParameters{LearningRate: 1, Momentum: 0.5})
	p := param.New("p", 1)
	p.Grad[0] = 1
	o.Step([]*param.Parameter{p})
	o.Step([]*param.Parameter{p})
	// steps of 1 then 1.5
	assert.InDelta(t, -2.5, p.Value[0], 1e-6)
}

func TestAdamFirstStepIsLearningRate(t *testing.T) {
	h := DefaultHyperParameters()
	o, err := h.New()
	require.NoError(t, err)
	p := param.New("p", 2)
	p.Grad[0], p.Grad[1] = 3, -0.1
	o.Step([]*param.Parameter{p})
	assert.InDelta(t, -h.LearningRate, p.Value[0], 1e-6)
	assert.InDelta(t, h.LearningRate, p.Value[1], 1e-6)
}

func TestUnknownOptimizer(t *testing.T) {
	_, err := HyperParameters{Optimizer: "rmsprop", LearningRate: 1}.New()
	assert.True(t, errors.Is(err, ErrUnknownOptimizer))

	_, err = HyperParameters{Optimizer: "sgd"}.New()
	assert.Error(t, err)
}
