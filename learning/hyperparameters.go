// Package learning implements the optimizers that apply accumulated gradients
// to network parameters.
package learning

import "github.com/pkg/errors"

import "github.com/neurlang/gantrainer/param"

// ErrUnknownOptimizer is returned for an optimizer name other than "adam" or "sgd".
var ErrUnknownOptimizer = errors.New("unknown optimizer")

type HyperParameters struct {
	Optimizer string `koanf:"optimizer"` // "adam" or "sgd"

	LearningRate float64 `koanf:"learning_rate"`

	Beta1   float64 `koanf:"beta1"`
	Beta2   float64 `koanf:"beta2"`
	Epsilon float64 `koanf:"epsilon"`

	Momentum float64 `koanf:"momentum"` // sgd only

	WeightDecay float64 `koanf:"weight_decay"`
}

// DefaultHyperParameters are the Adam settings of the image GAN.
func DefaultHyperParameters() HyperParameters {
	return HyperParameters{
		Optimizer:    "adam",
		LearningRate: 2e-4,
		Beta1:        0.5,
		Beta2:        0.999,
		Epsilon:      1e-8,
	}
}

// Optimizer updates parameter values from their gradients.
type Optimizer interface {

	// Step applies one update to every non-static parameter.
	Step(params []*param.Parameter)
}

// New builds the optimizer named by h.
func (h HyperParameters) New() (Optimizer, error) {
	if h.LearningRate <= 0 {
		return nil, errors.Errorf("learning rate must be positive, got %v", h.LearningRate)
	}
	switch h.Optimizer {
	case "adam", "":
		return NewAdam(h), nil
	case "sgd":
		return NewSGD(h), nil
	}
	return nil, errors.Wrapf(ErrUnknownOptimizer, "%q", h.Optimizer)
}
