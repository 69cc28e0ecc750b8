// Package activation implements element-wise activation layers.
package activation

import "github.com/chewxy/math32"
import "github.com/pkg/errors"
import "gorgonia.org/tensor"

import "github.com/neurlang/gantrainer/layer"
import "github.com/neurlang/gantrainer/param"

const (
	KindLeakyReLU = "leaky_relu"
	KindTanh      = "tanh"
	KindSigmoid   = "sigmoid"
)

// DefaultLeak is the negative slope of LeakyReLU.
const DefaultLeak = 0.2

// Activation applies f element-wise. Backward multiplies by f' evaluated at the
// cached input and output.
type Activation struct {
	name  string
	kind  string
	leak  float32
	in    []float32
	out   []float32
	hooks layer.Hooks
}

// LeakyReLU returns max(x, leak*x).
func LeakyReLU(name string, leak float32) *Activation {
	return &Activation{name: name, kind: KindLeakyReLU, leak: leak}
}

// Tanh returns the hyperbolic tangent layer.
func Tanh(name string) *Activation {
	return &Activation{name: name, kind: KindTanh}
}

// Sigmoid returns the logistic layer.
func Sigmoid(name string) *Activation {
	return &Activation{name: name, kind: KindSigmoid}
}

func (a *Activation) Name() string {
	return a.name
}

func (a *Activation) Kind() string {
	return a.kind
}

func (a *Activation) Hooks() *layer.Hooks {
	return &a.hooks
}

func (a *Activation) Parameters() []*param.Parameter {
	return nil
}

func (a *Activation) Clone() layer.Layer {
	return &Activation{name: a.name, kind: a.kind, leak: a.leak}
}

func (a *Activation) Forward(x *tensor.Dense) (*tensor.Dense, error) {
	rows, cols := layer.Dims(x)
	in := layer.Floats(x)
	out := make([]float32, len(in))
	switch a.kind {
	case KindLeakyReLU:
		for i, v := range in {
			if v < 0 {
				v *= a.leak
			}
			out[i] = v
		}
	case KindTanh:
		for i, v := range in {
			out[i] = math32.Tanh(v)
		}
	case KindSigmoid:
		for i, v := range in {
			out[i] = Logistic(v)
		}
	default:
		return nil, errors.Errorf("activation %s: unknown kind %q", a.name, a.kind)
	}
	a.in = in
	a.out = out
	y := layer.NewMatrix(rows, cols, out)
	a.hooks.Run(a, x, y)
	return y, nil
}

func (a *Activation) Backward(g *tensor.Dense) (*tensor.Dense, error) {
	rows, cols := layer.Dims(g)
	gd := layer.Floats(g)
	if len(gd) != len(a.in) {
		return nil, errors.Errorf("activation %s: gradient size %d, forward size %d", a.name, len(gd), len(a.in))
	}
	dx := make([]float32, len(gd))
	switch a.kind {
	case KindLeakyReLU:
		for i, v := range a.in {
			if v < 0 {
				dx[i] = gd[i] * a.leak
			} else {
				dx[i] = gd[i]
			}
		}
	case KindTanh:
		for i, y := range a.out {
			dx[i] = gd[i] * (1 - y*y)
		}
	case KindSigmoid:
		for i, y := range a.out {
			dx[i] = gd[i] * y * (1 - y)
		}
	}
	return layer.NewMatrix(rows, cols, dx), nil
}

// Logistic is 1/(1+e^-x), evaluated without overflow for large |x|.
func Logistic(x float32) float32 {
	if x >= 0 {
		return 1 / (1 + math32.Exp(-x))
	}
	e := math32.Exp(x)
	return e / (1 + e)
}
