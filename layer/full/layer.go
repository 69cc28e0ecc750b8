// Package full implements a fully connected layer.
package full

import "math"
import "math/rand"

import "github.com/pkg/errors"
import "gorgonia.org/tensor"
import "gorgonia.org/vecf32"

import "github.com/neurlang/gantrainer/layer"
import "github.com/neurlang/gantrainer/param"

// Kind is the registry kind of fully connected layers.
const Kind = "linear"

// FullLayer computes y = x·W + b for x of shape [batch, in].
type FullLayer struct {
	name    string
	in, out int
	w, b    *param.Parameter

	x     *tensor.Dense
	hooks layer.Hooks
}

// MustNew creates a new full layer and panics on bad sizes.
func MustNew(name string, in, out int) *FullLayer {
	o, err := New(name, in, out)
	if err != nil {
		panic(err.Error())
	}
	return o
}

// New creates a new full layer with zero weights. Parameters are named
// name+".w" and name+".b".
func New(name string, in, out int) (o *FullLayer, err error) {
	if in <= 0 || out <= 0 {
		return nil, errors.Errorf("full layer %s: bad size %dx%d", name, in, out)
	}
	o = new(FullLayer)
	o.name = name
	o.in = in
	o.out = out
	o.w = param.New(name+".w", in*out)
	o.b = param.New(name+".b", out)
	return
}

// Init draws the weights from the Glorot uniform distribution and zeroes the bias.
func (f *FullLayer) Init(rng *rand.Rand) {
	limit := math.Sqrt(6 / float64(f.in+f.out))
	for i := range f.w.Value {
		f.w.Value[i] = float32((rng.Float64()*2 - 1) * limit)
	}
	for i := range f.b.Value {
		f.b.Value[i] = 0
	}
}

// Weights returns the weight parameter, stored row major as [in, out].
func (f *FullLayer) Weights() *param.Parameter {
	return f.w
}

// Bias returns the bias parameter.
func (f *FullLayer) Bias() *param.Parameter {
	return f.b
}

// Size returns the input and output widths.
func (f *FullLayer) Size() (in, out int) {
	return f.in, f.out
}

func (f *FullLayer) Name() string {
	return f.name
}

func (f *FullLayer) Kind() string {
	return Kind
}

func (f *FullLayer) Hooks() *layer.Hooks {
	return &f.hooks
}

func (f *FullLayer) Parameters() []*param.Parameter {
	return []*param.Parameter{f.w, f.b}
}

func (f *FullLayer) weights() *tensor.Dense {
	return layer.NewMatrix(f.in, f.out, f.w.Value)
}

// Forward computes x·W + b.
func (f *FullLayer) Forward(x *tensor.Dense) (*tensor.Dense, error) {
	rows, cols := layer.Dims(x)
	if cols != f.in {
		return nil, errors.Errorf("full layer %s: input width %d, want %d", f.name, cols, f.in)
	}
	y, err := x.MatMul(f.weights())
	if err != nil {
		return nil, errors.Wrapf(err, "full layer %s", f.name)
	}
	data := layer.Floats(y)
	for r := 0; r < rows; r++ {
		vecf32.Add(data[r*f.out:(r+1)*f.out], f.b.Value)
	}
	f.x = x
	f.hooks.Run(f, x, y)
	return y, nil
}

// Backward accumulates dW = xᵀ·g and db = Σ g, and returns g·Wᵀ.
func (f *FullLayer) Backward(g *tensor.Dense) (*tensor.Dense, error) {
	if f.x == nil {
		return nil, errors.Errorf("full layer %s: backward before forward", f.name)
	}
	rows, cols := layer.Dims(g)
	if cols != f.out {
		return nil, errors.Errorf("full layer %s: gradient width %d, want %d", f.name, cols, f.out)
	}
	xt, err := tensor.Transpose(f.x)
	if err != nil {
		return nil, errors.Wrapf(err, "full layer %s", f.name)
	}
	dw, err := xt.(*tensor.Dense).MatMul(g)
	if err != nil {
		return nil, errors.Wrapf(err, "full layer %s", f.name)
	}
	vecf32.Add(f.w.Grad, layer.Floats(dw))

	gd := layer.Floats(g)
	for r := 0; r < rows; r++ {
		vecf32.Add(f.b.Grad, gd[r*f.out:(r+1)*f.out])
	}

	wt, err := tensor.Transpose(f.weights())
	if err != nil {
		return nil, errors.Wrapf(err, "full layer %s", f.name)
	}
	dx, err := g.MatMul(wt)
	if err != nil {
		return nil, errors.Wrapf(err, "full layer %s", f.name)
	}
	return dx, nil
}

// Clone copies the parameters. The clone has no hooks.
func (f *FullLayer) Clone() layer.Layer {
	return &FullLayer{
		name: f.name,
		in:   f.in,
		out:  f.out,
		w:    f.w.Clone(),
		b:    f.b.Clone(),
	}
}
