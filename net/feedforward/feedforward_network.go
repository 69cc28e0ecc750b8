// Package feedforward implements a feedforward network type
package feedforward

import "math/rand"

import "gorgonia.org/tensor"

import "github.com/neurlang/gantrainer/layer"
import "github.com/neurlang/gantrainer/param"

// Kind is the registry kind of a feedforward network.
const Kind = "sequential"

// Initializer is a layer with randomly initialized weights.
type Initializer interface {
	Init(rng *rand.Rand)
}

// FeedforwardNetwork is the feedforward network. It is itself a layer, so
// networks nest.
type FeedforwardNetwork struct {
	name   string
	layers []layer.Layer
	hooks  layer.Hooks
}

// New creates an empty network.
func New(name string) *FeedforwardNetwork {
	return &FeedforwardNetwork{name: name}
}

// NewLayer adds a layer to the end of network.
func (f *FeedforwardNetwork) NewLayer(l layer.Layer) {
	f.layers = append(f.layers, l)
}

// LenLayers returns the number of direct sublayers.
func (f *FeedforwardNetwork) LenLayers() int {
	return len(f.layers)
}

// GetLayer returns the n-th direct sublayer, or nil.
func (f *FeedforwardNetwork) GetLayer(n int) layer.Layer {
	if n < 0 || n >= len(f.layers) {
		return nil
	}
	return f.layers[n]
}

// Len returns the number of scalar weights in the network.
func (f *FeedforwardNetwork) Len() (o int) {
	for _, p := range f.Parameters() {
		o += p.Len()
	}
	return
}

// Init initializes every layer that has random weights.
func (f *FeedforwardNetwork) Init(rng *rand.Rand) {
	for _, l := range f.layers {
		if i, ok := l.(Initializer); ok {
			i.Init(rng)
		}
	}
}

func (f *FeedforwardNetwork) Name() string {
	return f.name
}

func (f *FeedforwardNetwork) Kind() string {
	return Kind
}

func (f *FeedforwardNetwork) Hooks() *layer.Hooks {
	return &f.hooks
}

func (f *FeedforwardNetwork) Sublayers() []layer.Layer {
	return f.layers
}

// Parameters lists the parameters of all layers in order.
func (f *FeedforwardNetwork) Parameters() (o []*param.Parameter) {
	for _, l := range f.layers {
		o = append(o, l.Parameters()...)
	}
	return
}

// Forward runs the layers in order.
func (f *FeedforwardNetwork) Forward(in *tensor.Dense) (out *tensor.Dense, err error) {
	out = in
	for _, l := range f.layers {
		out, err = l.Forward(out)
		if err != nil {
			return nil, err
		}
	}
	f.hooks.Run(f, in, out)
	return out, nil
}

// Backward runs the layers in reverse order.
func (f *FeedforwardNetwork) Backward(grad *tensor.Dense) (_ *tensor.Dense, err error) {
	for i := len(f.layers) - 1; i >= 0; i-- {
		grad, err = f.layers[i].Backward(grad)
		if err != nil {
			return nil, err
		}
	}
	return grad, nil
}

// Clone deep copies the network without hooks.
func (f *FeedforwardNetwork) Clone() layer.Layer {
	c := New(f.name)
	for _, l := range f.layers {
		c.NewLayer(l.Clone())
	}
	return c
}
