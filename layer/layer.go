// Package layer defines the layer interface shared by the networks, the forward
// post-hook mechanism used for calibration, and the layer tree walk.
package layer

import "gorgonia.org/tensor"

import "github.com/neurlang/gantrainer/param"

// Layer is one differentiable stage of a network operating on [batch, features] matrices.
type Layer interface {

	// Name is the unique, dotted name of the layer (e.g. "gen.fc1").
	Name() string

	// Kind identifies the layer type, used by registries ("linear", "tanh", ...).
	Kind() string

	// Forward computes the output and remembers what Backward needs.
	Forward(in *tensor.Dense) (*tensor.Dense, error)

	// Backward accumulates parameter gradients and returns the input gradient
	// of the most recent Forward.
	Backward(grad *tensor.Dense) (*tensor.Dense, error)

	// Parameters lists the trainable buffers, in a stable order.
	Parameters() []*param.Parameter

	// Clone returns a deep copy without hooks or cached activations.
	Clone() Layer

	// Hooks exposes the forward post-hooks of the layer.
	Hooks() *Hooks
}

// Container is a layer made of sublayers.
type Container interface {
	Layer
	Sublayers() []Layer
}

// IsLeaf reports whether l has no sublayers.
func IsLeaf(l Layer) bool {
	c, ok := l.(Container)
	return !ok || len(c.Sublayers()) == 0
}

// NamedSublayers walks the tree below root depth first, parents before children.
// The root itself is not included.
func NamedSublayers(root Layer) (o []Layer) {
	c, ok := root.(Container)
	if !ok {
		return nil
	}
	for _, l := range c.Sublayers() {
		o = append(o, l)
		o = append(o, NamedSublayers(l)...)
	}
	return o
}
