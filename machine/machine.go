// Package machine builds the three gradient machines of adversarial training:
// the generator alone, the discriminator trainer, and the generator trainer
// which runs the generator into a frozen copy of the discriminator.
package machine

import "github.com/pkg/errors"
import "gorgonia.org/tensor"
import "gorgonia.org/vecf32"

import "github.com/neurlang/gantrainer/layer"
import "github.com/neurlang/gantrainer/loss"
import "github.com/neurlang/gantrainer/param"

// Batch is one minibatch fed to a machine. SampleNoise is added to the
// discriminator input and may be nil.
type Batch struct {
	Input       *tensor.Dense
	SampleNoise *tensor.Dense
	Labels      []int
}

// Machine chains an optional head network (the generator) into an optional
// body network (the discriminator).
type Machine struct {
	name string
	head layer.Layer
	body layer.Layer
}

// New creates a machine. Either network may be nil but not both.
func New(name string, head, body layer.Layer) (*Machine, error) {
	if head == nil && body == nil {
		return nil, errors.Errorf("machine %s: no networks", name)
	}
	return &Machine{name: name, head: head, body: body}, nil
}

func (m *Machine) Name() string {
	return m.name
}

// Head returns the generator network or nil.
func (m *Machine) Head() layer.Layer {
	return m.head
}

// Body returns the discriminator network or nil.
func (m *Machine) Body() layer.Layer {
	return m.body
}

// Parameters lists head parameters followed by body parameters.
func (m *Machine) Parameters() (o []*param.Parameter) {
	if m.head != nil {
		o = append(o, m.head.Parameters()...)
	}
	if m.body != nil {
		o = append(o, m.body.Parameters()...)
	}
	return
}

// ZeroGrad clears every gradient buffer.
func (m *Machine) ZeroGrad() {
	for _, p := range m.Parameters() {
		p.ZeroGrad()
	}
}

// Forward returns the machine output for b.
func (m *Machine) Forward(b Batch) (x *tensor.Dense, err error) {
	x = b.Input
	if m.head != nil {
		if x, err = m.head.Forward(x); err != nil {
			return nil, errors.Wrapf(err, "machine %s", m.name)
		}
	}
	if m.body == nil {
		return x, nil
	}
	if b.SampleNoise != nil {
		if x, err = addNoise(x, b.SampleNoise); err != nil {
			return nil, errors.Wrapf(err, "machine %s", m.name)
		}
	}
	if x, err = m.body.Forward(x); err != nil {
		return nil, errors.Wrapf(err, "machine %s", m.name)
	}
	return x, nil
}

// Loss scores b without touching gradients.
func (m *Machine) Loss(b Batch) (float64, error) {
	if m.body == nil {
		return 0, errors.Errorf("machine %s: no cost layer", m.name)
	}
	logits, err := m.Forward(b)
	if err != nil {
		return 0, err
	}
	cost, _, err := loss.BinaryCrossEntropyWithLogits(logits, b.Labels)
	return cost, err
}

// Backward scores b and accumulates gradients into every parameter.
func (m *Machine) Backward(b Batch) (float64, error) {
	if m.body == nil {
		return 0, errors.Errorf("machine %s: no cost layer", m.name)
	}
	logits, err := m.Forward(b)
	if err != nil {
		return 0, err
	}
	cost, grad, err := loss.BinaryCrossEntropyWithLogits(logits, b.Labels)
	if err != nil {
		return 0, err
	}
	if grad, err = m.body.Backward(grad); err != nil {
		return 0, errors.Wrapf(err, "machine %s", m.name)
	}
	if m.head != nil {
		if _, err = m.head.Backward(grad); err != nil {
			return 0, errors.Wrapf(err, "machine %s", m.name)
		}
	}
	return cost, nil
}

// Generate runs noise through the head network.
func (m *Machine) Generate(noise *tensor.Dense) (*tensor.Dense, error) {
	if m.head == nil {
		return nil, errors.Errorf("machine %s: no generator", m.name)
	}
	out, err := m.head.Forward(noise)
	if err != nil {
		return nil, errors.Wrapf(err, "machine %s", m.name)
	}
	return out, nil
}

func addNoise(x, noise *tensor.Dense) (*tensor.Dense, error) {
	xr, xc := layer.Dims(x)
	nr, nc := layer.Dims(noise)
	if xr != nr || xc != nc {
		return nil, errors.Wrapf(param.ErrShapeMismatch, "sample noise %dx%d, input %dx%d", nr, nc, xr, xc)
	}
	o := layer.Copy(x)
	vecf32.Add(layer.Floats(o), layer.Floats(noise))
	return o, nil
}
