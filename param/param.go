// Package param holds named parameter buffers and copies them between networks
// that share parameters by name.
package param

import "github.com/pkg/errors"

// ErrShapeMismatch is returned when two same-named parameters have different lengths.
var ErrShapeMismatch = errors.New("parameter shape mismatch")

// Parameter is a named trainable buffer with its gradient.
// Static parameters are propagated but never updated by an optimizer.
type Parameter struct {
	Name   string
	Value  []float32
	Grad   []float32
	Static bool

	version uint64
}

// New allocates a zeroed parameter of size n.
func New(name string, n int) *Parameter {
	return &Parameter{
		Name:  name,
		Value: make([]float32, n),
		Grad:  make([]float32, n),
	}
}

// Len returns the buffer length.
func (p *Parameter) Len() int {
	return len(p.Value)
}

// ZeroGrad clears the gradient buffer.
func (p *Parameter) ZeroGrad() {
	for i := range p.Grad {
		p.Grad[i] = 0
	}
}

// SetValueUpdated records that the value was overwritten from outside the optimizer.
func (p *Parameter) SetValueUpdated() {
	p.version++
}

// Version returns how many times the value was overwritten.
func (p *Parameter) Version() uint64 {
	return p.version
}

// Clone returns a deep copy.
func (p *Parameter) Clone() *Parameter {
	c := &Parameter{
		Name:    p.Name,
		Value:   append([]float32(nil), p.Value...),
		Grad:    make([]float32, len(p.Grad)),
		Static:  p.Static,
		version: p.version,
	}
	copy(c.Grad, p.Grad)
	return c
}

// Set is anything exposing an ordered list of parameters.
type Set interface {
	Parameters() []*Parameter
}

// List adapts a slice to Set.
type List []*Parameter

// Parameters implements Set.
func (l List) Parameters() []*Parameter {
	return l
}

// ByName indexes the parameters of s by name.
func ByName(s Set) map[string]*Parameter {
	params := s.Parameters()
	o := make(map[string]*Parameter, len(params))
	for _, p := range params {
		o[p.Name] = p
	}
	return o
}

// CopyShared copies every parameter of dst that has a same-named counterpart in src.
// Parameters missing from src are left alone. It reports how many were copied.
func CopyShared(src, dst Set) (copied int, err error) {
	byName := ByName(src)
	for _, d := range dst.Parameters() {
		s, ok := byName[d.Name]
		if !ok {
			continue
		}
		if s.Len() != d.Len() {
			return copied, errors.Wrapf(ErrShapeMismatch, "%s: source has %d values, destination %d",
				d.Name, s.Len(), d.Len())
		}
		copy(d.Value, s.Value)
		d.SetValueUpdated()
		copied++
	}
	return copied, nil
}
