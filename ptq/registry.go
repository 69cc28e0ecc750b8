package ptq

import "sync"

import "github.com/neurlang/gantrainer/layer"
import "github.com/neurlang/gantrainer/layer/activation"
import "github.com/neurlang/gantrainer/layer/full"

// Registry lists the layer kinds that are calibrated, and the subset whose
// weights are quantized too.
type Registry struct {
	mu             sync.RWMutex
	supported      map[string]bool
	fakeQuantInput map[string]bool
}

// NewRegistry returns a registry of the bundled layer kinds.
func NewRegistry() *Registry {
	r := &Registry{
		supported:      make(map[string]bool),
		fakeQuantInput: make(map[string]bool),
	}
	r.Register(full.Kind, true)
	r.Register(activation.KindLeakyReLU, false)
	r.Register(activation.KindTanh, false)
	r.Register(activation.KindSigmoid, false)
	return r
}

// Register adds a layer kind.
func (r *Registry) Register(kind string, fakeQuantInput bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.supported[kind] = true
	if fakeQuantInput {
		r.fakeQuantInput[kind] = true
	}
}

func (r *Registry) IsSupported(l layer.Layer) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.supported[l.Kind()]
}

func (r *Registry) IsFakeQuantInput(l layer.Layer) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.fakeQuantInput[l.Kind()]
}
