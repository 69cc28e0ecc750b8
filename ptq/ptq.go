// Package ptq implements post-training quantization calibration. Quantize
// attaches an observer to every supported leaf layer; after calibration data
// has been run through the model, Convert detaches the observers and computes
// the thresholds.
package ptq

import "sync"

import "github.com/pkg/errors"
import "gorgonia.org/tensor"

import "github.com/neurlang/gantrainer/layer"
import "github.com/neurlang/gantrainer/logging"
import "github.com/neurlang/gantrainer/param"

// ErrNotQuantized is returned by Convert for a supported layer without a calibration config.
var ErrNotQuantized = errors.New("layer was not quantized")

// Config is the quantizer template applied to every layer.
type Config struct {
	Activation Quantizer
	Weight     Quantizer
}

// DefaultConfig uses 8 bit Absmax for activations and weights.
func DefaultConfig() Config {
	return Config{
		Activation: NewAbsmax(8),
		Weight:     NewAbsmax(8),
	}
}

// LayerConfig holds the quantizers of one calibrated layer.
type LayerConfig struct {
	InAct  Quantizer
	OutAct Quantizer
	Weight Quantizer

	handle *layer.HookHandle
}

// Weighted is a layer with a [in, out] weight matrix.
type Weighted interface {
	Weights() *param.Parameter
	Size() (in, out int)
}

// PTQ calibrates models with one quantizer configuration.
type PTQ struct {
	config   Config
	registry *Registry

	mu      sync.Mutex
	configs map[layer.Layer]*LayerConfig
}

// New creates a calibrator. A nil registry means NewRegistry().
func New(config Config, registry *Registry) (*PTQ, error) {
	if config.Activation == nil || config.Weight == nil {
		return nil, errors.New("ptq: activation and weight quantizers are required")
	}
	if registry == nil {
		registry = NewRegistry()
	}
	return &PTQ{
		config:   config,
		registry: registry,
		configs:  make(map[layer.Layer]*LayerConfig),
	}, nil
}

// candidates lists the supported leaves of model once each, in tree order.
func (p *PTQ) candidates(model layer.Layer) (o []layer.Layer) {
	seen := make(map[layer.Layer]bool)
	for _, l := range layer.NamedSublayers(model) {
		if seen[l] || !p.registry.IsSupported(l) || !layer.IsLeaf(l) {
			continue
		}
		seen[l] = true
		o = append(o, l)
	}
	return
}

// LayerConfig returns the calibration config attached to l.
func (p *PTQ) LayerConfig(l layer.Layer) (*LayerConfig, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	c, ok := p.configs[l]
	return c, ok
}

// Quantize attaches calibration observers to the supported leaf layers of
// model, or of a deep copy of it unless inplace is set, and returns the
// instrumented model. Observers run before any other hook of the layer.
func (p *PTQ) Quantize(model layer.Layer, inplace bool) (layer.Layer, error) {
	if model == nil {
		return nil, errors.New("ptq: nil model")
	}
	if !inplace {
		model = model.Clone()
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	candidates := p.candidates(model)
	for _, l := range candidates {
		if _, ok := p.configs[l]; ok {
			return nil, errors.Errorf("ptq: layer %s is already quantized", l.Name())
		}
	}
	for _, l := range candidates {
		c := &LayerConfig{
			InAct:  p.config.Activation.Clone(),
			OutAct: p.config.Activation.Clone(),
			Weight: p.config.Weight.Clone(),
		}
		c.handle = l.Hooks().RegisterForwardPostHook(func(l layer.Layer, in, out *tensor.Dense) {
			c.InAct.SampleData(l, []*tensor.Dense{in})
			c.OutAct.SampleData(l, []*tensor.Dense{out})
		}, true)
		p.configs[l] = c
		logging.Debug("calibration hook attached", logging.Quantization, "layer", l.Name(), "kind", l.Kind())
	}
	return model, nil
}

// Convert detaches the observers of model, computes input and output
// thresholds of every calibrated layer and weight thresholds of the
// fake-quant-input kinds.
func (p *PTQ) Convert(model layer.Layer) (layer.Layer, Report, error) {
	if model == nil {
		return nil, nil, errors.New("ptq: nil model")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	candidates := p.candidates(model)
	for _, l := range candidates {
		if _, ok := p.configs[l]; !ok {
			return nil, nil, errors.Wrapf(ErrNotQuantized, "layer %s", l.Name())
		}
		if _, ok := l.(Weighted); p.registry.IsFakeQuantInput(l) && !ok {
			return nil, nil, errors.Errorf("ptq: layer %s of kind %s has no weights", l.Name(), l.Kind())
		}
	}
	var report Report
	for _, l := range candidates {
		c := p.configs[l]
		c.handle.Remove()
		delete(p.configs, l)

		c.InAct.CalThresholds()
		c.OutAct.CalThresholds()
		t := LayerThresholds{
			Layer:  l.Name(),
			Kind:   l.Kind(),
			Bits:   c.OutAct.Bits(),
			Input:  c.InAct.Thresholds(),
			Output: c.OutAct.Thresholds(),
		}
		if w, ok := l.(Weighted); ok && p.registry.IsFakeQuantInput(l) {
			in, out := w.Size()
			c.Weight.SampleData(l, []*tensor.Dense{layer.NewMatrix(in, out, w.Weights().Value)})
			c.Weight.CalThresholds()
			t.Weight = c.Weight.Thresholds()
			t.WeightBits = c.Weight.Bits()
		}
		report = append(report, t)
		logging.Debug("thresholds computed", logging.Quantization, "layer", t.Layer, "input", t.Input, "output", t.Output, "weight", t.Weight)
	}
	return model, report, nil
}
