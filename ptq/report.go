package ptq

import "io"

import "github.com/knadh/koanf/parsers/yaml"

// LayerThresholds are the calibrated thresholds of one layer.
type LayerThresholds struct {
	Layer      string
	Kind       string
	Bits       int
	Input      []float32
	Output     []float32
	Weight     []float32
	WeightBits int
}

// Report lists calibrated layers in tree order.
type Report []LayerThresholds

// Get returns the thresholds of the named layer.
func (r Report) Get(name string) (LayerThresholds, bool) {
	for _, t := range r {
		if t.Layer == name {
			return t, true
		}
	}
	return LayerThresholds{}, false
}

// WriteYAML writes the report keyed by layer name.
func (r Report) WriteYAML(w io.Writer) error {
	layers := make(map[string]interface{}, len(r))
	for _, t := range r {
		m := map[string]interface{}{
			"kind":   t.Kind,
			"bits":   t.Bits,
			"input":  t.Input,
			"output": t.Output,
		}
		if t.Weight != nil {
			m["weight"] = t.Weight
			m["weight_bits"] = t.WeightBits
		}
		layers[t.Layer] = m
	}
	out, err := yaml.Parser().Marshal(map[string]interface{}{"layers": layers})
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}
