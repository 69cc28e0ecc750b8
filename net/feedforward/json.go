package feedforward

import "compress/lzw"
import "encoding/json"
import "io"
import "os"

import "github.com/pkg/errors"

import "github.com/neurlang/gantrainer/param"

// WriteCompressedWeightsToFile writes model weights to a lzw file
func (f *FeedforwardNetwork) WriteCompressedWeightsToFile(name string) error {
	file, err := os.Create(name)
	if err != nil {
		return err
	}
	err = f.WriteCompressedWeights(file)
	file.Close()
	return err
}

// WriteCompressedWeights writes model weights to a writer as a JSON object
// keyed by parameter name.
func (f *FeedforwardNetwork) WriteCompressedWeights(w io.Writer) error {
	lw := lzw.NewWriter(w, lzw.LSB, 8)

	weights := make(map[string][]float32)
	for _, p := range f.Parameters() {
		weights[p.Name] = p.Value
	}
	if err := json.NewEncoder(lw).Encode(weights); err != nil {
		lw.Close()
		return err
	}
	return lw.Close()
}

// ReadCompressedWeightsFromFile reads model weights from a lzw file
func (f *FeedforwardNetwork) ReadCompressedWeightsFromFile(name string) error {
	file, err := os.Open(name)
	if err != nil {
		return err
	}
	err = f.ReadCompressedWeights(file)
	file.Close()
	return err
}

// ReadCompressedWeights reads model weights from a reader. Every parameter of
// the network must be present with a matching length, otherwise nothing is
// loaded.
func (f *FeedforwardNetwork) ReadCompressedWeights(r io.Reader) error {
	lr := lzw.NewReader(r, lzw.LSB, 8)
	defer lr.Close()

	var weights map[string][]float32
	if err := json.NewDecoder(lr).Decode(&weights); err != nil {
		return err
	}
	params := f.Parameters()
	for _, p := range params {
		v, ok := weights[p.Name]
		if !ok {
			return errors.Errorf("weights: parameter %s missing", p.Name)
		}
		if len(v) != p.Len() {
			return errors.Wrapf(param.ErrShapeMismatch, "weights: %s has %d values, want %d", p.Name, len(v), p.Len())
		}
	}
	for _, p := range params {
		copy(p.Value, weights[p.Name])
		p.SetValueUpdated()
	}
	return nil
}
