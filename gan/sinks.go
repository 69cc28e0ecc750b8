package gan

import "path/filepath"
import "sort"
import "strconv"

import "gorgonia.org/tensor"

import "github.com/neurlang/gantrainer/imagegrid"
import "github.com/neurlang/gantrainer/trainer"

// GridWriter saves an 8x8 sample grid per pass as Dir/train_pass<N>.png.
type GridWriter struct {
	Dir string
}

// SamplePath is where the grid of a pass is written.
func (g GridWriter) SamplePath(pass int) string {
	return filepath.Join(g.Dir, "train_pass"+strconv.Itoa(pass)+".png")
}

func (g GridWriter) WriteSamples(pass int, samples *tensor.Dense) (string, error) {
	img, err := imagegrid.Merge(samples, imagegrid.Side, imagegrid.Side)
	if err != nil {
		return "", err
	}
	path := g.SamplePath(pass)
	return path, imagegrid.Save(path, img)
}

// WeightsCheckpointer overwrites Dir/<name>.json.t.lzw for every network each pass.
type WeightsCheckpointer struct {
	Dir      string
	Networks map[string]trainer.Weights
}

// CheckpointPath is the weights file of the named network.
func (c WeightsCheckpointer) CheckpointPath(name string) string {
	return filepath.Join(c.Dir, name+".json.t.lzw")
}

func (c WeightsCheckpointer) Checkpoint(pass int) error {
	names := make([]string, 0, len(c.Networks))
	for name := range c.Networks {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := trainer.Checkpoint(c.Networks[name], c.CheckpointPath(name)); err != nil {
			return err
		}
	}
	return nil
}
