package datasets

import "math/rand"

import "github.com/pkg/errors"
import "gorgonia.org/tensor"

import "github.com/neurlang/gantrainer/layer"

// SampleNoiseStd is the standard deviation of the noise added to discriminator inputs.
const SampleNoiseStd = 0.01

// Sampler draws the random batches of one training run.
type Sampler struct {
	d        *Dataset
	noiseDim int
	rng      *rand.Rand
	perm     []int
}

// NewSampler creates a sampler over d with a generator noise width of noiseDim.
func NewSampler(d *Dataset, noiseDim int, rng *rand.Rand) *Sampler {
	perm := make([]int, d.N())
	for i := range perm {
		perm[i] = i
	}
	return &Sampler{d: d, noiseDim: noiseDim, rng: rng, perm: perm}
}

func (s *Sampler) NoiseDim() int {
	return s.noiseDim
}

func (s *Sampler) SampleDim() int {
	return s.d.Dim
}

// Real copies batch distinct samples chosen uniformly at random.
func (s *Sampler) Real(batch int) (*tensor.Dense, error) {
	n := len(s.perm)
	if batch <= 0 || batch > n {
		return nil, errors.Errorf("sampler: batch of %d from %d samples", batch, n)
	}
	out := make([]float32, 0, batch*s.d.Dim)
	// partial Fisher-Yates over a persistent permutation
	for i := 0; i < batch; i++ {
		j := i + s.rng.Intn(n-i)
		s.perm[i], s.perm[j] = s.perm[j], s.perm[i]
		out = append(out, s.d.Row(s.perm[i])...)
	}
	return layer.NewMatrix(batch, s.d.Dim, out), nil
}

// Noise returns [batch, NoiseDim] standard normal values.
func (s *Sampler) Noise(batch int) *tensor.Dense {
	return s.normal(batch, s.noiseDim, 1)
}

// SampleNoise returns [batch, SampleDim] normal values with deviation SampleNoiseStd.
func (s *Sampler) SampleNoise(batch int) *tensor.Dense {
	return s.normal(batch, s.d.Dim, SampleNoiseStd)
}

func (s *Sampler) normal(rows, cols int, std float64) *tensor.Dense {
	out := make([]float32, rows*cols)
	for i := range out {
		out[i] = float32(s.rng.NormFloat64() * std)
	}
	return layer.NewMatrix(rows, cols, out)
}
