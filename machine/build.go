package machine

import "math/rand"
import "strconv"

import "github.com/pkg/errors"

import "github.com/neurlang/gantrainer/layer/activation"
import "github.com/neurlang/gantrainer/layer/full"
import "github.com/neurlang/gantrainer/net/feedforward"

// Network names, used as parameter name prefixes shared across machines.
const (
	GeneratorName     = "gen"
	DiscriminatorName = "dis"
)

// Architecture sizes the two networks.
type Architecture struct {
	NoiseDim            int   `koanf:"noise_dim"`
	SampleDim           int   `koanf:"sample_dim"`
	GeneratorHidden     []int `koanf:"generator_hidden"`
	DiscriminatorHidden []int `koanf:"discriminator_hidden"`
}

// DefaultArchitecture returns the layer sizes for samples of dimension sampleDim.
func DefaultArchitecture(sampleDim int) Architecture {
	return Architecture{
		NoiseDim:            100,
		SampleDim:           sampleDim,
		GeneratorHidden:     []int{256, 512},
		DiscriminatorHidden: []int{512, 256},
	}
}

func (a Architecture) validate() error {
	if a.NoiseDim <= 0 || a.SampleDim <= 0 {
		return errors.Errorf("architecture: noise dim %d, sample dim %d", a.NoiseDim, a.SampleDim)
	}
	for _, h := range append(append([]int(nil), a.GeneratorHidden...), a.DiscriminatorHidden...) {
		if h <= 0 {
			return errors.Errorf("architecture: hidden width %d", h)
		}
	}
	return nil
}

// NewGenerator maps [batch, NoiseDim] noise to [batch, SampleDim] samples in (-1, 1).
func (a Architecture) NewGenerator() (*feedforward.FeedforwardNetwork, error) {
	if err := a.validate(); err != nil {
		return nil, err
	}
	return stack(GeneratorName, a.NoiseDim, a.GeneratorHidden, a.SampleDim, activation.Tanh(GeneratorName+".out")), nil
}

// NewDiscriminator maps [batch, SampleDim] samples to one logit per row.
func (a Architecture) NewDiscriminator() (*feedforward.FeedforwardNetwork, error) {
	if err := a.validate(); err != nil {
		return nil, err
	}
	return stack(DiscriminatorName, a.SampleDim, a.DiscriminatorHidden, 1, nil), nil
}

func stack(name string, in int, hidden []int, out int, last *activation.Activation) *feedforward.FeedforwardNetwork {
	f := feedforward.New(name)
	for i, h := range hidden {
		f.NewLayer(full.MustNew(layerName(name, "fc", i), in, h))
		f.NewLayer(activation.LeakyReLU(layerName(name, "act", i), activation.DefaultLeak))
		in = h
	}
	f.NewLayer(full.MustNew(layerName(name, "fc", len(hidden)), in, out))
	if last != nil {
		f.NewLayer(last)
	}
	return f
}

func layerName(net, kind string, i int) string {
	return net + "." + kind + strconv.Itoa(i)
}

// Machines are the three machines of one training run. Each owns separate
// parameter buffers; same-named parameters are kept in sync by copying.
type Machines struct {
	Generator             *Machine
	DiscriminatorTraining *Machine
	GeneratorTraining     *Machine
}

// Build creates and randomly initializes the three machines. The
// discriminator parameters of GeneratorTraining are static.
func Build(a Architecture, rng *rand.Rand) (*Machines, error) {
	g1, err := a.NewGenerator()
	if err != nil {
		return nil, err
	}
	g2, _ := a.NewGenerator()
	d1, _ := a.NewDiscriminator()
	d2, _ := a.NewDiscriminator()
	for _, n := range []*feedforward.FeedforwardNetwork{g1, d1, g2, d2} {
		n.Init(rng)
	}
	for _, p := range d2.Parameters() {
		p.Static = true
	}

	o := new(Machines)
	o.Generator, _ = New("generator", g1, nil)
	o.DiscriminatorTraining, _ = New("dis_training", nil, d1)
	o.GeneratorTraining, _ = New("gen_training", g2, d2)
	return o, nil
}
