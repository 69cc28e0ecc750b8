package schedule

import "fmt"
import "math"

import "github.com/pkg/errors"

// DefaultMaxStreak is the streak bound used by the trainer unless configured otherwise.
const DefaultMaxStreak = 10

// ErrInvalidObservation is returned when a loss observation holds a non-finite value.
var ErrInvalidObservation = errors.New("invalid loss observation")

// ErrInvalidMaxStreak is returned when the streak bound is not positive.
var ErrInvalidMaxStreak = errors.New("max streak must be positive")

// Network identifies one of the two adversaries.
type Network byte

const (
	Discriminator Network = iota
	Generator
)

func (n Network) String() string {
	switch n {
	case Discriminator:
		return "discriminator"
	case Generator:
		return "generator"
	}
	return fmt.Sprintf("network(%d)", byte(n))
}

// Action is the update chosen for a minibatch.
type Action byte

const (
	UpdateDiscriminator Action = iota
	UpdateGenerator
)

func (a Action) String() string {
	switch a {
	case UpdateDiscriminator:
		return "update_discriminator"
	case UpdateGenerator:
		return "update_generator"
	}
	return fmt.Sprintf("action(%d)", byte(a))
}

// Network returns the network the action trains.
func (a Action) Network() Network {
	if a == UpdateDiscriminator {
		return Discriminator
	}
	return Generator
}

// State is the scheduler state carried between minibatches.
// Streak is zero only before the first decision.
type State struct {
	Current   Network
	Streak    int
	MaxStreak int
}

// NewState returns the state a training run starts from.
func NewState(maxStreak int) (State, error) {
	if maxStreak < 1 {
		return State{}, errors.Wrapf(ErrInvalidMaxStreak, "got %d", maxStreak)
	}
	return State{Current: Discriminator, MaxStreak: maxStreak}, nil
}

func (s State) String() string {
	return fmt.Sprintf("{%s streak=%d/%d}", s.Current, s.Streak, s.MaxStreak)
}

// Observation holds the losses measured on one minibatch before any update.
type Observation struct {
	DiscriminatorLossReal float64
	DiscriminatorLossFake float64
	GeneratorLoss         float64
}

// AverageDiscriminatorLoss is the mean of the real and fake discriminator losses.
func (o Observation) AverageDiscriminatorLoss() float64 {
	return (o.DiscriminatorLossReal + o.DiscriminatorLossFake) / 2
}

// Validate reports ErrInvalidObservation if any loss is NaN or infinite.
func (o Observation) Validate() error {
	for _, v := range [3]struct {
		name string
		val  float64
	}{
		{"discriminator real", o.DiscriminatorLossReal},
		{"discriminator fake", o.DiscriminatorLossFake},
		{"generator", o.GeneratorLoss},
	} {
		if math.IsNaN(v.val) || math.IsInf(v.val, 0) {
			return errors.Wrapf(ErrInvalidObservation, "%s loss is %v", v.name, v.val)
		}
	}
	return nil
}
