package schedule

import "math"
import "testing"

import "github.com/stretchr/testify/assert"
import "github.com/stretchr/testify/require"

func TestNewState(t *testing.T) {
	s, err := NewState(10)
	require.NoError(t, err)
	assert.Equal(t, State{Current: Discriminator, Streak: 0, MaxStreak: 10}, s)

	_, err = NewState(0)
	require.ErrorIs(t, err, ErrInvalidMaxStreak)
}

func TestGeneratorStreakBelowMax(t *testing.T) {
	for s := 1; s < DefaultMaxStreak; s++ {
		in := State{Current: Generator, Streak: s, MaxStreak: DefaultMaxStreak}
		a, out, err := Decide(in, Observation{0.7, 0.4, 0.4})
		require.NoError(t, err)
		assert.Equal(t, UpdateGenerator, a, "streak %d", s)
		assert.Equal(t, State{Current: Generator, Streak: s + 1, MaxStreak: DefaultMaxStreak}, out)
	}
}

func TestForcedSwitchFromGenerator(t *testing.T) {
	in := State{Current: Generator, Streak: DefaultMaxStreak, MaxStreak: DefaultMaxStreak}
	for _, o := range []Observation{{0.1, 0.1, 0.9}, {0.5, 0.9, 0.1}, {0, 0, 0}} {
		a, out, err := Decide(in, o)
		require.NoError(t, err)
		assert.Equal(t, UpdateDiscriminator, a)
		assert.Equal(t, State{Current: Discriminator, Streak: 1, MaxStreak: DefaultMaxStreak}, out)
	}
}

func TestBlockedSwitchFromDiscriminator(t *testing.T) {
	in := State{Current: Discriminator, Streak: DefaultMaxStreak, MaxStreak: DefaultMaxStreak}
	for _, o := range []Observation{{0.1, 0.9, 0.1}, {0.5, 0.3, 0.6}} {
		a, out, err := Decide(in, o)
		require.NoError(t, err)
		assert.Equal(t, UpdateGenerator, a)
		assert.Equal(t, State{Current: Generator, Streak: 1, MaxStreak: DefaultMaxStreak}, out)
	}
}

func TestScenarios(t *testing.T) {
	tests := []struct {
		name   string
		in     State
		obs    Observation
		action Action
		out    State
	}{
		{
			name:   "discriminator loses the turn",
			in:     State{Discriminator, 1, 10},
			obs:    Observation{0.5, 0.3, 0.6},
			action: UpdateGenerator,
			out:    State{Generator, 1, 10},
		},
		{
			name:   "fake loss above generator loss",
			in:     State{Generator, 1, 10},
			obs:    Observation{0.4, 0.9, 0.2},
			action: UpdateDiscriminator,
			out:    State{Discriminator, 1, 10},
		},
		{
			name:   "generator streak exhausted",
			in:     State{Generator, 10, 10},
			obs:    Observation{0.1, 0.1, 0.9},
			action: UpdateDiscriminator,
			out:    State{Discriminator, 1, 10},
		},
		{
			name:   "discriminator streak continues",
			in:     State{Discriminator, 3, 10},
			obs:    Observation{0.2, 0.8, 0.5},
			action: UpdateDiscriminator,
			out:    State{Discriminator, 4, 10},
		},
		{
			name:   "first decision",
			in:     State{Discriminator, 0, 10},
			obs:    Observation{0.2, 0.1, 0.5},
			action: UpdateGenerator,
			out:    State{Generator, 1, 10},
		},
		{
			name:   "first decision keeps discriminator",
			in:     State{Discriminator, 0, 10},
			obs:    Observation{0.2, 0.8, 0.5},
			action: UpdateDiscriminator,
			out:    State{Discriminator, 1, 10},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, out, err := Decide(tt.in, tt.obs)
			require.NoError(t, err)
			assert.Equal(t, tt.action, a)
			assert.Equal(t, tt.out, out)
		})
	}
}

func TestEqualLossesDoNotSwitch(t *testing.T) {
	a, out, err := Decide(State{Generator, 2, 10}, Observation{0.3, 0.5, 0.5})
	require.NoError(t, err)
	assert.Equal(t, UpdateGenerator, a)
	assert.Equal(t, State{Generator, 3, 10}, out)

	a, out, err = Decide(State{Discriminator, 2, 10}, Observation{0.3, 0.5, 0.5})
	require.NoError(t, err)
	assert.Equal(t, UpdateGenerator, a)
	assert.Equal(t, State{Generator, 1, 10}, out)
}

func TestNonFiniteObservation(t *testing.T) {
	in := State{Generator, 4, 10}
	for _, o := range []Observation{
		{math.NaN(), 0.1, 0.1},
		{0.1, math.Inf(1), 0.1},
		{0.1, 0.1, math.Inf(-1)},
	} {
		_, out, err := Decide(in, o)
		require.ErrorIs(t, err, ErrInvalidObservation)
		assert.Equal(t, in, out)
	}
}

func TestAverageDiscriminatorLoss(t *testing.T) {
	assert.InDelta(t, 0.4, Observation{0.5, 0.3, 0.6}.AverageDiscriminatorLoss(), 1e-12)
}

func FuzzDecide(f *testing.F) {
	f.Add(byte(0), 1, 10, 0.5, 0.3, 0.6)
	f.Add(byte(1), 10, 10, 0.1, 0.1, 0.9)
	f.Add(byte(0), 10, 10, 0.4, 0.9, 0.2)
	f.Fuzz(func(t *testing.T, current byte, streak, max int, real, fake, gen float64) {
		if max < 1 || max > 1000 || streak < 0 || streak > max {
			return
		}
		in := State{Current: Network(current & 1), Streak: streak, MaxStreak: max}
		o := Observation{real, fake, gen}
		a1, s1, err1 := Decide(in, o)
		a2, s2, err2 := Decide(in, o)
		if a1 != a2 || s1 != s2 || (err1 == nil) != (err2 == nil) {
			t.Fatalf("non-deterministic decision for %v %v", in, o)
		}
		if err1 != nil {
			return
		}
		if s1.Streak < 1 || s1.Streak > max {
			t.Fatalf("streak %d out of range [1, %d]", s1.Streak, max)
		}
		if s1.Current != a1.Network() {
			t.Fatalf("state %v disagrees with action %v", s1, a1)
		}
	})
}
