package schedule

import "math"
import "testing"

import "github.com/stretchr/testify/assert"
import "github.com/stretchr/testify/require"

func TestSchedulerCountsAndRejects(t *testing.T) {
	s, err := New(2)
	require.NoError(t, err)

	// generator keeps winning on loss, but the streak bound forces a switch
	obs := Observation{0.2, 0.1, 0.9}
	var got []Action
	for i := 0; i < 5; i++ {
		a, err := s.Step(obs)
		require.NoError(t, err)
		got = append(got, a)
	}
	assert.Equal(t, []Action{
		UpdateGenerator, UpdateGenerator, UpdateDiscriminator,
		UpdateGenerator, UpdateGenerator,
	}, got)
	assert.Equal(t, 4, s.Updates(Generator))
	assert.Equal(t, 1, s.Updates(Discriminator))

	before := s.State()
	_, err = s.Step(Observation{math.NaN(), 0, 0})
	require.ErrorIs(t, err, ErrInvalidObservation)
	assert.Equal(t, before, s.State())
	assert.Equal(t, 1, s.Rejected())
}

func TestSchedulerDiscriminatorCap(t *testing.T) {
	s, err := New(3)
	require.NoError(t, err)
	obs := Observation{0.1, 0.9, 0.1}
	var got []Action
	for i := 0; i < 4; i++ {
		a, err := s.Step(obs)
		require.NoError(t, err)
		got = append(got, a)
	}
	assert.Equal(t, []Action{
		UpdateDiscriminator, UpdateDiscriminator, UpdateDiscriminator, UpdateGenerator,
	}, got)
	assert.Equal(t, State{Generator, 1, 3}, s.State())
}
