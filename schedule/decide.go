package schedule

// Decide picks the network to update for the observed minibatch and returns the
// successor state. It is a pure function of its inputs. On error the input state
// is returned unchanged.
func Decide(s State, o Observation) (Action, State, error) {
	if err := o.Validate(); err != nil {
		return UpdateGenerator, s, err
	}
	if s.MaxStreak < 1 {
		return UpdateGenerator, s, ErrInvalidMaxStreak
	}

	forceSwitchFromGenerator := s.Current == Generator && s.Streak == s.MaxStreak
	lossBasedSwitch := o.DiscriminatorLossFake > o.GeneratorLoss
	blockSwitchFromDiscriminator := s.Current == Discriminator && s.Streak == s.MaxStreak

	if !blockSwitchFromDiscriminator && (forceSwitchFromGenerator || lossBasedSwitch) {
		return UpdateDiscriminator, s.advance(Discriminator), nil
	}
	return UpdateGenerator, s.advance(Generator), nil
}

// advance continues the streak if n is already being trained, or starts a new one.
func (s State) advance(n Network) State {
	if s.Current == n {
		s.Streak++
	} else {
		s.Current = n
		s.Streak = 1
	}
	return s
}
