package schedule

// Scheduler owns the state of a single training run. It is not safe for
// concurrent use; the training loop is its only caller.
type Scheduler struct {
	state    State
	counts   [2]int
	rejected int
}

// New creates a scheduler with the given streak bound.
func New(maxStreak int) (*Scheduler, error) {
	s, err := NewState(maxStreak)
	if err != nil {
		return nil, err
	}
	return &Scheduler{state: s}, nil
}

// Step decides the action for one minibatch and commits the new state.
// A rejected observation leaves the state untouched.
func (s *Scheduler) Step(o Observation) (Action, error) {
	a, next, err := Decide(s.state, o)
	if err != nil {
		s.rejected++
		return a, err
	}
	s.state = next
	s.counts[a.Network()]++
	return a, nil
}

// State returns a copy of the current state.
func (s *Scheduler) State() State {
	return s.state
}

// Updates returns how many minibatches were assigned to network n.
func (s *Scheduler) Updates(n Network) int {
	if int(n) >= len(s.counts) {
		return 0
	}
	return s.counts[n]
}

// Rejected returns how many observations were refused.
func (s *Scheduler) Rejected() int {
	return s.rejected
}
