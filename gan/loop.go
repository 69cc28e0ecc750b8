package gan

import "context"
import "time"

import "github.com/pkg/errors"
import "gorgonia.org/tensor"

import "github.com/neurlang/gantrainer/logging"
import "github.com/neurlang/gantrainer/machine"
import "github.com/neurlang/gantrainer/param"
import "github.com/neurlang/gantrainer/progress"
import "github.com/neurlang/gantrainer/schedule"
import "github.com/neurlang/gantrainer/trainer"

// Sampler provides the random inputs of a minibatch.
type Sampler interface {
	Real(batch int) (*tensor.Dense, error)
	Noise(batch int) *tensor.Dense
	SampleNoise(batch int) *tensor.Dense
}

// TrainingMachine scores a batch without updating anything.
type TrainingMachine interface {
	param.Set
	Loss(b machine.Batch) (float64, error)
}

// GenerationMachine maps noise to samples.
type GenerationMachine interface {
	param.Set
	Generate(noise *tensor.Dense) (*tensor.Dense, error)
}

// BatchTrainer updates one training machine.
type BatchTrainer interface {
	StartTrain()
	StartTrainPass()
	TrainOneDataBatch(b machine.Batch) (float64, error)
	FinishTrainPass() trainer.PassStats
	FinishTrain()
}

// Copier copies same-named parameters from src into dst.
type Copier func(src, dst param.Set) (int, error)

// SampleWriter persists the samples generated at the end of a pass and
// returns where they went.
type SampleWriter interface {
	WriteSamples(pass int, samples *tensor.Dense) (string, error)
}

// Checkpointer persists the weights at the end of a pass.
type Checkpointer interface {
	Checkpoint(pass int) error
}

// Options size the run.
type Options struct {
	Passes         int
	BatchesPerPass int
	BatchSize      int
	MaxStreak      int
	LogPeriod      int // 0 disables per-batch reports
	RunID          string
}

// Loop wires the collaborators of one training run. Samples, Checkpoints and
// Reporter are optional; Copy defaults to param.CopyShared.
type Loop struct {
	Options

	Sampler           Sampler
	Discriminator     TrainingMachine
	GeneratorTraining TrainingMachine
	Generator         GenerationMachine

	DiscriminatorTrainer BatchTrainer
	GeneratorTrainer     BatchTrainer

	Copy        Copier
	Samples     SampleWriter
	Checkpoints Checkpointer
	Reporter    progress.Reporter

	sched *schedule.Scheduler
}

// Summary counts what a run did.
type Summary struct {
	Passes               int
	Batches              int
	DiscriminatorUpdates int
	GeneratorUpdates     int
	Skipped              int
	State                schedule.State
}

// minibatch is the data of one scored minibatch.
type minibatch struct {
	noise    *tensor.Dense
	pos      machine.Batch
	neg      machine.Batch
	gen      machine.Batch
	observed schedule.Observation
}

func (l *Loop) validate() error {
	switch {
	case l.Sampler == nil, l.Discriminator == nil, l.GeneratorTraining == nil, l.Generator == nil:
		return errors.New("gan: sampler and machines are required")
	case l.DiscriminatorTrainer == nil, l.GeneratorTrainer == nil:
		return errors.New("gan: trainers are required")
	case l.Passes < 0, l.BatchesPerPass <= 0, l.BatchSize <= 0:
		return errors.Errorf("gan: %d passes of %d batches of %d", l.Passes, l.BatchesPerPass, l.BatchSize)
	}
	return nil
}

func labels(n, v int) []int {
	o := make([]int, n)
	for i := range o {
		o[i] = v
	}
	return o
}

// Run trains for the configured number of passes. Cancelling ctx stops the
// run between minibatches.
func (l *Loop) Run(ctx context.Context) (Summary, error) {
	var sum Summary
	if err := l.validate(); err != nil {
		return sum, err
	}
	var err error
	if l.sched, err = schedule.New(l.MaxStreak); err != nil {
		return sum, err
	}
	if l.Copy == nil {
		l.Copy = param.CopyShared
	}
	if l.Reporter == nil {
		l.Reporter = progress.LogReporter{}
	}

	if err := l.propagate(l.GeneratorTraining, l.Discriminator, l.Generator); err != nil {
		return sum, errors.Wrap(err, "initial parameter sync")
	}

	l.DiscriminatorTrainer.StartTrain()
	l.GeneratorTrainer.StartTrain()
	for pass := 0; pass < l.Passes; pass++ {
		l.DiscriminatorTrainer.StartTrainPass()
		l.GeneratorTrainer.StartTrainPass()

		var last minibatch
		var observed schedule.Observation
		for batch := 0; batch < l.BatchesPerPass; batch++ {
			if err := ctx.Err(); err != nil {
				sum.fill(l.sched)
				return sum, err
			}
			mb, err := l.score()
			if err != nil {
				return sum, errors.Wrapf(err, "pass %d batch %d", pass, batch)
			}
			last = mb
			sum.Batches++

			action, err := l.sched.Step(mb.observed)
			if errors.Is(err, schedule.ErrInvalidObservation) {
				logging.Warn("minibatch skipped", logging.Scheduler, "pass", pass, "batch", batch, "error", err)
				continue
			} else if err != nil {
				return sum, err
			}
			observed = mb.observed
			if l.LogPeriod > 0 && batch%l.LogPeriod == 0 {
				e := l.event(progress.KindBatch, pass, observed)
				e.Batch = batch
				l.publish(ctx, e)
			}
			logging.Debug("scheduled", logging.Scheduler, "pass", pass, "batch", batch, "action", action, "state", l.sched.State())

			if err := l.apply(action, mb); err != nil {
				return sum, errors.Wrapf(err, "pass %d batch %d", pass, batch)
			}
		}

		disStats := l.DiscriminatorTrainer.FinishTrainPass()
		genStats := l.GeneratorTrainer.FinishTrainPass()
		sum.Passes++

		where, err := l.finishPass(pass, last.noise)
		if err != nil {
			return sum, errors.Wrapf(err, "pass %d", pass)
		}
		sum.fill(l.sched)
		e := sum.annotate(l.event(progress.KindPass, pass, observed))
		e.Samples = where
		e.DiscriminatorAvgCost = disStats.AvgCost
		e.GeneratorAvgCost = genStats.AvgCost
		l.publish(ctx, e)
	}
	l.DiscriminatorTrainer.FinishTrain()
	l.GeneratorTrainer.FinishTrain()

	sum.fill(l.sched)
	l.publish(ctx, sum.annotate(l.event(progress.KindDone, sum.Passes, schedule.Observation{})))
	return sum, nil
}

func (s *Summary) fill(sched *schedule.Scheduler) {
	s.DiscriminatorUpdates = sched.Updates(schedule.Discriminator)
	s.GeneratorUpdates = sched.Updates(schedule.Generator)
	s.Skipped = sched.Rejected()
	s.State = sched.State()
}

// score builds the three batches of a minibatch and measures their losses.
func (l *Loop) score() (mb minibatch, err error) {
	n := l.BatchSize
	mb.noise = l.Sampler.Noise(n)

	x, err := l.Sampler.Real(n)
	if err != nil {
		return mb, err
	}
	mb.pos = machine.Batch{Input: x, SampleNoise: l.Sampler.SampleNoise(n), Labels: labels(n, 1)}
	if mb.observed.DiscriminatorLossReal, err = l.Discriminator.Loss(mb.pos); err != nil {
		return mb, err
	}

	sampleNoise := l.Sampler.SampleNoise(n)
	fake, err := l.Generator.Generate(mb.noise)
	if err != nil {
		return mb, err
	}
	mb.neg = machine.Batch{Input: fake, SampleNoise: sampleNoise, Labels: labels(n, 0)}
	if mb.observed.DiscriminatorLossFake, err = l.Discriminator.Loss(mb.neg); err != nil {
		return mb, err
	}

	mb.gen = machine.Batch{Input: mb.noise, SampleNoise: sampleNoise, Labels: labels(n, 1)}
	if mb.observed.GeneratorLoss, err = l.GeneratorTraining.Loss(mb.gen); err != nil {
		return mb, err
	}
	return mb, nil
}

// apply trains the chosen network and propagates its parameters.
func (l *Loop) apply(a schedule.Action, mb minibatch) error {
	switch a {
	case schedule.UpdateDiscriminator:
		if _, err := l.DiscriminatorTrainer.TrainOneDataBatch(mb.neg); err != nil {
			return err
		}
		if _, err := l.DiscriminatorTrainer.TrainOneDataBatch(mb.pos); err != nil {
			return err
		}
		return l.propagate(l.Discriminator, l.GeneratorTraining, l.Generator)
	case schedule.UpdateGenerator:
		if _, err := l.GeneratorTrainer.TrainOneDataBatch(mb.gen); err != nil {
			return err
		}
		return l.propagate(l.GeneratorTraining, l.Discriminator, l.Generator)
	}
	return errors.Errorf("unknown action %v", a)
}

func (l *Loop) propagate(src param.Set, dsts ...param.Set) error {
	for _, dst := range dsts {
		if _, err := l.Copy(src, dst); err != nil {
			return err
		}
	}
	return nil
}

func (l *Loop) finishPass(pass int, noise *tensor.Dense) (string, error) {
	var where string
	if l.Samples != nil && noise != nil {
		samples, err := l.Generator.Generate(noise)
		if err != nil {
			return "", err
		}
		if where, err = l.Samples.WriteSamples(pass, samples); err != nil {
			return "", err
		}
	}
	if l.Checkpoints != nil {
		if err := l.Checkpoints.Checkpoint(pass); err != nil {
			return "", err
		}
	}
	return where, nil
}

func (l *Loop) event(kind string, pass int, o schedule.Observation) progress.Event {
	return progress.Event{
		Run:                   l.RunID,
		Kind:                  kind,
		Time:                  time.Now(),
		Pass:                  pass,
		DiscriminatorLossReal: o.DiscriminatorLossReal,
		DiscriminatorLossFake: o.DiscriminatorLossFake,
		DiscriminatorLoss:     o.AverageDiscriminatorLoss(),
		GeneratorLoss:         o.GeneratorLoss,
	}
}

func (s Summary) annotate(e progress.Event) progress.Event {
	e.DiscriminatorUpdates = s.DiscriminatorUpdates
	e.GeneratorUpdates = s.GeneratorUpdates
	e.Skipped = s.Skipped
	return e
}

func (l *Loop) publish(ctx context.Context, e progress.Event) {
	if err := l.Reporter.Report(ctx, e); err != nil {
		logging.Warn("progress report failed", logging.Progress, "error", err)
	}
}
