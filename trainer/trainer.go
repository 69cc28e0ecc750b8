package trainer

import "github.com/pkg/errors"

import "github.com/neurlang/gantrainer/learning"
import "github.com/neurlang/gantrainer/logging"
import "github.com/neurlang/gantrainer/machine"
import "github.com/neurlang/gantrainer/param"

// Model is a machine that can accumulate gradients for a batch.
type Model interface {
	param.Set
	ZeroGrad()
	Backward(b machine.Batch) (float64, error)
}

// PassStats summarizes one finished pass.
type PassStats struct {
	Pass    int
	Batches int
	AvgCost float64
}

// Trainer updates the non-static parameters of a model.
type Trainer struct {
	name  string
	model Model
	opt   learning.Optimizer

	training bool
	inPass   bool
	pass     int
	batches  int
	cost     float64
	total    int
}

// New creates a trainer with the optimizer described by h.
func New(name string, model Model, h learning.HyperParameters) (*Trainer, error) {
	opt, err := h.New()
	if err != nil {
		return nil, errors.Wrapf(err, "trainer %s", name)
	}
	return &Trainer{name: name, model: model, opt: opt}, nil
}

func (t *Trainer) Name() string {
	return t.name
}

// Batches returns the number of minibatches trained since StartTrain.
func (t *Trainer) Batches() int {
	return t.total
}

func (t *Trainer) StartTrain() {
	t.training = true
	t.pass = 0
	t.total = 0
}

func (t *Trainer) StartTrainPass() {
	t.inPass = true
	t.batches = 0
	t.cost = 0
}

// TrainOneDataBatch runs one forward, backward and optimizer step and returns
// the batch cost measured before the update.
func (t *Trainer) TrainOneDataBatch(b machine.Batch) (float64, error) {
	if !t.training || !t.inPass {
		return 0, errors.Errorf("trainer %s: batch outside of a pass", t.name)
	}
	t.model.ZeroGrad()
	cost, err := t.model.Backward(b)
	if err != nil {
		return 0, errors.Wrapf(err, "trainer %s", t.name)
	}
	t.opt.Step(t.model.Parameters())
	t.batches++
	t.total++
	t.cost += cost
	return cost, nil
}

// FinishTrainPass closes the pass and logs its average cost.
func (t *Trainer) FinishTrainPass() PassStats {
	s := PassStats{Pass: t.pass, Batches: t.batches}
	if t.batches > 0 {
		s.AvgCost = t.cost / float64(t.batches)
	}
	logging.Info("pass finished", logging.Training, "trainer", t.name, "pass", s.Pass, "batches", s.Batches, "avg_cost", s.AvgCost)
	t.inPass = false
	t.pass++
	return s
}

func (t *Trainer) FinishTrain() {
	logging.Info("training finished", logging.Training, "trainer", t.name, "passes", t.pass, "batches", t.total)
	t.training = false
}
