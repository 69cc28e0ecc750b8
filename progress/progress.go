// Package progress publishes training progress events to the log and,
// optionally, to a NATS subject.
package progress

import "context"
import "time"

import "github.com/google/uuid"

import "github.com/neurlang/gantrainer/logging"

// Event kinds.
const (
	KindBatch = "batch"
	KindPass  = "pass"
	KindDone  = "done"
)

// Event is one progress record of a training run.
type Event struct {
	Run   string    `json:"run"`
	Kind  string    `json:"kind"`
	Time  time.Time `json:"time"`
	Pass  int       `json:"pass"`
	Batch int       `json:"batch,omitempty"`

	DiscriminatorLossReal float64 `json:"dis_loss_real"`
	DiscriminatorLossFake float64 `json:"dis_loss_fake"`
	DiscriminatorLoss     float64 `json:"dis_loss"`
	GeneratorLoss         float64 `json:"gen_loss"`

	DiscriminatorUpdates int `json:"dis_updates"`
	GeneratorUpdates     int `json:"gen_updates"`
	Skipped              int `json:"skipped"`

	// mean training cost of the pass, pass events only
	DiscriminatorAvgCost float64 `json:"dis_avg_cost,omitempty"`
	GeneratorAvgCost     float64 `json:"gen_avg_cost,omitempty"`

	Samples string `json:"samples,omitempty"`
}

// Reporter receives progress events.
type Reporter interface {
	Report(ctx context.Context, e Event) error
	Close() error
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// LogReporter writes events as structured log records.
type LogReporter struct{}

func (LogReporter) Report(_ context.Context, e Event) error {
	kv := []interface{}{
		"run", e.Run, "pass", e.Pass,
		"dis_loss_real", e.DiscriminatorLossReal,
		"dis_loss_fake", e.DiscriminatorLossFake,
		"dis_loss", e.DiscriminatorLoss,
		"gen_loss", e.GeneratorLoss,
	}
	switch e.Kind {
	case KindBatch:
		logging.Info("batch", logging.Training, append(kv, "batch", e.Batch)...)
	default:
		logging.Info(e.Kind, logging.Training, append(kv,
			"dis_updates", e.DiscriminatorUpdates,
			"gen_updates", e.GeneratorUpdates,
			"skipped", e.Skipped,
			"dis_avg_cost", e.DiscriminatorAvgCost,
			"gen_avg_cost", e.GeneratorAvgCost,
			"samples", e.Samples)...)
	}
	return nil
}

func (LogReporter) Close() error {
	return nil
}

// Multi fans an event out to every reporter and returns the first error.
type Multi []Reporter

func (m Multi) Report(ctx context.Context, e Event) (err error) {
	for _, r := range m {
		if rerr := r.Report(ctx, e); rerr != nil && err == nil {
			err = rerr
		}
	}
	return err
}

func (m Multi) Close() (err error) {
	for _, r := range m {
		if cerr := r.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}
