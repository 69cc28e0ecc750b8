package progress

import "context"
import "encoding/json"
import "time"

import "github.com/cenkalti/backoff/v4"
import "github.com/nats-io/nats.go"
import "github.com/pkg/errors"

import "github.com/neurlang/gantrainer/logging"

// Publisher is the part of a NATS connection the reporter uses.
type Publisher interface {
	Publish(subject string, data []byte) error
	Drain() error
}

// NatsReporter publishes events as JSON. Publishing failures are logged and
// never stop training.
type NatsReporter struct {
	pub     Publisher
	subject string
}

func NewNatsReporter(pub Publisher, subject string) *NatsReporter {
	return &NatsReporter{pub: pub, subject: subject}
}

// ConnectNats dials url, retrying with exponential backoff up to maxRetries times.
func ConnectNats(ctx context.Context, url, name string, maxRetries uint64) (*nats.Conn, error) {
	var conn *nats.Conn
	op := func() (err error) {
		conn, err = nats.Connect(
			url,
			nats.Name(name),
			nats.MaxReconnects(-1),
			nats.ReconnectWait(2*time.Second),
		)
		if err != nil {
			logging.Warn("nats connect failed", logging.Progress, "url", url, "error", err)
		}
		return err
	}
	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxRetries), ctx)
	if err := backoff.Retry(op, b); err != nil {
		return nil, errors.Wrapf(err, "connecting to %s", url)
	}
	return conn, nil
}

func (n *NatsReporter) Report(_ context.Context, e Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	if err := n.pub.Publish(n.subject, data); err != nil {
		logging.Warn("progress publish failed", logging.Progress, "subject", n.subject, "error", err)
	}
	return nil
}

func (n *NatsReporter) Close() error {
	return n.pub.Drain()
}
