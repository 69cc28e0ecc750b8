package progress

import "context"
import "encoding/json"
import "testing"

import "github.com/pkg/errors"
import "github.com/stretchr/testify/assert"
import "github.com/stretchr/testify/mock"
import "github.com/stretchr/testify/require"

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(subject string, data []byte) error {
	return m.Called(subject, data).Error(0)
}

func (m *mockPublisher) Drain() error {
	return m.Called().Error(0)
}

type mockReporter struct {
	mock.Mock
}

func (m *mockReporter) Report(ctx context.Context, e Event) error {
	return m.Called(ctx, e).Error(0)
}

func (m *mockReporter) Close() error {
	return m.Called().Error(0)
}

func TestNatsReporterPublishesJSON(t *testing.T) {
	pub := new(mockPublisher)
	var sent []byte
	pub.On("Publish", "gan.progress", mock.Anything).Run(func(args mock.Arguments) {
		sent = args.Get(1).([]byte)
	}).Return(nil)
	pub.On("Drain").Return(nil)

	r := NewNatsReporter(pub, "gan.progress")
	require.NoError(t, r.Report(context.Background(), Event{Run: "r1", Kind: KindPass, Pass: 4, GeneratorLoss: 0.5}))
	require.NoError(t, r.Close())

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(sent, &got))
	assert.Equal(t, "r1", got["run"])
	assert.Equal(t, "pass", got["kind"])
	assert.Equal(t, float64(4), got["pass"])
	assert.Equal(t, 0.5, got["gen_loss"])
	pub.AssertExpectations(t)
}

func TestNatsReporterSwallowsPublishErrors(t *testing.T) {
	pub := new(mockPublisher)
	pub.On("Publish", "s", mock.Anything).Return(errors.New("down"))
	r := NewNatsReporter(pub, "s")
	assert.NoError(t, r.Report(context.Background(), Event{Kind: KindBatch}))
}

func TestMultiReportsToAll(t *testing.T) {
	ctx := context.Background()
	e := Event{Run: "r", Kind: KindDone}
	a, b := new(mockReporter), new(mockReporter)
	a.On("Report", ctx, e).Return(errors.New("first"))
	b.On("Report", ctx, e).Return(errors.New("second"))
	a.On("Close").Return(nil)
	b.On("Close").Return(nil)

	m := Multi{a, b, LogReporter{}}
	err := m.Report(ctx, e)
	assert.EqualError(t, err, "first")
	require.NoError(t, m.Close())
	a.AssertExpectations(t)
	b.AssertExpectations(t)
}

func TestNewRunIDUnique(t *testing.T) {
	assert.NotEqual(t, NewRunID(), NewRunID())
	assert.Len(t, NewRunID(), 36)
}
