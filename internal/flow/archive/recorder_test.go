package archive

import (
	"context"
	"testing"
	"time"

	"flowwatch/internal/model"
	"flowwatch/pkg/storage/postgres"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type mockWriter struct {
	mock.Mock
}

func (m *mockWriter) InsertSample(ctx context.Context, record *postgres.SampleRecord) error {
	return m.Called(ctx, record).Error(0)
}

func (m *mockWriter) DeleteSamplesBefore(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

func sample(total float64, ts int64) model.Sample {
	return model.Sample{TotalNetInflow: total, UpdateTimestamp: time.UnixMilli(ts)}
}

func forInstrument(id string) interface{} {
	return mock.MatchedBy(func(r *postgres.SampleRecord) bool { return r.InstrumentID == id })
}

func TestRecorder_WritesAcceptedSamples(t *testing.T) {
	w := new(mockWriter)
	w.On("InsertSample", mock.Anything, forInstrument("BTCUSDT")).Return(nil)
	w.On("InsertSample", mock.Anything, forInstrument("ETHUSDT")).Return(postgres.ErrDuplicateSample)
	w.On("InsertSample", mock.Anything, forInstrument("SOLUSDT")).Return(pkgerrors.New("connection reset"))

	r := NewRecorder(w, Config{QueueSize: 8}, zaptest.NewLogger(t))
	ctx, cancel := context.WithCancel(context.Background())
	r.Start(ctx)

	observed := time.UnixMilli(5000)
	r.OnSample("BTCUSDT", sample(10, 1000), observed)
	r.OnSample("ETHUSDT", sample(-5, 1000), observed)
	r.OnSample("SOLUSDT", sample(1, 1000), observed)

	require.Eventually(t, func() bool {
		s := r.Stats()
		return s.Written+s.Duplicates+s.Failed == 3
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	r.Wait()

	stats := r.Stats()
	assert.Equal(t, uint64(1), stats.Written)
	assert.Equal(t, uint64(1), stats.Duplicates)
	assert.Equal(t, uint64(1), stats.Failed)

	w.AssertCalled(t, "InsertSample", mock.Anything, mock.MatchedBy(func(r *postgres.SampleRecord) bool {
		return r.InstrumentID == "BTCUSDT" && r.TotalNetInflow == 10 && r.ObservedAt.Equal(observed)
	}))
}

func TestRecorder_DropsWhenQueueFull(t *testing.T) {
	w := new(mockWriter)
	w.On("InsertSample", mock.Anything, mock.Anything).Return(nil)

	r := NewRecorder(w, Config{QueueSize: 1}, zaptest.NewLogger(t))

	// Worker not started yet, so the second sample has nowhere to go.
	r.OnSample("BTCUSDT", sample(1, 1), time.UnixMilli(1))
	r.OnSample("BTCUSDT", sample(2, 2), time.UnixMilli(2))
	assert.Equal(t, uint64(1), r.Stats().Dropped)

	ctx, cancel := context.WithCancel(context.Background())
	r.Start(ctx)
	require.Eventually(t, func() bool { return r.Stats().Written == 1 }, 2*time.Second, 10*time.Millisecond)
	cancel()
	r.Wait()

	w.AssertNumberOfCalls(t, "InsertSample", 1)
}

func TestRecorder_FlushesOnShutdown(t *testing.T) {
	w := new(mockWriter)
	w.On("InsertSample", mock.Anything, mock.Anything).Return(nil)

	r := NewRecorder(w, Config{QueueSize: 4}, zaptest.NewLogger(t))
	for i := int64(1); i <= 3; i++ {
		r.OnSample("BTCUSDT", sample(float64(i), i), time.UnixMilli(i))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r.Start(ctx)
	r.Wait()

	assert.Equal(t, uint64(3), r.Stats().Written)
}

func TestRecorder_PrunesByRetention(t *testing.T) {
	now := time.UnixMilli(10_000_000)
	w := new(mockWriter)
	w.On("DeleteSamplesBefore", mock.Anything, now.Add(-time.Hour)).Return(int64(2), nil)

	r := NewRecorder(w, Config{Retention: time.Hour, PruneInterval: 10 * time.Millisecond}, zaptest.NewLogger(t))
	r.now = func() time.Time { return now }

	ctx, cancel := context.WithCancel(context.Background())
	r.Start(ctx)
	require.Eventually(t, func() bool { return r.Stats().Pruned >= 4 }, 2*time.Second, 10*time.Millisecond)
	cancel()
	r.Wait()

	w.AssertNotCalled(t, "InsertSample", mock.Anything, mock.Anything)
}

func TestRecorder_NoPruneWithoutRetention(t *testing.T) {
	w := new(mockWriter)
	r := NewRecorder(w, Config{PruneInterval: time.Millisecond}, zaptest.NewLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	r.Start(ctx)
	time.Sleep(20 * time.Millisecond)
	cancel()
	r.Wait()

	w.AssertNotCalled(t, "DeleteSamplesBefore", mock.Anything, mock.Anything)
}
