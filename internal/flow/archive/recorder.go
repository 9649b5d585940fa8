// Package archive writes accepted samples to an append-only store for
// downstream analytics. Nothing here is read back into the engine.
package archive

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"flowwatch/internal/model"
	"flowwatch/pkg/storage/postgres"

	"go.uber.org/zap"
)

const writeTimeout = 2 * time.Second

// SampleWriter is the storage surface the recorder needs.
type SampleWriter interface {
	InsertSample(ctx context.Context, record *postgres.SampleRecord) error
	DeleteSamplesBefore(ctx context.Context, before time.Time) (int64, error)
}

type Config struct {
	QueueSize     int
	Retention     time.Duration // 0 disables pruning
	PruneInterval time.Duration
}

// Stats counts recorder activity.
type Stats struct {
	Written    uint64
	Duplicates uint64
	Dropped    uint64 // queue full
	Failed     uint64
	Pruned     int64
}

// Recorder is an engine observer that queues accepted samples and writes
// them from a single worker goroutine.
type Recorder struct {
	writer SampleWriter
	cfg    Config
	queue  chan *postgres.SampleRecord
	logger *zap.Logger
	now    func() time.Time

	wg sync.WaitGroup

	written, duplicates, dropped, failed atomic.Uint64
	pruned                               atomic.Int64
}

func NewRecorder(writer SampleWriter, cfg Config, logger *zap.Logger) *Recorder {
	if cfg.QueueSize < 1 {
		cfg.QueueSize = 256
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{
		writer: writer,
		cfg:    cfg,
		queue:  make(chan *postgres.SampleRecord, cfg.QueueSize),
		logger: logger,
		now:    time.Now,
	}
}

// OnSample queues the sample without blocking the fetch goroutine.
func (r *Recorder) OnSample(instrumentID string, sample model.Sample, observedAt time.Time) {
	select {
	case r.queue <- postgres.ToSampleRecord(instrumentID, sample, observedAt):
	default:
		r.dropped.Add(1)
		r.logger.Warn("archive queue full, dropping sample", zap.String("instrument", instrumentID))
	}
}

// OnFetchFailure is a no-op; failures are not archived.
func (r *Recorder) OnFetchFailure(string, error) {}

// Start runs the worker until ctx is done. Samples still queued at that
// point are flushed before the worker exits.
func (r *Recorder) Start(ctx context.Context) {
	r.wg.Add(1)
	go r.run(ctx)
}

// Wait blocks until the worker has exited.
func (r *Recorder) Wait() {
	r.wg.Wait()
}

func (r *Recorder) Stats() Stats {
	return Stats{
		Written:    r.written.Load(),
		Duplicates: r.duplicates.Load(),
		Dropped:    r.dropped.Load(),
		Failed:     r.failed.Load(),
		Pruned:     r.pruned.Load(),
	}
}

func (r *Recorder) run(ctx context.Context) {
	defer r.wg.Done()

	var prune <-chan time.Time
	if r.cfg.Retention > 0 && r.cfg.PruneInterval > 0 {
		ticker := time.NewTicker(r.cfg.PruneInterval)
		defer ticker.Stop()
		prune = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			r.flush()
			return
		case rec := <-r.queue:
			r.write(rec)
		case <-prune:
			r.prune()
		}
	}
}

func (r *Recorder) flush() {
	for {
		select {
		case rec := <-r.queue:
			r.write(rec)
		default:
			return
		}
	}
}

func (r *Recorder) write(rec *postgres.SampleRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	err := r.writer.InsertSample(ctx, rec)
	cancel()

	switch {
	case err == nil:
		r.written.Add(1)
	case errors.Is(err, postgres.ErrDuplicateSample):
		r.duplicates.Add(1)
	default:
		r.failed.Add(1)
		r.logger.Warn("failed to archive sample",
			zap.String("instrument", rec.InstrumentID),
			zap.Time("update_timestamp", rec.UpdateTimestamp),
			zap.Error(err),
		)
	}
}

func (r *Recorder) prune() {
	cutoff := r.now().Add(-r.cfg.Retention)

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	n, err := r.writer.DeleteSamplesBefore(ctx, cutoff)
	cancel()
	if err != nil {
		r.logger.Warn("failed to prune archive", zap.Time("cutoff", cutoff), zap.Error(err))
		return
	}
	r.pruned.Add(n)
	if n > 0 {
		r.logger.Info("pruned archived samples", zap.Int64("rows", n), zap.Time("cutoff", cutoff))
	}
}
