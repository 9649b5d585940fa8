package engine

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"flowwatch/internal/flow/memorystore"
	"flowwatch/internal/model"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var (
	// ErrAlreadyStarted is returned by Start on a running engine.
	ErrAlreadyStarted = errors.New("engine already started")
	// ErrStopped is returned by Start after Stop; engines are not restartable.
	ErrStopped = errors.New("engine stopped")
)

// DataSource fetches the current sample for one instrument.
type DataSource interface {
	FetchSample(ctx context.Context, instrumentID string) (model.Sample, error)
}

// DataSourceFunc is a function adapter for DataSource.
type DataSourceFunc func(ctx context.Context, instrumentID string) (model.Sample, error)

func (f DataSourceFunc) FetchSample(ctx context.Context, instrumentID string) (model.Sample, error) {
	return f(ctx, instrumentID)
}

// Option customizes an Engine.
type Option func(*Engine)

// WithObserver adds an observer. May be given more than once.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		e.observers = append(e.observers, o)
	}
}

// WithClock replaces time.Now for ObservedAt and PublishedAt stamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// Stats counts engine activity since construction.
type Stats struct {
	Cycles    uint64 // Poll cycles started
	Fetched   uint64 // Successful fetches applied
	Failed    uint64 // Failed fetches
	Discarded uint64 // Results dropped because they landed after Stop
}

// Engine polls a DataSource for every tracked instrument and publishes
// snapshots of the merged state.
type Engine struct {
	cfg       Config
	source    DataSource
	store     *memorystore.StateStore
	observers observers
	logger    *zap.Logger
	now       func() time.Time

	publishMu sync.Mutex // serializes snapshot swaps
	current   atomic.Pointer[memorystore.Snapshot]
	subs      *subscribers

	lifeMu  sync.Mutex
	started bool
	stopped bool
	cancel  context.CancelFunc
	done    chan struct{} // closed once the loop and all fetches have returned
	loopWg  sync.WaitGroup
	fetchWg sync.WaitGroup

	cycles, fetched, failed, discarded atomic.Uint64
}

// New validates cfg and builds an engine whose initial snapshot lists every
// instrument as absent with empty history.
func New(cfg Config, source DataSource, logger *zap.Logger, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if source == nil {
		return nil, errors.Wrap(model.ErrConfiguration, "data source is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	store, err := memorystore.NewStateStore(cfg.Instruments, cfg.HistoryCapacity)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:    cfg,
		source: source,
		store:  store,
		logger: logger,
		now:    time.Now,
		subs:   newSubscribers(),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.current.Store(store.Snapshot(1, e.now()))
	return e, nil
}

// Start begins the polling loop. The first cycle runs immediately.
func (e *Engine) Start(ctx context.Context) error {
	e.lifeMu.Lock()
	defer e.lifeMu.Unlock()

	if e.stopped {
		return ErrStopped
	}
	if e.started {
		return ErrAlreadyStarted
	}

	runCtx, cancel := context.WithCancel(ctx)
	e.started = true
	e.cancel = cancel

	e.loopWg.Add(1)
	go e.run(runCtx)

	e.logger.Info("polling engine started",
		zap.Duration("interval", e.cfg.PollInterval),
		zap.Int("history_capacity", e.cfg.HistoryCapacity),
		zap.Strings("instruments", e.store.IDs()),
	)
	return nil
}

// Stop cancels the loop and waits, bounded by ctx, for in-flight fetches to
// return. Results that arrive after Stop are discarded. If ctx expires first,
// a later Stop waits again for the same fetches.
func (e *Engine) Stop(ctx context.Context) error {
	e.lifeMu.Lock()
	if !e.stopped {
		e.stopped = true
		if e.cancel != nil {
			e.cancel()
			e.done = make(chan struct{})
			go func(done chan struct{}) {
				// The loop is the only caller of fetchWg.Add, so wait for it first.
				e.loopWg.Wait()
				e.fetchWg.Wait()
				close(done)
			}(e.done)
		}
	}
	done := e.done
	e.lifeMu.Unlock()

	if done == nil {
		// never started
		return nil
	}

	select {
	case <-done:
		e.logger.Info("polling engine stopped", zap.Any("stats", e.Stats()))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stats returns activity counters.
func (e *Engine) Stats() Stats {
	return Stats{
		Cycles:    e.cycles.Load(),
		Fetched:   e.fetched.Load(),
		Failed:    e.failed.Load(),
		Discarded: e.discarded.Load(),
	}
}

// run is the fixed-rate polling loop. Ticks never wait for the previous
// cycle's fetches to settle.
func (e *Engine) run(ctx context.Context) {
	defer e.loopWg.Done()

	ticker := time.NewTicker(e.cfg.PollInterval)
	defer ticker.Stop()

	// Poll immediately on start.
	e.pollAll(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.pollAll(ctx)
		}
	}
}

// pollAll issues one fetch per instrument and returns without waiting.
func (e *Engine) pollAll(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	cycle := e.cycles.Add(1)
	ids := e.store.IDs()
	e.logger.Debug("poll cycle started", zap.Uint64("cycle", cycle), zap.Int("instruments", len(ids)))

	for _, id := range ids {
		e.fetchWg.Add(1)
		go e.pollInstrument(ctx, cycle, id)
	}
}

// pollInstrument fetches one instrument and settles the result.
func (e *Engine) pollInstrument(ctx context.Context, cycle uint64, id string) {
	defer e.fetchWg.Done()

	sample, err := e.source.FetchSample(ctx, id)
	if ctx.Err() != nil {
		e.discarded.Add(1)
		e.logger.Debug("discarding result after stop",
			zap.String("instrument", id),
			zap.Uint64("cycle", cycle),
		)
		return
	}

	if err != nil {
		fetchErr := model.NewFetchError(id, cycle, err)
		e.failed.Add(1)
		e.logger.Warn("failed to fetch sample",
			zap.String("instrument", id),
			zap.Uint64("cycle", cycle),
			zap.Error(fetchErr),
		)
		e.publish(id)
		e.observers.OnFetchFailure(id, fetchErr)
		return
	}

	st, _ := e.store.Get(id)
	point := st.Apply(sample, e.now)
	e.fetched.Add(1)

	e.publish(id)
	e.observers.OnSample(id, sample, point.ObservedAt)
}

// publish swaps in a snapshot carrying the instrument's current view and
// notifies subscribers. The view is read under publishMu, so a slower
// publisher can never replace a newer view with an older one.
func (e *Engine) publish(id string) {
	st, ok := e.store.Get(id)
	if !ok {
		return
	}

	e.publishMu.Lock()
	next := e.current.Load().With(st.View(), e.now())
	e.current.Store(next)
	e.publishMu.Unlock()

	e.broadcast(next)
}
