package engine

import (
	"sync"
	"sync/atomic"

	"flowwatch/internal/flow/memorystore"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handle identifies a subscription.
type Handle uuid.UUID

func (h Handle) String() string {
	return uuid.UUID(h).String()
}

// SnapshotFunc receives published snapshots. It must not block for long:
// it runs on the goroutine that published the snapshot.
type SnapshotFunc func(*memorystore.Snapshot)

type subscription struct {
	handle  Handle
	fn      SnapshotFunc
	removed atomic.Bool

	mu      sync.Mutex // serializes delivery to this subscriber
	lastSeq uint64
}

// deliver invokes the callback unless a newer snapshot was already
// delivered or the subscription was removed.
func (s *subscription) deliver(snap *memorystore.Snapshot, logger *zap.Logger) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.removed.Load() || snap.Seq() <= s.lastSeq {
		return
	}
	s.lastSeq = snap.Seq()

	defer func() {
		if r := recover(); r != nil {
			logger.Error("subscriber panicked",
				zap.Stringer("handle", s.handle),
				zap.Uint64("seq", snap.Seq()),
				zap.Any("panic", r),
			)
		}
	}()
	s.fn(snap)
}

type subscribers struct {
	mu   sync.RWMutex
	subs map[Handle]*subscription
}

func newSubscribers() *subscribers {
	return &subscribers{subs: make(map[Handle]*subscription)}
}

func (s *subscribers) add(fn SnapshotFunc) *subscription {
	sub := &subscription{handle: Handle(uuid.New()), fn: fn}

	s.mu.Lock()
	s.subs[sub.handle] = sub
	s.mu.Unlock()
	return sub
}

func (s *subscribers) remove(h Handle) bool {
	s.mu.Lock()
	sub, ok := s.subs[h]
	delete(s.subs, h)
	s.mu.Unlock()

	if ok {
		sub.removed.Store(true)
	}
	return ok
}

func (s *subscribers) list() []*subscription {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*subscription, 0, len(s.subs))
	for _, sub := range s.subs {
		out = append(out, sub)
	}
	return out
}

// Subscribe registers fn and immediately calls it with the current
// snapshot, then again after every publication. Delivery to one subscriber
// is serialized and never goes back in Seq.
func (e *Engine) Subscribe(fn SnapshotFunc) Handle {
	sub := e.subs.add(fn)
	sub.deliver(e.current.Load(), e.logger)

	e.logger.Debug("subscriber added", zap.Stringer("handle", sub.handle))
	return sub.handle
}

// Unsubscribe removes a subscription. It is safe to call from inside a
// callback, including the subscriber's own.
func (e *Engine) Unsubscribe(h Handle) bool {
	ok := e.subs.remove(h)
	if ok {
		e.logger.Debug("subscriber removed", zap.Stringer("handle", h))
	}
	return ok
}

// CurrentSnapshot returns the latest published snapshot without waiting
// for in-flight fetches.
func (e *Engine) CurrentSnapshot() *memorystore.Snapshot {
	return e.current.Load()
}

// broadcast runs with no engine lock held so callbacks may call back into
// the engine.
func (e *Engine) broadcast(snap *memorystore.Snapshot) {
	for _, sub := range e.subs.list() {
		sub.deliver(snap, e.logger)
	}
}
