package memorystore

import (
	"time"

	"flowwatch/internal/model"
)

// InstrumentView is a read-only copy of one instrument's state at publish time.
type InstrumentView struct {
	id        string
	latest    model.Sample
	hasLatest bool
	history   []model.HistoryPoint
}

// InstrumentID returns the instrument identifier.
func (v InstrumentView) InstrumentID() string {
	return v.id
}

// LatestSample returns the most recent accepted sample, or false if the
// instrument has not been polled successfully yet.
func (v InstrumentView) LatestSample() (model.Sample, bool) {
	return v.latest, v.hasLatest
}

// History returns the sliding window oldest first. Callers get their own copy.
func (v InstrumentView) History() []model.HistoryPoint {
	out := make([]model.HistoryPoint, len(v.history))
	copy(out, v.history)
	return out
}

// HistoryLen returns the number of history points.
func (v InstrumentView) HistoryLen() int {
	return len(v.history)
}

// Snapshot is an immutable view of every tracked instrument at one publish point.
type Snapshot struct {
	seq         uint64
	publishedAt time.Time
	order       []string // shared between snapshots, never modified
	views       map[string]InstrumentView
}

// Seq increases by one on every publication.
func (s *Snapshot) Seq() uint64 {
	return s.seq
}

// PublishedAt is the local time the snapshot was built.
func (s *Snapshot) PublishedAt() time.Time {
	return s.publishedAt
}

// Instrument returns the view for id.
func (s *Snapshot) Instrument(id string) (InstrumentView, bool) {
	v, ok := s.views[id]
	return v, ok
}

// Instruments returns every view in registration order.
func (s *Snapshot) Instruments() []InstrumentView {
	out := make([]InstrumentView, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.views[id])
	}
	return out
}

// Len returns the number of instruments.
func (s *Snapshot) Len() int {
	return len(s.order)
}

// With returns a successor snapshot where view replaces the entry for its
// instrument. The receiver is left untouched.
func (s *Snapshot) With(view InstrumentView, at time.Time) *Snapshot {
	views := make(map[string]InstrumentView, len(s.views))
	for id, v := range s.views {
		views[id] = v
	}
	views[view.id] = view

	return &Snapshot{
		seq:         s.seq + 1,
		publishedAt: at,
		order:       s.order,
		views:       views,
	}
}
