package memorystore

import (
	"sync"
	"time"

	"flowwatch/internal/model"

	"github.com/pkg/errors"
)

// InstrumentState pairs an instrument's latest sample with its history.
type InstrumentState struct {
	id string

	mu      sync.Mutex
	latest  model.Sample
	hasData bool
	history *HistoryBuffer
}

// Apply replaces the latest sample and appends its trend value to history.
// ObservedAt is taken from now while the lock is held, so history stays
// non-decreasing in ObservedAt even when fetches complete out of order.
func (st *InstrumentState) Apply(s model.Sample, now func() time.Time) model.HistoryPoint {
	st.mu.Lock()
	defer st.mu.Unlock()

	point := model.HistoryPoint{ObservedAt: now(), Value: s.TrendValue()}
	st.latest = s
	st.hasData = true
	st.history.Append(point)
	return point
}

// View returns a read-only copy of the current state.
func (st *InstrumentState) View() InstrumentView {
	st.mu.Lock()
	defer st.mu.Unlock()

	return InstrumentView{
		id:        st.id,
		latest:    st.latest,
		hasLatest: st.hasData,
		history:   st.history.ToSlice(),
	}
}

// StateStore holds one InstrumentState per tracked instrument. The set of
// instruments is fixed when the store is built, so lookups need no lock;
// each state carries its own mutex.
type StateStore struct {
	order []string
	data  map[string]*InstrumentState
}

// NewStateStore registers every instrument with an empty history of the
// given capacity.
func NewStateStore(instruments []string, capacity int) (*StateStore, error) {
	if len(instruments) == 0 {
		return nil, errors.Wrap(model.ErrConfiguration, "tracked instrument set is empty")
	}

	s := &StateStore{
		order: make([]string, 0, len(instruments)),
		data:  make(map[string]*InstrumentState, len(instruments)),
	}
	for _, id := range instruments {
		if id == "" {
			return nil, errors.Wrap(model.ErrConfiguration, "instrument id must not be empty")
		}
		if _, ok := s.data[id]; ok {
			return nil, errors.Wrapf(model.ErrConfiguration, "duplicate instrument %q", id)
		}

		history, err := NewHistoryBuffer(capacity)
		if err != nil {
			return nil, err
		}
		s.data[id] = &InstrumentState{id: id, history: history}
		s.order = append(s.order, id)
	}
	return s, nil
}

// Get returns the state for id.
func (s *StateStore) Get(id string) (*InstrumentState, bool) {
	st, ok := s.data[id]
	return st, ok
}

// IDs returns the tracked instruments in registration order.
func (s *StateStore) IDs() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Snapshot builds a snapshot of every instrument at the given sequence.
func (s *StateStore) Snapshot(seq uint64, at time.Time) *Snapshot {
	views := make(map[string]InstrumentView, len(s.data))
	for _, id := range s.order {
		views[id] = s.data[id].View()
	}
	return &Snapshot{
		seq:         seq,
		publishedAt: at,
		order:       s.order,
		views:       views,
	}
}
