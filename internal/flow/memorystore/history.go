package memorystore

import (
	"flowwatch/internal/model"

	"github.com/pkg/errors"
)

// HistoryBuffer is a fixed-capacity sliding window of history points.
// Appending past capacity evicts the oldest point. It is not safe for
// concurrent use; the owning InstrumentState serializes access.
type HistoryBuffer struct {
	buf   []model.HistoryPoint
	head  int // oldest element
	count int
}

// NewHistoryBuffer creates a buffer holding at most capacity points.
func NewHistoryBuffer(capacity int) (*HistoryBuffer, error) {
	if capacity < 1 {
		return nil, errors.Wrapf(model.ErrConfiguration, "history capacity must be >= 1, got %d", capacity)
	}
	return &HistoryBuffer{
		buf: make([]model.HistoryPoint, capacity),
	}, nil
}

// Append adds p in arrival order, evicting the oldest point when full.
// Points are not reordered by timestamp.
func (b *HistoryBuffer) Append(p model.HistoryPoint) {
	capacity := len(b.buf)
	if b.count < capacity {
		b.buf[(b.head+b.count)%capacity] = p
		b.count++
		return
	}

	// Full: overwrite the oldest slot and advance head
	b.buf[b.head] = p
	b.head = (b.head + 1) % capacity
}

// ToSlice returns the buffered points oldest first. The result is a copy.
func (b *HistoryBuffer) ToSlice() []model.HistoryPoint {
	out := make([]model.HistoryPoint, b.count)
	if b.count == 0 {
		return out
	}

	capacity := len(b.buf)
	if b.head+b.count <= capacity {
		copy(out, b.buf[b.head:b.head+b.count])
	} else {
		// Wrapped: [head...end) + [0...rest)
		n := copy(out, b.buf[b.head:])
		copy(out[n:], b.buf[:b.count-n])
	}
	return out
}

// Len returns the number of buffered points.
func (b *HistoryBuffer) Len() int {
	return b.count
}

// Cap returns the fixed capacity.
func (b *HistoryBuffer) Cap() int {
	return len(b.buf)
}
