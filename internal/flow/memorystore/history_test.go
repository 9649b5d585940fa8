package memorystore

import (
	"testing"
	"time"

	"flowwatch/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func points(values ...float64) []model.HistoryPoint {
	base := time.Unix(1700000000, 0)
	out := make([]model.HistoryPoint, len(values))
	for i, v := range values {
		out[i] = model.HistoryPoint{ObservedAt: base.Add(time.Duration(i) * time.Second), Value: v}
	}
	return out
}

func values(ps []model.HistoryPoint) []float64 {
	out := make([]float64, len(ps))
	for i, p := range ps {
		out[i] = p.Value
	}
	return out
}

func TestNewHistoryBuffer_InvalidCapacity(t *testing.T) {
	for _, capacity := range []int{0, -1} {
		_, err := NewHistoryBuffer(capacity)
		require.ErrorIs(t, err, model.ErrConfiguration)
	}
}

func TestHistoryBuffer_Bounded(t *testing.T) {
	const capacity = 5

	for total := 0; total <= 3*capacity; total++ {
		buf, err := NewHistoryBuffer(capacity)
		require.NoError(t, err)

		all := make([]float64, total)
		for i := range all {
			all[i] = float64(i)
		}
		for _, p := range points(all...) {
			buf.Append(p)
		}

		want := all
		if total > capacity {
			want = all[total-capacity:]
		}
		assert.Equal(t, min(capacity, total), buf.Len(), "total=%d", total)
		assert.Equal(t, want, values(buf.ToSlice()), "total=%d", total)
		assert.Equal(t, capacity, buf.Cap())
	}
}

func TestHistoryBuffer_CapacityOne(t *testing.T) {
	buf, err := NewHistoryBuffer(1)
	require.NoError(t, err)

	for _, p := range points(1, 2, 3) {
		buf.Append(p)
		require.Equal(t, 1, buf.Len())
		assert.Equal(t, []model.HistoryPoint{p}, buf.ToSlice())
	}
}

func TestHistoryBuffer_Scenario(t *testing.T) {
	buf, err := NewHistoryBuffer(3)
	require.NoError(t, err)

	for _, p := range points(10, -5, 20, 30) {
		buf.Append(p)
	}

	assert.Equal(t, []float64{-5, 20, 30}, values(buf.ToSlice()))
}

func TestHistoryBuffer_ArrivalOrderNotTimestampOrder(t *testing.T) {
	buf, err := NewHistoryBuffer(4)
	require.NoError(t, err)

	late := model.HistoryPoint{ObservedAt: time.Unix(200, 0), Value: 1}
	early := model.HistoryPoint{ObservedAt: time.Unix(100, 0), Value: 2}
	buf.Append(late)
	buf.Append(early)

	assert.Equal(t, []model.HistoryPoint{late, early}, buf.ToSlice())
}

func TestHistoryBuffer_ToSliceIsCopy(t *testing.T) {
	buf, err := NewHistoryBuffer(2)
	require.NoError(t, err)
	for _, p := range points(1, 2) {
		buf.Append(p)
	}

	got := buf.ToSlice()
	got[0].Value = 99

	assert.Equal(t, []float64{1, 2}, values(buf.ToSlice()))
}

func TestHistoryBuffer_Empty(t *testing.T) {
	buf, err := NewHistoryBuffer(3)
	require.NoError(t, err)

	assert.Equal(t, 0, buf.Len())
	assert.Empty(t, buf.ToSlice())
	assert.NotNil(t, buf.ToSlice())
}
