package memorystore

import (
	"testing"
	"time"

	"flowwatch/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshot_WithIsCopyOnWrite(t *testing.T) {
	store, err := NewStateStore([]string{"BTCUSDT", "ETHUSDT"}, 3)
	require.NoError(t, err)

	first := store.Snapshot(1, time.Unix(0, 0))

	st, _ := store.Get("ETHUSDT")
	st.Apply(model.Sample{TotalNetInflow: 30}, fixedClock(time.Unix(5, 0)))
	second := first.With(st.View(), time.Unix(5, 0))

	assert.Equal(t, uint64(1), first.Seq())
	assert.Equal(t, uint64(2), second.Seq())
	assert.Equal(t, time.Unix(5, 0), second.PublishedAt())

	old, ok := first.Instrument("ETHUSDT")
	require.True(t, ok)
	_, has := old.LatestSample()
	assert.False(t, has, "previous snapshot must not observe the update")

	updated, ok := second.Instrument("ETHUSDT")
	require.True(t, ok)
	latest, has := updated.LatestSample()
	require.True(t, has)
	assert.Equal(t, 30.0, latest.TotalNetInflow)

	btcBefore, _ := first.Instrument("BTCUSDT")
	btcAfter, _ := second.Instrument("BTCUSDT")
	assert.Equal(t, btcBefore, btcAfter)
}

func TestSnapshot_InstrumentsKeepRegistrationOrder(t *testing.T) {
	ids := []string{"SOLUSDT", "BTCUSDT", "ETHUSDT"}
	store, err := NewStateStore(ids, 3)
	require.NoError(t, err)

	snap := store.Snapshot(1, time.Unix(0, 0))
	require.Equal(t, 3, snap.Len())

	var got []string
	for _, v := range snap.Instruments() {
		got = append(got, v.InstrumentID())
	}
	assert.Equal(t, ids, got)
}

func TestInstrumentView_HistoryIsCopy(t *testing.T) {
	store, err := NewStateStore([]string{"BTCUSDT"}, 3)
	require.NoError(t, err)
	st, _ := store.Get("BTCUSDT")
	st.Apply(model.Sample{TotalNetInflow: 7}, fixedClock(time.Unix(1, 0)))

	view := st.View()
	h := view.History()
	h[0].Value = -1

	assert.Equal(t, 7.0, view.History()[0].Value)
}
