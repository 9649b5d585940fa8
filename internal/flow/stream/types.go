package stream

import (
	"flowwatch/internal/flow/memorystore"
)

// SnapshotMessage is the JSON frame pushed to feed clients.
type SnapshotMessage struct {
	Type        string              `json:"type"`        // Always "snapshot"
	Seq         uint64              `json:"seq"`         // Publication sequence, increasing
	PublishedAt int64               `json:"publishedAt"` // Milliseconds since epoch
	Instruments []InstrumentMessage `json:"instruments"` // In tracking order
}

// InstrumentMessage carries one instrument's latest sample and history.
type InstrumentMessage struct {
	InstrumentID string         `json:"instrumentId"`
	LatestSample *SampleMessage `json:"latestSample"` // null until the first successful poll
	History      []HistoryPoint `json:"history"`      // Oldest first
}

// SampleMessage is the wire form of an accepted sample.
type SampleMessage struct {
	TotalNetInflow        float64 `json:"totalNetInflow"`
	BigVolumeNetInflow    float64 `json:"bigVolumeNetInflow"`
	BuyMakerBigVolume     float64 `json:"buyMakerBigVolume"`
	BuyTakerBigVolume     float64 `json:"buyTakerBigVolume"`
	MediumVolumeNetInflow float64 `json:"mediumVolumeNetInflow"`
	SmallVolumeNetInflow  float64 `json:"smallVolumeNetInflow"`
	UpdateTimestamp       int64   `json:"updateTimestamp"` // Milliseconds since epoch
}

// HistoryPoint is one entry of an instrument's sliding window.
type HistoryPoint struct {
	ObservedAt int64   `json:"observedAt"` // Milliseconds since epoch
	Value      float64 `json:"value"`
}

// NewSnapshotMessage converts a snapshot into its wire form.
func NewSnapshotMessage(s *memorystore.Snapshot) SnapshotMessage {
	msg := SnapshotMessage{
		Type:        "snapshot",
		Seq:         s.Seq(),
		PublishedAt: s.PublishedAt().UnixMilli(),
		Instruments: make([]InstrumentMessage, 0, s.Len()),
	}

	for _, v := range s.Instruments() {
		im := InstrumentMessage{
			InstrumentID: v.InstrumentID(),
			History:      make([]HistoryPoint, 0, v.HistoryLen()),
		}
		if latest, ok := v.LatestSample(); ok {
			im.LatestSample = &SampleMessage{
				TotalNetInflow:        latest.TotalNetInflow,
				BigVolumeNetInflow:    latest.BigVolumeNetInflow,
				BuyMakerBigVolume:     latest.BuyMakerBigVolume,
				BuyTakerBigVolume:     latest.BuyTakerBigVolume,
				MediumVolumeNetInflow: latest.MediumVolumeNetInflow,
				SmallVolumeNetInflow:  latest.SmallVolumeNetInflow,
				UpdateTimestamp:       latest.UpdateTimestamp.UnixMilli(),
			}
		}
		for _, p := range v.History() {
			im.History = append(im.History, HistoryPoint{ObservedAt: p.ObservedAt.UnixMilli(), Value: p.Value})
		}
		msg.Instruments = append(msg.Instruments, im)
	}
	return msg
}
