package model

import "time"

// Sample is one instrument's fund-flow snapshot as reported by the source.
// It is passed by value and never modified after construction; a newer poll
// supersedes it.
type Sample struct {
	TotalNetInflow        float64   `json:"totalNetInflow"`        // Net inflow across all order sizes
	BigVolumeNetInflow    float64   `json:"bigVolumeNetInflow"`    // Net inflow of large orders
	BuyMakerBigVolume     float64   `json:"buyMakerBigVolume"`     // Large-order volume where the buyer was maker
	BuyTakerBigVolume     float64   `json:"buyTakerBigVolume"`     // Large-order volume where the buyer was taker
	MediumVolumeNetInflow float64   `json:"mediumVolumeNetInflow"` // Net inflow of medium orders
	SmallVolumeNetInflow  float64   `json:"smallVolumeNetInflow"`  // Net inflow of small orders
	UpdateTimestamp       time.Time `json:"updateTimestamp"`       // Source-side update time
}

// TrendValue is the scalar recorded in history for this sample.
func (s Sample) TrendValue() float64 {
	return s.TotalNetInflow
}

// HistoryPoint is one entry of an instrument's sliding window.
type HistoryPoint struct {
	ObservedAt time.Time `json:"observedAt"` // Local time the poll completed
	Value      float64   `json:"value"`      // TotalNetInflow of the accepted sample
}
