package flowapi

import "github.com/shopspring/decimal"

// samplePayload is the fund-flow response body. Pointer fields tell a
// missing or null field apart from a zero value. Numbers may arrive as JSON
// numbers or numeric strings; decimal accepts both.
type samplePayload struct {
	TotalNetInflow        *decimal.Decimal `json:"totalNetInflow"`        // Net inflow across all order sizes
	BigVolumeNetInflow    *decimal.Decimal `json:"bigVolumeNetInflow"`    // Net inflow of large orders
	BuyMakerBigVolume     *decimal.Decimal `json:"buyMakerBigVolume"`     // Large buys filled as maker
	BuyTakerBigVolume     *decimal.Decimal `json:"buyTakerBigVolume"`     // Large buys filled as taker
	MediumVolumeNetInflow *decimal.Decimal `json:"mediumVolumeNetInflow"` // Net inflow of medium orders
	SmallVolumeNetInflow  *decimal.Decimal `json:"smallVolumeNetInflow"`  // Net inflow of small orders
	UpdateTimestamp       *decimal.Decimal `json:"updateTimestamp"`       // Epoch milliseconds
}
