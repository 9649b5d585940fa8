package postgres

import "time"

// SampleRecord is one accepted fund-flow sample stored for downstream analysis.
type SampleRecord struct {
	ID uint `gorm:"primaryKey"`

	// unique index
	InstrumentID    string    `gorm:"type:text;not null;index:idx_sample_instrument;index:idx_instrument_update_ts,unique"`
	UpdateTimestamp time.Time `gorm:"not null;index:idx_instrument_update_ts,unique"`

	TotalNetInflow        float64 `gorm:"type:numeric;not null"`
	BigVolumeNetInflow    float64 `gorm:"type:numeric;not null"`
	BuyMakerBigVolume     float64 `gorm:"type:numeric;not null"`
	BuyTakerBigVolume     float64 `gorm:"type:numeric;not null"`
	MediumVolumeNetInflow float64 `gorm:"type:numeric;not null"`
	SmallVolumeNetInflow  float64 `gorm:"type:numeric;not null"`

	ObservedAt time.Time `gorm:"not null;index:idx_sample_observed_at"`

	RecordedAt time.Time `gorm:"autoCreateTime"`
}

// TableName overrides the default table name for GORM.
func (SampleRecord) TableName() string {
	return "flow_sample_record"
}
