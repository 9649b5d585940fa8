package postgres

import (
	"context"
	"errors"
	"time"

	"flowwatch/internal/model"

	"gorm.io/gorm/clause"
)

// ErrDuplicateSample means a row for the same instrument and update
// timestamp already exists. The source often repeats its last reading
// between updates, so callers usually ignore it.
var ErrDuplicateSample = errors.New("duplicate sample")

func (p *PostgresClient) InsertSample(ctx context.Context, record *SampleRecord) error {
	tx := p.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "instrument_id"},
			{Name: "update_timestamp"},
		},
		DoNothing: true,
	}).Create(record)

	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return ErrDuplicateSample
	}

	return nil
}

// DeleteSamplesBefore removes rows observed before the cutoff and reports
// how many were deleted.
func (p *PostgresClient) DeleteSamplesBefore(ctx context.Context, before time.Time) (int64, error) {
	tx := p.DB.WithContext(ctx).
		Where("observed_at < ?", before).
		Delete(&SampleRecord{})
	return tx.RowsAffected, tx.Error
}

// ToSampleRecord converts an accepted sample into a row for insertion.
func ToSampleRecord(instrumentID string, s model.Sample, observedAt time.Time) *SampleRecord {
	return &SampleRecord{
		InstrumentID:          instrumentID,
		UpdateTimestamp:       s.UpdateTimestamp,
		TotalNetInflow:        s.TotalNetInflow,
		BigVolumeNetInflow:    s.BigVolumeNetInflow,
		BuyMakerBigVolume:     s.BuyMakerBigVolume,
		BuyTakerBigVolume:     s.BuyTakerBigVolume,
		MediumVolumeNetInflow: s.MediumVolumeNetInflow,
		SmallVolumeNetInflow:  s.SmallVolumeNetInflow,
		ObservedAt:            observedAt,
	}
}
