package flowapi

import (
	"bytes"
	"encoding/json"
	"math"
	"time"

	"flowwatch/internal/model"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// maxUpdateTimestampMs is 9999-12-31T23:59:59.999Z.
const maxUpdateTimestampMs = 253402300799999

// ParseSample validates a response body and converts it to a Sample.
// Anything other than a JSON object carrying all six numeric fields within
// float64 range and a positive epoch-millisecond updateTimestamp no later
// than year 9999 is model.ErrMalformedPayload;
// no partially populated Sample is ever returned.
func ParseSample(body []byte) (model.Sample, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return model.Sample{}, errors.Wrap(model.ErrMalformedPayload, "response is not a JSON object")
	}

	var p samplePayload
	if err := json.Unmarshal(trimmed, &p); err != nil {
		return model.Sample{}, errors.Wrapf(model.ErrMalformedPayload, "decode payload: %v", err)
	}

	fields := []struct {
		name  string
		value *decimal.Decimal
	}{
		{"totalNetInflow", p.TotalNetInflow},
		{"bigVolumeNetInflow", p.BigVolumeNetInflow},
		{"buyMakerBigVolume", p.BuyMakerBigVolume},
		{"buyTakerBigVolume", p.BuyTakerBigVolume},
		{"mediumVolumeNetInflow", p.MediumVolumeNetInflow},
		{"smallVolumeNetInflow", p.SmallVolumeNetInflow},
		{"updateTimestamp", p.UpdateTimestamp},
	}
	for _, f := range fields {
		if f.value == nil {
			return model.Sample{}, errors.Wrapf(model.ErrMalformedPayload, "missing field %q", f.name)
		}
	}

	if !p.UpdateTimestamp.IsInteger() || !p.UpdateTimestamp.IsPositive() ||
		p.UpdateTimestamp.GreaterThan(decimal.NewFromInt(maxUpdateTimestampMs)) {
		return model.Sample{}, errors.Wrapf(model.ErrMalformedPayload,
			"updateTimestamp must be positive epoch milliseconds, got %s", p.UpdateTimestamp)
	}

	// Values beyond float64 range would become ±Inf and could not be
	// encoded as JSON downstream.
	values := make([]float64, 6)
	for i, f := range fields[:6] {
		v := f.value.InexactFloat64()
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return model.Sample{}, errors.Wrapf(model.ErrMalformedPayload, "%s out of range: %s", f.name, f.value)
		}
		values[i] = v
	}

	return model.Sample{
		TotalNetInflow:        values[0],
		BigVolumeNetInflow:    values[1],
		BuyMakerBigVolume:     values[2],
		BuyTakerBigVolume:     values[3],
		MediumVolumeNetInflow: values[4],
		SmallVolumeNetInflow:  values[5],
		UpdateTimestamp:       time.UnixMilli(p.UpdateTimestamp.IntPart()),
	}, nil
}
