package flowapi

import (
	"testing"
	"time"

	"flowwatch/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validBody = `{
	"totalNetInflow": 1234.5,
	"bigVolumeNetInflow": -200,
	"buyMakerBigVolume": "50.25",
	"buyTakerBigVolume": 75,
	"mediumVolumeNetInflow": 10,
	"smallVolumeNetInflow": -3.5,
	"updateTimestamp": 1700000000123,
	"extra": "ignored"
}`

// go test -v --run TestParseSample
func TestParseSample(t *testing.T) {
	s, err := ParseSample([]byte(validBody))
	require.NoError(t, err)

	assert.Equal(t, model.Sample{
		TotalNetInflow:        1234.5,
		BigVolumeNetInflow:    -200,
		BuyMakerBigVolume:     50.25,
		BuyTakerBigVolume:     75,
		MediumVolumeNetInflow: 10,
		SmallVolumeNetInflow:  -3.5,
		UpdateTimestamp:       time.UnixMilli(1700000000123),
	}, s)
}

// go test -v --run TestParseSample_Malformed
func TestParseSample_Malformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty", ``},
		{"array", `[1,2,3]`},
		{"null", `null`},
		{"string", `"ok"`},
		{"truncated", `{"totalNetInflow": 1`},
		{"missing timestamp", `{"totalNetInflow":1,"bigVolumeNetInflow":1,"buyMakerBigVolume":1,"buyTakerBigVolume":1,"mediumVolumeNetInflow":1,"smallVolumeNetInflow":1}`},
		{"null field", `{"totalNetInflow":null,"bigVolumeNetInflow":1,"buyMakerBigVolume":1,"buyTakerBigVolume":1,"mediumVolumeNetInflow":1,"smallVolumeNetInflow":1,"updateTimestamp":1}`},
		{"non numeric", `{"totalNetInflow":"abc","bigVolumeNetInflow":1,"buyMakerBigVolume":1,"buyTakerBigVolume":1,"mediumVolumeNetInflow":1,"smallVolumeNetInflow":1,"updateTimestamp":1}`},
		{"boolean", `{"totalNetInflow":true,"bigVolumeNetInflow":1,"buyMakerBigVolume":1,"buyTakerBigVolume":1,"mediumVolumeNetInflow":1,"smallVolumeNetInflow":1,"updateTimestamp":1}`},
		{"fractional timestamp", `{"totalNetInflow":1,"bigVolumeNetInflow":1,"buyMakerBigVolume":1,"buyTakerBigVolume":1,"mediumVolumeNetInflow":1,"smallVolumeNetInflow":1,"updateTimestamp":1.5}`},
		{"negative timestamp", `{"totalNetInflow":1,"bigVolumeNetInflow":1,"buyMakerBigVolume":1,"buyTakerBigVolume":1,"mediumVolumeNetInflow":1,"smallVolumeNetInflow":1,"updateTimestamp":-1}`},
		{"value beyond float64", `{"totalNetInflow":1e400,"bigVolumeNetInflow":1,"buyMakerBigVolume":1,"buyTakerBigVolume":1,"mediumVolumeNetInflow":1,"smallVolumeNetInflow":1,"updateTimestamp":1}`},
		{"negative value beyond float64", `{"totalNetInflow":1,"bigVolumeNetInflow":1,"buyMakerBigVolume":1,"buyTakerBigVolume":1,"mediumVolumeNetInflow":1,"smallVolumeNetInflow":"-1e400","updateTimestamp":1}`},
		{"timestamp beyond int64", `{"totalNetInflow":1,"bigVolumeNetInflow":1,"buyMakerBigVolume":1,"buyTakerBigVolume":1,"mediumVolumeNetInflow":1,"smallVolumeNetInflow":1,"updateTimestamp":1e25}`},
		{"timestamp past year 9999", `{"totalNetInflow":1,"bigVolumeNetInflow":1,"buyMakerBigVolume":1,"buyTakerBigVolume":1,"mediumVolumeNetInflow":1,"smallVolumeNetInflow":1,"updateTimestamp":253402300800000}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := ParseSample([]byte(tt.body))
			assert.ErrorIs(t, err, model.ErrMalformedPayload)
			assert.Equal(t, model.Sample{}, s, "no partial sample on failure")
		})
	}
}

func TestParseSample_MissingFieldNamed(t *testing.T) {
	_, err := ParseSample([]byte(`{"totalNetInflow":1,"bigVolumeNetInflow":1,"buyMakerBigVolume":1,"buyTakerBigVolume":1,"mediumVolumeNetInflow":1,"smallVolumeNetInflow":1}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "updateTimestamp")
}

func TestParseSample_LargestTimestamp(t *testing.T) {
	s, err := ParseSample([]byte(`{"totalNetInflow":1,"bigVolumeNetInflow":1,"buyMakerBigVolume":1,"buyTakerBigVolume":1,"mediumVolumeNetInflow":1,"smallVolumeNetInflow":1,"updateTimestamp":253402300799999}`))
	require.NoError(t, err)
	assert.Equal(t, 9999, s.UpdateTimestamp.UTC().Year())
}
