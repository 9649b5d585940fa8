package model

import (
	"errors"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestNewFetchError_Classification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind error
	}{
		{"malformed", pkgerrors.Wrap(ErrMalformedPayload, "missing updateTimestamp"), ErrMalformedPayload},
		{"transport", pkgerrors.Wrap(ErrTransport, "connection refused"), ErrTransport},
		{"unclassified", errors.New("boom"), ErrTransport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fe := NewFetchError("BTCUSDT", 2, tt.err)

			assert.ErrorIs(t, fe, tt.kind)
			assert.ErrorIs(t, fe, tt.err)
			assert.Equal(t, tt.kind, fe.Kind)
			assert.Contains(t, fe.Error(), "BTCUSDT")
		})
	}
}

func TestFetchError_DoesNotMatchOtherKind(t *testing.T) {
	fe := NewFetchError("ETHUSDT", 1, pkgerrors.Wrap(ErrMalformedPayload, "bad"))
	assert.False(t, errors.Is(fe, ErrTransport))
	assert.False(t, errors.Is(fe, ErrConfiguration))
}
