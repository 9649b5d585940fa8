package model

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport covers network and status-level failures talking to the source.
	ErrTransport = errors.New("transport failure")
	// ErrMalformedPayload means a response arrived but failed shape validation.
	ErrMalformedPayload = errors.New("malformed payload")
	// ErrConfiguration is raised at construction and prevents the engine from starting.
	ErrConfiguration = errors.New("configuration error")
)

// FetchError reports a failed fetch for one instrument in one cycle.
// It matches its Kind through errors.Is and unwraps to the underlying cause.
type FetchError struct {
	InstrumentID string
	Cycle        uint64
	Kind         error // ErrTransport or ErrMalformedPayload
	Err          error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s (cycle %d): %v", e.InstrumentID, e.Cycle, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func (e *FetchError) Is(target error) bool {
	return target == e.Kind
}

// NewFetchError classifies err. Errors that are neither transport nor payload
// failures are reported as transport failures.
func NewFetchError(instrumentID string, cycle uint64, err error) *FetchError {
	kind := ErrTransport
	if errors.Is(err, ErrMalformedPayload) {
		kind = ErrMalformedPayload
	}
	return &FetchError{
		InstrumentID: instrumentID,
		Cycle:        cycle,
		Kind:         kind,
		Err:          err,
	}
}
