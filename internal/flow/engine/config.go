package engine

import (
	"time"

	"flowwatch/internal/model"

	"github.com/pkg/errors"
)

const (
	DefaultPollInterval    = 3 * time.Second
	DefaultHistoryCapacity = 20
)

// Config holds engine configuration.
type Config struct {
	PollInterval    time.Duration // Fixed-rate poll period (default: 3s)
	HistoryCapacity int           // Sliding window size per instrument (default: 20)
	Instruments     []string      // Tracked instruments, fixed for the engine's lifetime
}

// DefaultConfig returns defaults for the given instruments.
func DefaultConfig(instruments ...string) Config {
	return Config{
		PollInterval:    DefaultPollInterval,
		HistoryCapacity: DefaultHistoryCapacity,
		Instruments:     instruments,
	}
}

// Validate reports invalid settings as model.ErrConfiguration.
func (c Config) Validate() error {
	if c.PollInterval <= 0 {
		return errors.Wrapf(model.ErrConfiguration, "poll interval must be > 0, got %s", c.PollInterval)
	}
	if c.HistoryCapacity < 1 {
		return errors.Wrapf(model.ErrConfiguration, "history capacity must be >= 1, got %d", c.HistoryCapacity)
	}
	if len(c.Instruments) == 0 {
		return errors.Wrap(model.ErrConfiguration, "at least one instrument must be tracked")
	}
	return nil
}
