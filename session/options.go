package session

import (
	"log/slog"
	"time"
)

const (
	// DefaultExpiry is how long an idle session is remembered.
	DefaultExpiry = 7200 * time.Second

	// DefaultHistoryLimit is the number of turns remembered per session.
	DefaultHistoryLimit = 5
)

type options struct {
	expiry       time.Duration
	historyLimit int
	logger       *slog.Logger
}

// Option configures a Store.
type Option func(*options)

// WithExpiry sets the idle time after which a session is evicted.
func WithExpiry(expiry time.Duration) Option {
	return func(o *options) {
		if expiry > 0 {
			o.expiry = expiry
		}
	}
}

// WithHistoryLimit sets the number of turns remembered per session.
func WithHistoryLimit(limit int) Option {
	return func(o *options) {
		if limit > 0 {
			o.historyLimit = limit
		}
	}
}

// WithLogger sets the store's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func defaultOptions() *options {
	return &options{
		expiry:       DefaultExpiry,
		historyLimit: DefaultHistoryLimit,
		logger:       slog.Default().With("component", "session-store"),
	}
}
