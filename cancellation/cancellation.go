package cancellation

import (
	"errors"

	"github.com/vinayprograms/cancelkit/logging"
	"github.com/vinayprograms/cancelkit/telemetry"
)

// Common errors.
var (
	// ErrInvalidConfig indicates invalid configuration.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Token is an opaque handle required to register or deregister a callback.
// Tokens are unique per manager and valid for registration exactly once.
type Token uint64

// Callback is a unit of work executed at most once when cancellation is
// requested. A returned error is caught at the sweep boundary and logged;
// it never aborts the sweep.
type Callback func() error

// options collects construction-time settings for a Manager.
type options struct {
	shards  int
	logger  *logging.Logger
	metrics telemetry.Metrics
}

func defaultOptions() options {
	return options{
		shards:  DefaultTokenShards,
		logger:  logging.New(),
		metrics: telemetry.NewNoopMetrics(),
	}
}

// Option configures a Manager. Later options win.
type Option func(*options)

// WithTokenShards sets the number of sharded token counters.
// Values <= 0 fall back to DefaultTokenShards.
func WithTokenShards(n int) Option {
	return func(o *options) {
		o.shards = n
	}
}

// WithLogger sets the logger used to report callback failures.
func WithLogger(l *logging.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics sets the metrics hook for sweep and callback events.
func WithMetrics(m telemetry.Metrics) Option {
	return func(o *options) {
		if m != nil {
			o.metrics = m
		}
	}
}

// WithConfig applies a (typically TOML-loaded) Config: token shard count and
// a fresh logger at the configured level.
func WithConfig(cfg Config) Option {
	return func(o *options) {
		if cfg.TokenShards > 0 {
			o.shards = cfg.TokenShards
		}
		l := logging.New()
		l.SetLevel(logging.ParseLevel(cfg.LogLevel))
		o.logger = l
	}
}
