package watchdog

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/vinayprograms/cancelkit/cancellation"
	"github.com/vinayprograms/cancelkit/status"
)

// Common errors.
var (
	// ErrAlreadyStarted indicates the watchdog is already running.
	ErrAlreadyStarted = errors.New("watchdog already started")

	// ErrNotStarted indicates the watchdog is not running.
	ErrNotStarted = errors.New("watchdog not started")

	// ErrInvalidConfig indicates invalid configuration.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Config configures a Watchdog.
type Config struct {
	// Timeout is how long the watchdog may starve before it cancels the
	// target. Default: 15 seconds.
	Timeout time.Duration

	// CheckInterval is how often starvation is checked.
	// Default: Timeout / 10, at least 10ms.
	CheckInterval time.Duration
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Timeout < 0 || c.CheckInterval < 0 {
		return ErrInvalidConfig
	}
	return nil
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Timeout: 15 * time.Second,
	}
}

// Watchdog cancels a manager when it stops being fed.
type Watchdog struct {
	target        *cancellation.Manager
	timeout       time.Duration
	checkInterval time.Duration

	lastFed atomic.Int64 // unix nanos
	running atomic.Bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// New creates a watchdog over target.
func New(target *cancellation.Manager, cfg Config) (*Watchdog, error) {
	if target == nil {
		return nil, ErrInvalidConfig
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultConfig().Timeout
	}

	checkInterval := cfg.CheckInterval
	if checkInterval == 0 {
		checkInterval = timeout / 10
		if checkInterval < 10*time.Millisecond {
			checkInterval = 10 * time.Millisecond
		}
	}

	return &Watchdog{
		target:        target,
		timeout:       timeout,
		checkInterval: checkInterval,
	}, nil
}

// Start begins watching. Returns ErrAlreadyStarted if already running.
// The watchdog counts as fed at the moment Start is called.
func (w *Watchdog) Start(ctx context.Context) error {
	if w.running.Swap(true) {
		return ErrAlreadyStarted
	}

	if ctx == nil {
		ctx = context.Background()
	}

	w.lastFed.Store(time.Now().UnixNano())
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})

	go w.run(ctx)
	return nil
}

// Feed resets the starvation clock. Safe to call from any goroutine,
// started or not.
func (w *Watchdog) Feed() {
	w.lastFed.Store(time.Now().UnixNano())
}

// run checks for starvation until stopped, the context ends, or the target
// is cancelled by anyone.
func (w *Watchdog) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ctx.Done():
			return
		case <-w.target.Done():
			return
		case <-ticker.C:
			starved := time.Since(time.Unix(0, w.lastFed.Load()))
			if starved > w.timeout {
				w.target.StartCancelWithStatus(status.Newf(
					status.CodeDeadlineExceeded,
					"watchdog starved for %v", starved.Round(time.Millisecond)))
				return
			}
		}
	}
}

// Stop stops watching without cancelling the target.
// Returns ErrNotStarted if not running.
func (w *Watchdog) Stop() error {
	if !w.running.Swap(false) {
		return ErrNotStarted
	}

	close(w.stopCh)
	<-w.doneCh
	return nil
}
