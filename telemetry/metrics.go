package telemetry

import "time"

// Metrics receives cancellation lifecycle events. Implementations must be
// safe for concurrent use; calls happen inline on the cancelling and
// registering goroutines.
type Metrics interface {
	// CancelStarted is called when a sweep begins.
	CancelStarted()

	// CancelCompleted is called when a sweep finishes, with its duration.
	CancelCompleted(elapsed time.Duration)

	// CallbackFired is called after each callback runs, whether or not it
	// returned an error.
	CallbackFired()

	// CallbackFailed is called when a callback returns an error or panics.
	// Name is the callback's diagnostic name and may be empty.
	CallbackFailed(name string)

	// RegistrationRejected is called when a registration fails because
	// cancellation already started or the token was already consumed.
	RegistrationRejected()
}

// NoopMetrics discards all events.
type NoopMetrics struct{}

// NewNoopMetrics creates a Metrics implementation that does nothing.
func NewNoopMetrics() *NoopMetrics {
	return &NoopMetrics{}
}

func (*NoopMetrics) CancelStarted()                {}
func (*NoopMetrics) CancelCompleted(time.Duration) {}
func (*NoopMetrics) CallbackFired()                {}
func (*NoopMetrics) CallbackFailed(string)         {}
func (*NoopMetrics) RegistrationRejected()         {}

var _ Metrics = (*NoopMetrics)(nil)
