package notify

import (
	"context"
	"sync"
	"time"
)

// Notification is a one-shot event. The zero value is not usable; create
// instances with New.
type Notification struct {
	once sync.Once
	ch   chan struct{}
}

// New creates an unset notification.
func New() *Notification {
	return &Notification{ch: make(chan struct{})}
}

// Notify fires the notification. Subsequent calls are no-ops.
func (n *Notification) Notify() {
	n.once.Do(func() {
		close(n.ch)
	})
}

// HasBeenNotified reports whether Notify has been called.
func (n *Notification) HasBeenNotified() bool {
	select {
	case <-n.ch:
		return true
	default:
		return false
	}
}

// Done returns a channel that is closed once Notify has been called.
func (n *Notification) Done() <-chan struct{} {
	return n.ch
}

// Wait blocks until the notification fires.
func (n *Notification) Wait() {
	<-n.ch
}

// WaitTimeout blocks until the notification fires or the timeout elapses.
// It returns true if the notification fired.
func (n *Notification) WaitTimeout(d time.Duration) bool {
	select {
	case <-n.ch:
		return true
	case <-time.After(d):
		return false
	}
}

// WaitContext blocks until the notification fires or ctx is done.
func (n *Notification) WaitContext(ctx context.Context) error {
	select {
	case <-n.ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
