// Package notify provides a one-shot notification primitive.
//
// A Notification starts unset and transitions to notified exactly once.
// Any number of goroutines may wait on it, poll it, or select on its Done
// channel; Notify is idempotent and safe to call concurrently.
//
// # Usage
//
//	n := notify.New()
//
//	go func() {
//	    doWork()
//	    n.Notify()
//	}()
//
//	select {
//	case <-n.Done():
//	    // work finished
//	case <-time.After(timeout):
//	    // gave up
//	}
//
// The cancellation manager uses a Notification for its Done channel, and the
// concurrency tests use it to sequence goroutines deterministically.
package notify
