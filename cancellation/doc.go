// Package cancellation provides hierarchical, thread-safe cancellation
// coordination.
//
// # Overview
//
// A Manager hands out tokens, associates each token with at most one
// callback, and guarantees that when cancellation is requested every
// registered callback fires exactly once. Managers form trees: cancelling a
// parent transitively cancels every descendant, while children may be
// created and closed at any time without affecting the parent.
//
//	┌────────────────────────────────────────────────────┐
//	│                    Manager (parent)                │
//	│  token → callback registry        child table      │
//	│  ┌────────┐ ┌────────┐            ┌───────┐        │
//	│  │ cb #1  │ │ cb #2  │  ...       │ child │──┐     │
//	│  └────────┘ └────────┘            └───────┘  │     │
//	└───────────────────────────────────────────────│────┘
//	                 StartCancel ─────────────────▶ │ recursive
//	                                                ▼
//	                                        Manager (child)
//
// # Usage
//
//	m := cancellation.New()
//
//	token := m.NextToken()
//	if m.RegisterCallback(token, func() error {
//	    conn.Close()
//	    return nil
//	}) {
//	    defer m.DeregisterCallback(token)
//	}
//
//	// From any goroutine:
//	m.StartCancel()
//
// # Lifecycle
//
// A manager moves irreversibly through three states: active, cancelling and
// cancelled. IsCancelRequested reports true from the instant a sweep begins;
// IsCancelled reports true only once every callback and child has been
// drained. The window between the two is observable and intentional:
// "stop starting new work" and "safe to reclaim resources" are different
// moments.
//
// Registration succeeds only while the manager is active and the token has
// never been used. Deregistration succeeds only while the entry is still
// pending; once a sweep has begun, DeregisterCallback blocks until the
// entry's callback has finished and then reports false, while
// TryDeregisterCallback reports false immediately without blocking.
//
// # Parent/child trees
//
//	parent := cancellation.New()
//	child := cancellation.NewChild(parent)
//	defer child.Close() // detaches from parent, cancels whatever remains
//
// A child bound to a parent whose cancellation has already started observes
// that synchronously and is cancelled before NewChild returns. Closing a
// child never cancels, or otherwise affects, its parent.
//
// # Failure handling
//
// Callback errors and panics are caught at the sweep boundary, reported
// through the configured logger (with the callback's diagnostic name when it
// was registered via RegisterCallbackWithErrorLogging), and never interrupt
// the rest of the sweep.
package cancellation
