// Package status provides the terminal status payload carried by a
// cancellation sweep.
//
// A Status records why a manager was cancelled. It is a small value type:
// the zero value means OK (cancelled without a reason), and a non-OK status
// carries a code and a human-readable message.
//
// # Usage
//
//	m := cancellation.New()
//	m.StartCancelWithStatus(status.New(status.CodeAborted, "operator abort"))
//
//	if st := m.Status(); !st.IsOK() {
//	    log.Printf("cancelled: %v", st)
//	}
//
// FromError converts errors into a Status, recognizing the standard context
// errors:
//
//	status.FromError(context.DeadlineExceeded) // CodeDeadlineExceeded
//	status.FromError(context.Canceled)         // CodeCancelled
package status
