// Package pool provides a fixed-size worker pool.
//
// The cancellation tests use it to run many concurrent callers against one
// manager, the way production code runs concurrent work that registers
// cancellation callbacks.
//
// # Usage
//
//	p := pool.New(4)
//	defer p.Stop()
//
//	for _, job := range jobs {
//	    job := job
//	    if err := p.Schedule(func() { job.Run() }); err != nil {
//	        break // pool stopped
//	    }
//	}
//
// Stop closes the queue and waits for already-scheduled work to drain.
package pool
