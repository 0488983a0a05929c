// Package watchdog provides liveness-driven cancellation.
//
// A Watchdog watches over a cancellation manager: as long as Feed is called
// within the configured timeout, nothing happens. If the watchdog starves,
// it cancels the target with a DeadlineExceeded status. This turns "the
// worker stopped making progress" into a normal cancellation sweep that
// tears down everything registered with the manager.
//
// # Usage
//
//	m := cancellation.New()
//
//	wd, err := watchdog.New(m, watchdog.Config{Timeout: 30 * time.Second})
//	if err != nil {
//	    return err
//	}
//	if err := wd.Start(ctx); err != nil {
//	    return err
//	}
//	defer wd.Stop()
//
//	for work := range queue {
//	    process(work)
//	    wd.Feed()
//	}
//
// The watchdog stops itself once the target is cancelled, whoever triggered
// the cancellation.
package watchdog
