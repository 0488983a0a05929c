package cancellation

import (
	"math/rand"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vinayprograms/cancelkit/notify"
	"github.com/vinayprograms/cancelkit/pool"
)

// These are property-ish tests: they exercise concurrency paths without
// brittle timing assumptions and must finish quickly or fail.

func TestStress_IsCancelledPolling(t *testing.T) {
	m := New()

	w := pool.New(4)
	defer w.Stop()

	const pollers = 8
	done := make([]*notify.Notification, pollers)
	for i := range done {
		n := notify.New()
		done[i] = n
		if err := w.Schedule(func() {
			for !m.IsCancelled() {
				runtime.Gosched()
			}
			if !m.IsCancelRequested() {
				t.Error("IsCancelled implies IsCancelRequested")
			}
			n.Notify()
		}); err != nil {
			t.Fatalf("Schedule failed: %v", err)
		}
	}

	// Let the pollers observe the uncancelled state for a while.
	time.Sleep(50 * time.Millisecond)
	m.StartCancel()

	for i, n := range done {
		if !n.WaitTimeout(2 * time.Second) {
			t.Fatalf("poller %d never observed cancellation", i)
		}
	}
}

func TestStress_ConcurrentStartCancel(t *testing.T) {
	m := New()

	const callbacks = 32
	var fired atomic.Int64
	for i := 0; i < callbacks; i++ {
		token := m.NextToken()
		if !m.RegisterCallback(token, func() error {
			fired.Add(1)
			return nil
		}) {
			t.Fatalf("registration %d failed", i)
		}
	}

	const cancellers = 8
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < cancellers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			m.StartCancel()
		}()
	}
	close(start)
	wg.Wait()

	// Exactly one sweep: every callback fired exactly once.
	if got := fired.Load(); got != callbacks {
		t.Fatalf("expected %d callbacks fired, got %d", callbacks, got)
	}
	if !m.IsCancelled() {
		t.Fatal("expected manager to be cancelled")
	}
}

func TestStress_ConcurrentRegisterAndCancel(t *testing.T) {
	m := New()

	var fired, accepted atomic.Int64
	var wg sync.WaitGroup
	start := make(chan struct{})

	const registrars = 8
	for i := 0; i < registrars; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			for j := 0; j < 100; j++ {
				token := m.NextToken()
				if m.RegisterCallback(token, func() error {
					fired.Add(1)
					return nil
				}) {
					accepted.Add(1)
				}
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		<-start
		m.StartCancel()
	}()

	close(start)
	wg.Wait()

	// No lost callbacks, no duplicates: every accepted registration fired.
	if fired.Load() != accepted.Load() {
		t.Fatalf("accepted %d registrations but fired %d callbacks",
			accepted.Load(), fired.Load())
	}
	if !m.IsCancelled() {
		t.Fatal("expected manager to be cancelled")
	}
}

func TestStress_RandomDestructionOrder(t *testing.T) {
	parent := New()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	// Multiple randomized rounds of binding and closing children cover the
	// child-table join/leave codepaths.
	for round := 0; round < 100; round++ {
		roundSize := 1 + rng.Intn(9)

		children := make([]*Manager, 0, roundSize)
		for i := 0; i < roundSize; i++ {
			child := NewChild(parent)
			if child.IsCancelled() {
				t.Fatal("fresh child must not be cancelled")
			}
			children = append(children, child)
		}

		for _, index := range rng.Perm(roundSize) {
			children[index].Close()
		}
	}

	if parent.IsCancelRequested() {
		t.Fatal("closing children must not cancel the parent")
	}
}

func TestStress_ChildChurnDuringParentCancel(t *testing.T) {
	parent := New()

	var wg sync.WaitGroup
	start := make(chan struct{})
	stop := notify.New()

	// Churners bind and close children as fast as they can while the parent
	// is cancelled mid-flight from another goroutine.
	const churners = 4
	for i := 0; i < churners; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			for !stop.HasBeenNotified() {
				child := NewChild(parent)
				child.Close()
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		<-start
		time.Sleep(20 * time.Millisecond)
		parent.StartCancel()
	}()

	close(start)

	// Give the churn time to overlap the sweep, then wind down.
	time.Sleep(60 * time.Millisecond)
	stop.Notify()

	finished := make(chan struct{})
	go func() {
		wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(5 * time.Second):
		t.Fatal("child churn deadlocked against the parent sweep")
	}

	if !parent.IsCancelled() {
		t.Fatal("expected parent to be cancelled")
	}
}

func TestStress_EveryChildObservesParentCancel(t *testing.T) {
	parent := New()

	// Children bound while cancellation is racing must either be swept or
	// self-cancel synchronously in NewChild; none may stay active.
	var children [64]*Manager
	var wg sync.WaitGroup
	start := make(chan struct{})

	for i := range children {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			children[i] = NewChild(parent)
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		<-start
		parent.StartCancel()
	}()

	close(start)
	wg.Wait()

	for i, child := range children {
		if !child.IsCancelled() {
			t.Fatalf("child %d escaped the parent's cancellation", i)
		}
	}
}
