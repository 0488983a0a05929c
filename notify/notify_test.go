package notify

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestNotifyOnce(t *testing.T) {
	n := New()

	if n.HasBeenNotified() {
		t.Fatal("new notification should not be notified")
	}

	n.Notify()
	if !n.HasBeenNotified() {
		t.Fatal("expected notified after Notify")
	}

	// Second Notify must not panic (the channel is closed exactly once).
	n.Notify()
}

func TestWaitReleasesAllWaiters(t *testing.T) {
	n := New()

	const waiters = 8
	var wg sync.WaitGroup
	wg.Add(waiters)
	for i := 0; i < waiters; i++ {
		go func() {
			defer wg.Done()
			n.Wait()
		}()
	}

	n.Notify()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("waiters did not release")
	}
}

func TestWaitTimeout(t *testing.T) {
	n := New()

	if n.WaitTimeout(10 * time.Millisecond) {
		t.Fatal("expected timeout on unset notification")
	}

	n.Notify()
	if !n.WaitTimeout(time.Second) {
		t.Fatal("expected immediate success after Notify")
	}
}

func TestWaitContext(t *testing.T) {
	n := New()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := n.WaitContext(ctx); err == nil {
		t.Fatal("expected context error on unset notification")
	}

	n.Notify()
	if err := n.WaitContext(context.Background()); err != nil {
		t.Fatalf("expected nil error after Notify, got %v", err)
	}
}

func TestConcurrentNotify(t *testing.T) {
	n := New()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n.Notify()
		}()
	}
	wg.Wait()

	if !n.HasBeenNotified() {
		t.Fatal("expected notified")
	}
}
