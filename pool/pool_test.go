package pool

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestScheduleRunsAllJobs(t *testing.T) {
	p := New(4)

	var ran atomic.Int64
	for i := 0; i < 100; i++ {
		if err := p.Schedule(func() { ran.Add(1) }); err != nil {
			t.Fatalf("Schedule failed: %v", err)
		}
	}

	p.Stop()

	if got := ran.Load(); got != 100 {
		t.Fatalf("expected 100 jobs to run, got %d", got)
	}
}

func TestJobsRunConcurrently(t *testing.T) {
	p := New(2)
	defer p.Stop()

	var wg sync.WaitGroup
	wg.Add(2)

	// Two jobs that each wait for the other to start can only both finish
	// if they run on different workers.
	for i := 0; i < 2; i++ {
		if err := p.Schedule(func() {
			wg.Done()
			wg.Wait()
		}); err != nil {
			t.Fatalf("Schedule failed: %v", err)
		}
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("jobs did not run concurrently")
	}
}

func TestScheduleAfterStop(t *testing.T) {
	p := New(1)
	p.Stop()

	if err := p.Schedule(func() {}); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestStopIsIdempotent(t *testing.T) {
	p := New(1)
	p.Stop()
	p.Stop()
}

func TestZeroWorkersFallsBackToOne(t *testing.T) {
	p := New(0)
	defer p.Stop()

	if p.Workers() != 1 {
		t.Fatalf("expected 1 worker, got %d", p.Workers())
	}

	done := make(chan struct{})
	if err := p.Schedule(func() { close(done) }); err != nil {
		t.Fatalf("Schedule failed: %v", err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job never ran")
	}
}
