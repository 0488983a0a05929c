package pool

import (
	"errors"
	"sync"
)

// Common errors.
var (
	// ErrClosed indicates the pool has been stopped.
	ErrClosed = errors.New("pool closed")
)

// queueDepth is the buffered backlog per pool.
const queueDepth = 64

// Pool runs scheduled functions on a fixed number of worker goroutines.
type Pool struct {
	workers int

	mu     sync.Mutex
	jobs   chan func()
	closed bool

	wg sync.WaitGroup
}

// New creates a pool with the given number of workers. Values <= 0 are
// treated as 1.
func New(workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}

	p := &Pool{
		workers: workers,
		jobs:    make(chan func(), queueDepth),
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for job := range p.jobs {
		job()
	}
}

// Schedule queues f to run on a worker. It blocks while the backlog is full
// and returns ErrClosed after Stop.
func (p *Pool) Schedule(f func()) error {
	if f == nil {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	p.jobs <- f
	return nil
}

// Workers returns the pool size.
func (p *Pool) Workers() int {
	return p.workers
}

// Stop closes the queue, waits for all scheduled work to finish, and
// releases the workers. It is idempotent.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()

	p.wg.Wait()
}
