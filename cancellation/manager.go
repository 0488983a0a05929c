package cancellation

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/vinayprograms/cancelkit/logging"
	"github.com/vinayprograms/cancelkit/notify"
	"github.com/vinayprograms/cancelkit/status"
	"github.com/vinayprograms/cancelkit/telemetry"
)

type managerState int32

const (
	stateActive managerState = iota
	stateCancelling
	stateCancelled
)

type entryState int32

const (
	entryPending entryState = iota
	entryFiring
	entryDone
)

// entry is one registered callback. Its state is guarded by the manager
// mutex; entries stay in the registry as tombstones after they fire or are
// deregistered so their token can never be reused.
type entry struct {
	fn        Callback
	name      string
	logErrors bool
	state     entryState
}

// Manager coordinates cancellation for a set of callbacks and child managers.
//
// It is safe for concurrent use.
type Manager struct {
	logger  *logging.Logger
	metrics telemetry.Metrics
	tokens  *tokenSource

	cancelRequested atomic.Bool
	done            *notify.Notification

	mu        sync.Mutex
	fired     *sync.Cond // broadcast whenever an entry reaches entryDone
	state     managerState
	st        status.Status
	callbacks map[Token]*entry
	children  map[uuid.UUID]*Manager
	closed    bool

	// Immutable after construction.
	parent  *Manager
	childID uuid.UUID
}

// New creates a root manager.
func New(opts ...Option) *Manager {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	m := &Manager{
		logger:    o.logger.WithComponent("cancellation"),
		metrics:   o.metrics,
		tokens:    newTokenSource(o.shards),
		done:      notify.New(),
		callbacks: make(map[Token]*entry),
	}
	m.fired = sync.NewCond(&m.mu)
	return m
}

// NewChild creates a manager that is cancelled whenever parent is cancelled.
// The child does not own the parent and the parent does not own the child;
// close the child with Close when its work is done.
//
// If the parent's cancellation has already started, the child is cancelled
// with the parent's status before NewChild returns.
func NewChild(parent *Manager, opts ...Option) *Manager {
	m := New(opts...)
	if parent == nil {
		return m
	}
	m.parent = parent
	m.childID = uuid.New()
	if !parent.addChild(m.childID, m) {
		m.startCancel(parent.Status())
	}
	return m
}

// addChild registers c under the given id. It fails when cancellation has
// already started, in which case the caller must self-cancel: the sweep
// snapshots the child table right after the state flip and would never see c.
func (m *Manager) addChild(id uuid.UUID, c *Manager) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != stateActive {
		return false
	}
	if m.children == nil {
		m.children = make(map[uuid.UUID]*Manager)
	}
	m.children[id] = c
	return true
}

func (m *Manager) removeChild(id uuid.UUID) {
	m.mu.Lock()
	delete(m.children, id)
	m.mu.Unlock()
}

// NextToken returns a fresh token that no other call has returned for this
// manager. It never fails.
func (m *Manager) NextToken() Token {
	return m.tokens.next()
}

// RegisterCallback associates cb with token. It returns false if cancellation
// has already started or the token was already used; in that case cb will
// never run and the caller must do its own cleanup.
//
// A nil cb is accepted while the manager is active and fires as a no-op.
func (m *Manager) RegisterCallback(token Token, cb Callback) bool {
	return m.register(token, cb, "", false)
}

// RegisterCallbackWithErrorLogging is RegisterCallback plus a diagnostic
// name: if cb returns an error during the sweep, the error is logged with
// that name.
func (m *Manager) RegisterCallbackWithErrorLogging(token Token, cb Callback, name string) bool {
	return m.register(token, cb, name, true)
}

func (m *Manager) register(token Token, cb Callback, name string, logErrors bool) bool {
	m.mu.Lock()
	// State is checked before anything else: "cancellation already started"
	// wins over argument problems such as a nil callback.
	if m.state != stateActive {
		m.mu.Unlock()
		m.metrics.RegistrationRejected()
		return false
	}
	if _, used := m.callbacks[token]; used {
		m.mu.Unlock()
		m.metrics.RegistrationRejected()
		return false
	}
	m.callbacks[token] = &entry{fn: cb, name: name, logErrors: logErrors}
	m.mu.Unlock()
	return true
}

// DeregisterCallback removes the callback registered under token so it will
// never run. It returns false if the token is unknown, already consumed, or
// cancellation has started; in the latter case it blocks until the token's
// callback has finished firing before returning.
//
// Do not call it while holding a lock that the callback itself needs, or the
// two will deadlock.
func (m *Manager) DeregisterCallback(token Token) bool {
	return m.deregister(token, true)
}

// TryDeregisterCallback is DeregisterCallback without the blocking: if the
// token's callback is firing, or the sweep owns it, it returns false
// immediately.
func (m *Manager) TryDeregisterCallback(token Token) bool {
	return m.deregister(token, false)
}

func (m *Manager) deregister(token Token, wait bool) bool {
	m.mu.Lock()
	e, ok := m.callbacks[token]
	if !ok {
		m.mu.Unlock()
		return false
	}
	if m.state == stateActive {
		if e.state != entryPending {
			// Already deregistered earlier.
			m.mu.Unlock()
			return false
		}
		e.state = entryDone
		e.fn = nil
		m.mu.Unlock()
		return true
	}
	// The sweep owns every pending entry from the moment cancellation is
	// requested.
	if wait {
		for e.state != entryDone {
			m.fired.Wait()
		}
	}
	m.mu.Unlock()
	return false
}

// StartCancel requests cancellation with no status payload. See
// StartCancelWithStatus.
func (m *Manager) StartCancel() {
	m.startCancel(status.OK())
}

// StartCancelWithStatus requests cancellation. The first call runs the
// sweep: it fires every registered callback exactly once, recursively
// cancels every child with the same status, and only then marks the manager
// cancelled. Later calls, from any goroutine, return immediately.
//
// Callbacks run synchronously on the calling goroutine; a blocking callback
// blocks the sweep.
func (m *Manager) StartCancelWithStatus(st status.Status) {
	m.startCancel(st)
}

func (m *Manager) startCancel(st status.Status) {
	m.mu.Lock()
	if m.state != stateActive {
		m.mu.Unlock()
		return
	}
	m.state = stateCancelling
	m.st = st // only the winning transition records a status
	m.cancelRequested.Store(true)

	toFire := make([]*entry, 0, len(m.callbacks))
	for _, e := range m.callbacks {
		if e.state == entryPending {
			toFire = append(toFire, e)
		}
	}
	children := make([]*Manager, 0, len(m.children))
	for _, c := range m.children {
		children = append(children, c)
	}
	m.mu.Unlock()

	start := time.Now()
	m.metrics.CancelStarted()

	for _, e := range toFire {
		m.mu.Lock()
		if e.state != entryPending {
			m.mu.Unlock()
			continue
		}
		e.state = entryFiring
		m.mu.Unlock()

		m.invoke(e)

		m.mu.Lock()
		e.state = entryDone
		e.fn = nil
		m.fired.Broadcast()
		m.mu.Unlock()
		m.metrics.CallbackFired()
	}

	// Children that raced with the state flip self-cancelled in NewChild,
	// so this snapshot covers every registered child.
	for _, c := range children {
		c.startCancel(st)
	}

	m.mu.Lock()
	m.state = stateCancelled
	m.mu.Unlock()
	m.done.Notify()
	m.metrics.CancelCompleted(time.Since(start))
}

// invoke runs one callback, absorbing errors and panics at the sweep
// boundary.
func (m *Manager) invoke(e *entry) {
	defer func() {
		if r := recover(); r != nil {
			m.metrics.CallbackFailed(e.name)
			m.logger.Error("cancellation callback panicked", map[string]interface{}{
				"callback": e.name,
				"panic":    fmt.Sprintf("%v", r),
			})
		}
	}()

	if e.fn == nil {
		return
	}
	if err := e.fn(); err != nil {
		m.metrics.CallbackFailed(e.name)
		if e.logErrors {
			m.logger.Error("cancellation callback failed", map[string]interface{}{
				"callback": e.name,
				"error":    err.Error(),
			})
		}
	}
}

// IsCancelRequested reports whether cancellation has started. It is true
// from the instant the sweep begins and forever after.
func (m *Manager) IsCancelRequested() bool {
	return m.cancelRequested.Load()
}

// IsCancelled reports whether the sweep has fully completed: every callback
// fired and every child cancelled.
func (m *Manager) IsCancelled() bool {
	return m.done.HasBeenNotified()
}

// Status returns the payload captured by the first cancel request. It is the
// zero (OK) status until cancellation is requested.
func (m *Manager) Status() status.Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st
}

// Done returns a channel that is closed once the manager is fully cancelled.
func (m *Manager) Done() <-chan struct{} {
	return m.done.Done()
}

// Close releases the manager: it detaches from its parent, then cancels so
// that still-pending callbacks are not leaked. Close is idempotent and safe
// to call concurrently with a cancellation running on another goroutine.
//
// Close must not be called from inside one of this manager's own callbacks.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.mu.Unlock()

	if m.parent != nil {
		m.parent.removeChild(m.childID)
	}
	m.StartCancel()
	return nil
}

// LinkContext cancels the manager when ctx is done, with a status derived
// from ctx.Err(). The returned unlink func releases the watcher goroutine
// without cancelling; calling it more than once is fine.
func (m *Manager) LinkContext(ctx context.Context) (unlink func()) {
	stop := notify.New()
	go func() {
		select {
		case <-ctx.Done():
			// An unlink that happened before the context fired wins, even
			// when both channels became ready together.
			if stop.HasBeenNotified() {
				return
			}
			m.StartCancelWithStatus(status.FromError(ctx.Err()))
		case <-m.Done():
		case <-stop.Done():
		}
	}()
	return stop.Notify
}
