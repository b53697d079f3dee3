package taskpool

import (
	"context"
	"runtime/debug"
	"sync"

	"github.com/Swind/go-task-pool/core"
)

// TaskState is the lifecycle state of a Task. States only move forward.
type TaskState int32

const (
	TaskPending TaskState = iota
	TaskRunning
	TaskCompleted
	TaskFaulted
)

func (s TaskState) String() string {
	switch s {
	case TaskPending:
		return "pending"
	case TaskRunning:
		return "running"
	case TaskCompleted:
		return "completed"
	case TaskFaulted:
		return "faulted"
	default:
		return "unknown"
	}
}

// IsTerminal reports whether s is Completed or Faulted.
func (s TaskState) IsTerminal() bool {
	return s == TaskCompleted || s == TaskFaulted
}

// Task is a deferred computation with an eventual value or fault.
//
// A Task does nothing until it is submitted to a WorkerPool. Result blocks
// until the task settles; a task that is never submitted never settles.
//
// Continuations registered with ContinueWith are fired exactly once, in
// registration order, at the moment the task settles. Registering on a task
// that has already settled fires immediately.
type Task[T any] struct {
	id core.TaskID

	mu        sync.Mutex
	state     TaskState
	compute   func() (T, error)
	ready     bool // compute is set; false for continuations not yet fired
	submitted bool
	pool      *WorkerPool
	closed    bool

	value T
	fault error
	done  chan struct{}

	continuations []func(T, error)
}

func newTask[T any]() *Task[T] {
	return &Task[T]{
		id:   core.GenerateTaskID(),
		done: make(chan struct{}),
	}
}

// NewTask wraps fn in a pending task. fn runs at most once, on a pool worker.
// A returned error or a panic faults the task.
func NewTask[T any](fn func() (T, error)) *Task[T] {
	t := newTask[T]()
	t.compute = fn
	t.ready = true
	return t
}

// ID returns the task identifier used in logs.
func (t *Task[T]) ID() core.TaskID {
	return t.id
}

// State returns the current lifecycle state.
func (t *Task[T]) State() TaskState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Done returns a channel that is closed once the task settles.
func (t *Task[T]) Done() <-chan struct{} {
	return t.done
}

// Result blocks until the task settles and returns its value, or the zero
// value and the fault the computation produced.
func (t *Task[T]) Result() (T, error) {
	<-t.done
	return t.value, t.fault
}

// ResultContext is Result with a caller-side deadline. Giving up the wait
// does not stop the computation.
func (t *Task[T]) ResultContext(ctx context.Context) (T, error) {
	select {
	case <-t.done:
		return t.value, t.fault
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Close releases the task. A settled result stays readable. Closing a task
// that was never submitted settles it with core.ErrTaskClosed so that
// waiters and continuations are released. Every call after the first
// returns core.ErrTaskClosed, which wraps core.ErrInvalidState.
func (t *Task[T]) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return core.ErrTaskClosed
	}
	t.closed = true

	if t.state != TaskPending || t.submitted {
		t.mu.Unlock()
		return nil
	}

	t.compute = nil
	var zero T
	conts := t.settleLocked(zero, core.ErrTaskClosed)
	t.mu.Unlock()

	fireAll(conts, zero, core.ErrTaskClosed)
	return nil
}

func (t *Task[T]) submitTo(p *WorkerPool) error {
	if t == nil {
		return core.ErrNilJob
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	switch {
	case t.closed:
		return core.ErrTaskClosed
	case t.submitted:
		return core.ErrAlreadySubmitted
	case t.ready && t.compute == nil && t.state == TaskPending:
		return core.ErrNilJob
	}

	if t.state.IsTerminal() {
		// Settled before it could run, e.g. a continuation of a closed task.
		t.submitted = true
		return nil
	}

	if !t.ready {
		// Parked until the parent fires; the pool must still be open now.
		if p.queue.IsClosed() {
			return core.ErrPoolClosed
		}
		t.submitted = true
		t.pool = p
		return nil
	}

	if err := p.enqueue(t.item()); err != nil {
		return err
	}
	t.submitted = true
	t.pool = p
	return nil
}

func (t *Task[T]) item() core.WorkItem {
	return core.WorkItem{ID: t.id, Run: t.run}
}

// run is the execution unit handed to the pool.
func (t *Task[T]) run() error {
	t.mu.Lock()
	if t.state != TaskPending {
		t.mu.Unlock()
		return nil
	}
	t.state = TaskRunning
	compute := t.compute
	t.compute = nil
	t.mu.Unlock()

	value, err := invoke(compute)
	t.settle(value, err)
	return err
}

func invoke[T any](fn func() (T, error)) (value T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			value = zero
			err = &core.PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return fn()
}

func (t *Task[T]) settle(value T, err error) {
	t.mu.Lock()
	if t.state.IsTerminal() {
		t.mu.Unlock()
		return
	}
	conts := t.settleLocked(value, err)
	t.mu.Unlock()

	fireAll(conts, value, err)
}

// settleLocked moves the task to its terminal state and detaches the
// continuation list in the same critical section. The caller fires the
// returned continuations after unlocking.
func (t *Task[T]) settleLocked(value T, err error) []func(T, error) {
	if err != nil {
		t.state = TaskFaulted
		t.fault = err
	} else {
		t.state = TaskCompleted
		t.value = value
	}
	close(t.done)

	conts := t.continuations
	t.continuations = nil
	return conts
}

func fireAll[T any](conts []func(T, error), value T, err error) {
	for _, fire := range conts {
		fire(value, err)
	}
}

// release hands a continuation its computation. If the task was already
// submitted it is queued on its pool right away; otherwise it runs once
// submitted.
func (t *Task[T]) release(compute func() (T, error)) {
	t.mu.Lock()
	if t.state != TaskPending || t.ready {
		t.mu.Unlock()
		return
	}
	t.compute = compute
	t.ready = true

	if !t.submitted {
		t.mu.Unlock()
		return
	}

	err := t.pool.enqueueAccepted(t.item())
	if err == nil {
		t.mu.Unlock()
		return
	}

	t.compute = nil
	var zero T
	conts := t.settleLocked(zero, err)
	t.mu.Unlock()

	fireAll(conts, zero, err)
}

// ContinueWith returns a task that applies fn to parent's value.
//
// The returned task is not scheduled automatically: the caller submits it,
// before or after parent, and it runs once both have happened. If parent
// faults, the continuation faults with the same error and fn is not called.
// The continuation keeps only fn and the parent's outcome, never the parent.
// A closed parent accepts no continuations; the returned task is already
// faulted with core.ErrTaskClosed.
func ContinueWith[T, U any](parent *Task[T], fn func(T) (U, error)) *Task[U] {
	child := newTask[U]()
	var zero U

	if parent == nil || fn == nil {
		child.settle(zero, core.ErrInvalidArgument)
		return child
	}

	fire := func(value T, err error) {
		child.release(func() (U, error) {
			if err != nil {
				return zero, err
			}
			return fn(value)
		})
	}

	parent.mu.Lock()
	switch {
	case parent.closed:
		parent.mu.Unlock()
		child.settle(zero, core.ErrTaskClosed)
	case parent.state.IsTerminal():
		value, err := parent.value, parent.fault
		parent.mu.Unlock()
		fire(value, err)
	default:
		parent.continuations = append(parent.continuations, fire)
		parent.mu.Unlock()
	}

	return child
}
