package core

import (
	"sync"
)

const (
	defaultQueueCap     = 16
	compactMinCap       = 64 // Don't compact if capacity is less than this
	compactShrinkFactor = 4  // Trigger compaction when len < cap/4
)

// WorkItem is one unit of queued work. Run returns the fault, if any, that
// the work settled with.
type WorkItem struct {
	ID  TaskID
	Run func() error
}

// =============================================================================
// WorkQueue: unbounded blocking FIFO shared by a pool's workers
// =============================================================================

// WorkQueue is a multi-producer, multi-consumer FIFO. Consumers block in Pop
// until an item arrives or the queue has drained after Close.
//
// Draining: after Close, Push is rejected but PushAccepted still admits
// follow-up work released by items that are queued or running. The queue is
// drained once it is closed, empty and nothing is running; from then on every
// push fails and Pop returns false.
type WorkQueue struct {
	mu    sync.Mutex
	cond  *sync.Cond
	items []WorkItem

	active  int
	closed  bool
	drained bool
}

func NewWorkQueue() *WorkQueue {
	q := &WorkQueue{
		items: make([]WorkItem, 0, defaultQueueCap),
	}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push appends an item submitted from outside the pool.
func (q *WorkQueue) Push(item WorkItem) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrPoolClosed
	}
	q.pushLocked(item)
	return nil
}

// PushAccepted appends follow-up work for an already accepted item. It is
// only rejected once the queue has fully drained.
func (q *WorkQueue) PushAccepted(item WorkItem) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.drained {
		return ErrPoolClosed
	}
	q.pushLocked(item)
	return nil
}

func (q *WorkQueue) pushLocked(item WorkItem) {
	q.items = append(q.items, item)
	q.cond.Signal()
}

// Pop blocks until an item is available and marks it active. It returns
// false once the queue has drained. Every successful Pop must be paired
// with a call to Done.
func (q *WorkQueue) Pop() (WorkItem, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.items) == 0 {
		if q.closed && q.active == 0 {
			q.drained = true
			q.cond.Broadcast()
			return WorkItem{}, false
		}
		q.cond.Wait()
	}

	item := q.items[0]
	// Zero out the element in the underlying array to prevent memory leak
	q.items[0] = WorkItem{}
	q.items = q.items[1:]
	q.maybeCompactLocked()
	q.active++

	return item, true
}

// Done marks one popped item as finished.
func (q *WorkQueue) Done() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.active--
	if q.closed && q.active == 0 && len(q.items) == 0 {
		q.cond.Broadcast()
	}
}

// Close stops accepting new items and lets consumers exit once drained.
func (q *WorkQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.closed = true
	q.cond.Broadcast()
}

func (q *WorkQueue) maybeCompactLocked() {
	n := len(q.items)
	c := cap(q.items)

	if c < compactMinCap {
		return
	}
	if n == 0 {
		q.items = make([]WorkItem, 0, defaultQueueCap)
		return
	}
	if n*compactShrinkFactor >= c {
		return
	}

	newCap := max(max(c/2, defaultQueueCap), n)

	newSlice := make([]WorkItem, n, newCap)
	copy(newSlice, q.items)
	q.items = newSlice
}

// Len returns the number of queued, not yet running, items.
func (q *WorkQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Active returns the number of popped items not yet marked Done.
func (q *WorkQueue) Active() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.active
}

func (q *WorkQueue) IsClosed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// IsDrained reports whether the queue has closed and emptied.
func (q *WorkQueue) IsDrained() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.drained
}
