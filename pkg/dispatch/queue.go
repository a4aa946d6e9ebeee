package dispatch

import "sync"

// Queue is an unbounded FIFO used to hand values from producer goroutines
// to the single dispatcher consumer. The head and tail of the underlying
// list are guarded by independent locks, so a push and a pop contend only
// during the brief window where both need the tail.
//
// The queue never bounds its own length; backpressure is the caller's
// concern (see Registry.SubmitCallback).
type Queue[T any] struct {
	headMu sync.Mutex
	tailMu sync.Mutex
	cond   *sync.Cond
	head   *qnode[T]
	tail   *qnode[T]
}

type qnode[T any] struct {
	data T
	next *qnode[T]
}

// NewQueue returns an empty queue. The list always carries one stub node,
// so the queue is empty exactly when head == tail.
func NewQueue[T any]() *Queue[T] {
	q := &Queue[T]{}
	stub := &qnode[T]{}
	q.head = stub
	q.tail = stub
	// The condition waits on the tail lock: pushes mutate the tail under
	// that lock, so a waiter is either registered before the push or sees
	// the pushed node, never neither.
	q.cond = sync.NewCond(&q.tailMu)
	return q
}

// Push appends value and wakes one waiter. Push holds only the tail lock
// and never blocks on consumers.
func (q *Queue[T]) Push(value T) {
	stub := &qnode[T]{}

	q.tailMu.Lock()
	q.tail.data = value
	q.tail.next = stub
	q.tail = stub
	q.tailMu.Unlock()

	q.cond.Signal()
}

// TryPop removes and returns the oldest value, or reports false
// immediately if the queue is empty. It never blocks.
func (q *Queue[T]) TryPop() (T, bool) {
	q.headMu.Lock()
	defer q.headMu.Unlock()
	if q.head == q.getTail() {
		var zero T
		return zero, false
	}
	return q.popHead(), true
}

// WaitAndPop blocks the calling goroutine until a value is available,
// then removes and returns the oldest one. The per-frame drain paths use
// TryPop exclusively; WaitAndPop exists for dedicated worker goroutines
// that park until work arrives.
func (q *Queue[T]) WaitAndPop() T {
	q.headMu.Lock()
	defer q.headMu.Unlock()
	q.tailMu.Lock()
	for q.head == q.tail {
		q.cond.Wait()
	}
	q.tailMu.Unlock()
	return q.popHead()
}

// Empty reports whether the queue currently holds no values.
func (q *Queue[T]) Empty() bool {
	q.headMu.Lock()
	defer q.headMu.Unlock()
	return q.head == q.getTail()
}

func (q *Queue[T]) getTail() *qnode[T] {
	q.tailMu.Lock()
	defer q.tailMu.Unlock()
	return q.tail
}

// popHead unlinks the head node. Callers must hold the head lock and have
// established that the queue is non-empty.
func (q *Queue[T]) popHead() T {
	old := q.head
	q.head = old.next
	old.next = nil
	return old.data
}
