package lockfree

import (
	"context"
	"iter"
)

// Queue is a typed lock-free FIFO queue with multiple producers and
// multiple consumers.
//
// Blocking dequeues spin; they never park the goroutine. Consumers that
// want to sleep while the queue is idle should install a Notifier.
type Queue[T any] struct {
	core  *Core
	alloc Allocator[T]
}

type options struct {
	pool    *Pool
	alloc   any
	handler DataReadyHandler
}

// Option configures a Queue.
type Option func(*options)

// WithPool recycles nodes through the given pool.
func WithPool(p *Pool) Option {
	return func(o *options) {
		o.pool = p
	}
}

// WithAllocator selects the memory-management policy of the queue.
// It takes precedence over WithPool.
func WithAllocator[T any](a Allocator[T]) Option {
	return func(o *options) {
		o.alloc = a
	}
}

// WithDataReadyHandler installs a handler at construction time.
func WithDataReadyHandler(h DataReadyHandler) Option {
	return func(o *options) {
		o.handler = h
	}
}

// NewQueue creates an empty queue. Without options, nodes are
// heap-allocated and left to the garbage collector.
func NewQueue[T any](opts ...Option) *Queue[T] {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	q := &Queue[T]{}
	switch {
	case o.alloc != nil:
		alloc, ok := o.alloc.(Allocator[T])
		if !ok {
			panic("lockfree: allocator does not match the queue element type")
		}
		q.alloc = alloc
	case o.pool != nil:
		q.alloc = NewPooledAllocator[T](o.pool)
	default:
		q.alloc = StandardAllocator[T]{}
	}

	q.core = NewCore(func(b *NodeBase) {
		q.alloc.Free(nodeOf[T](b))
	})
	if o.handler != nil {
		q.core.SetDataReadyHandler(o.handler)
	}
	return q
}

// Enqueue appends a copy of v.
func (q *Queue[T]) Enqueue(v T) {
	n := q.alloc.New()
	n.Value = v
	q.core.Enqueue(&n.NodeBase)
}

// Push is Enqueue.
func (q *Queue[T]) Push(v T) {
	q.Enqueue(v)
}

// Dequeue removes the front value. On an empty queue it returns the
// zero value and false.
func (q *Queue[T]) Dequeue(mode BlockingMode) (val T, ok bool) {
	b := q.core.acquire(mode == BlockUnlessEmpty)
	if b == nil {
		return val, false
	}

	n := nodeOf[T](b)
	val = n.Value
	var zero T
	n.Value = zero
	q.core.ReleaseHead(b)
	return val, true
}

// DequeueInto stores the front value in out. If the queue is empty out
// is left untouched and false is returned.
func (q *Queue[T]) DequeueInto(out *T, mode BlockingMode) bool {
	val, ok := q.Dequeue(mode)
	if ok {
		*out = val
	}
	return ok
}

// Pop is Dequeue(BlockUnlessEmpty).
func (q *Queue[T]) Pop() (T, bool) {
	return q.Dequeue(BlockUnlessEmpty)
}

// DequeueBatch fills buf up to its capacity and returns it resized to the
// number of values retrieved. It stops at the first unsuccessful dequeue.
func (q *Queue[T]) DequeueBatch(buf []T, mode BlockingMode) []T {
	buf = buf[:cap(buf)]
	n := 0
	for n < len(buf) {
		val, ok := q.Dequeue(mode)
		if !ok {
			break
		}
		buf[n] = val
		n++
	}
	return buf[:n]
}

// DequeueContext spins until a value is available or ctx is done.
func (q *Queue[T]) DequeueContext(ctx context.Context) (T, error) {
	var s spinner
	for {
		if val, ok := q.Dequeue(NeverBlock); ok {
			return val, nil
		}
		if err := ctx.Err(); err != nil {
			var zero T
			return zero, err
		}
		s.once()
	}
}

// All drains the queue in FIFO order until it is empty.
func (q *Queue[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for {
			val, ok := q.Dequeue(BlockUnlessEmpty)
			if !ok || !yield(val) {
				return
			}
		}
	}
}

// Size returns the number of values enqueued and not yet dequeued.
func (q *Queue[T]) Size() int {
	return q.core.Size()
}

// IsEmpty reports whether Size is zero.
func (q *Queue[T]) IsEmpty() bool {
	return q.core.IsEmpty()
}

// SetDataReadyHandler installs h, or removes the handler if h is nil.
// The handler must not enqueue on q; see Core.SetDataReadyHandler.
func (q *Queue[T]) SetDataReadyHandler(h DataReadyHandler) {
	q.core.SetDataReadyHandler(h)
}

// Dispose releases every remaining node to the allocator.
// It must not run concurrently with any other operation.
func (q *Queue[T]) Dispose() {
	q.core.Dispose()
}
