package dispatch

import (
	"context"
	"sync/atomic"

	"github.com/named-data/lfq/std/types/lockfree"
)

// Thread is a dispatch worker with its own queue.
type Thread[T any] struct {
	id     int
	queue  *lockfree.Queue[T]
	notify *lockfree.Notifier

	// Counters
	NDispatched atomic.Uint64
	NHandled    atomic.Uint64
}

func newThread[T any](id int, opts ...lockfree.Option) *Thread[T] {
	t := &Thread[T]{
		id:     id,
		notify: lockfree.NewNotifier(),
	}
	opts = append(opts[:len(opts):len(opts)], lockfree.WithDataReadyHandler(t.notify))
	t.queue = lockfree.NewQueue[T](opts...)
	return t
}

// ID returns the index of the thread.
func (t *Thread[T]) ID() int {
	return t.id
}

// Pending returns the number of queued values.
func (t *Thread[T]) Pending() int {
	return t.queue.Size()
}

func (t *Thread[T]) push(v T) {
	t.NDispatched.Add(1)
	t.queue.Enqueue(v)
}

func (t *Thread[T]) run(ctx context.Context, d *Dispatcher[T]) {
	buf := d.buffers.Get()
	defer d.buffers.Put(buf)

	for {
		t.drain(buf, d.handler)

		// notifications are level-triggered, so the queue is
		// drained again after every wake-up
		select {
		case <-t.notify.C():
		case <-ctx.Done():
			t.drain(buf, d.handler)
			return
		}
	}
}

func (t *Thread[T]) drain(buf *[]T, handler Handler[T]) {
	var zero T
	for {
		*buf = t.queue.DequeueBatch(*buf, lockfree.BlockUnlessEmpty)
		if len(*buf) == 0 {
			return
		}
		for i, v := range *buf {
			handler(t.id, v)
			(*buf)[i] = zero
		}
		t.NHandled.Add(uint64(len(*buf)))
	}
}
