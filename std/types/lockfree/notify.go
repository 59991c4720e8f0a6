package lockfree

import "context"

// DataReadyHandler is notified after every enqueue, on the producer's
// goroutine and under the queue's handler lock. It must not enqueue on the
// queue it observes.
//
// Notifications are level-triggered and may be redundant: a consumer must
// re-check the queue after each batch, since a new value can race with
// its decision to stop.
type DataReadyHandler interface {
	DataReady()
}

// DataReadyFunc adapts a function to DataReadyHandler.
type DataReadyFunc func()

func (f DataReadyFunc) DataReady() {
	f()
}

// Notifier wakes a single consumer through a channel.
// Pending notifications coalesce into one.
type Notifier struct {
	c chan struct{}
}

func NewNotifier() *Notifier {
	return &Notifier{c: make(chan struct{}, 1)}
}

// DataReady signals the consumer without blocking the producer.
func (n *Notifier) DataReady() {
	select {
	case n.c <- struct{}{}:
	default:
	}
}

// C returns the wake-up channel.
func (n *Notifier) C() <-chan struct{} {
	return n.c
}

// Wait blocks until a notification is pending or ctx is done.
func (n *Notifier) Wait(ctx context.Context) error {
	select {
	case <-n.c:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
