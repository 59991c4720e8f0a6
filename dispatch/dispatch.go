package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/cespare/xxhash"
	"github.com/named-data/lfq/std/log"
	"github.com/named-data/lfq/std/types/lockfree"
	"github.com/named-data/lfq/std/types/sync_pool"
)

// MaxThreads is the maximum number of dispatch threads.
const MaxThreads = 64

var ErrInvalidConfig = errors.New("invalid dispatcher configuration")

// Config of a Dispatcher.
type Config struct {
	// Number of worker threads
	Threads int `json:"threads"`
	// Maximum number of values handled per queue pass
	Batch int `json:"batch"`
}

func DefaultConfig() Config {
	return Config{Threads: 4, Batch: 64}
}

func (c Config) Validate() error {
	if c.Threads < 1 || c.Threads > MaxThreads {
		return fmt.Errorf("%w: threads must be in [1, %d]", ErrInvalidConfig, MaxThreads)
	}
	if c.Batch < 1 {
		return fmt.Errorf("%w: batch must be positive", ErrInvalidConfig)
	}
	return nil
}

// Handler processes one value on the given thread.
type Handler[T any] func(thread int, v T)

// Dispatcher fans values out to a fixed set of worker threads.
// Values with the same key always go to the same thread, in order.
type Dispatcher[T any] struct {
	threads []*Thread[T]
	handler Handler[T]
	buffers sync_pool.SyncPool[*[]T]

	wg      sync.WaitGroup
	cancel  context.CancelFunc
	started bool
}

// New creates a dispatcher whose queues share pool.
// A nil pool leaves queue nodes to the garbage collector.
func New[T any](cfg Config, pool *lockfree.Pool, handler Handler[T]) (*Dispatcher[T], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	d := &Dispatcher[T]{
		threads: make([]*Thread[T], cfg.Threads),
		handler: handler,
		buffers: sync_pool.New(
			func() *[]T { b := make([]T, 0, cfg.Batch); return &b },
			func(b *[]T) { *b = (*b)[:0] }),
	}

	opts := []lockfree.Option{}
	if pool != nil {
		opts = append(opts, lockfree.WithPool(pool))
	}
	for i := range d.threads {
		d.threads[i] = newThread[T](i, opts...)
	}
	return d, nil
}

func (d *Dispatcher[T]) String() string {
	return "dispatcher"
}

// Threads returns the worker threads.
func (d *Dispatcher[T]) Threads() []*Thread[T] {
	return d.threads
}

// ThreadFor hashes a key to a thread index.
func (d *Dispatcher[T]) ThreadFor(key []byte) int {
	return int(xxhash.Sum64(key) % uint64(len(d.threads)))
}

// Dispatch queues v on the thread owning key.
func (d *Dispatcher[T]) Dispatch(key []byte, v T) {
	d.threads[d.ThreadFor(key)].push(v)
}

// Broadcast queues v on every thread.
func (d *Dispatcher[T]) Broadcast(v T) {
	for _, t := range d.threads {
		t.push(v)
	}
}

// Start launches the worker threads. Values dispatched before Start are
// handled once the threads run.
func (d *Dispatcher[T]) Start(ctx context.Context) {
	if d.started {
		return
	}
	d.started = true

	ctx, d.cancel = context.WithCancel(ctx)
	for _, t := range d.threads {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			t.run(ctx, d)
		}()
	}
	log.Info(d, "Started", "threads", len(d.threads))
}

// Stop handles every value already queued, then stops the threads and
// releases the queues. Dispatch must not be called concurrently with Stop.
func (d *Dispatcher[T]) Stop() {
	if !d.started {
		return
	}
	d.cancel()
	d.wg.Wait()
	d.started = false

	for _, t := range d.threads {
		t.queue.Dispose()
		log.Debug(d, "Thread stopped", "thread", t.id,
			"dispatched", t.NDispatched.Load(), "handled", t.NHandled.Load())
	}
}
