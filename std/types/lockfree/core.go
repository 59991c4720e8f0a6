// Lock-free data structures
package lockfree

import (
	"sync"
	"sync/atomic"

	"golang.org/x/sys/cpu"
)

// BlockingMode selects how a dequeue behaves on a queue with no linked node.
type BlockingMode int

const (
	// BlockUnlessEmpty spins while a value has been announced by a producer
	// but is not linked yet. It returns empty-handed once Size() is zero.
	BlockUnlessEmpty BlockingMode = iota
	// NeverBlock returns as soon as the head slot holds the sentinel.
	NeverBlock
)

func (m BlockingMode) String() string {
	switch m {
	case BlockUnlessEmpty:
		return "block-unless-empty"
	case NeverBlock:
		return "never-block"
	default:
		return "unknown"
	}
}

// ParseBlockingMode is the inverse of BlockingMode.String.
func ParseBlockingMode(s string) (BlockingMode, bool) {
	switch s {
	case "block-unless-empty":
		return BlockUnlessEmpty, true
	case "never-block":
		return NeverBlock, true
	}
	return BlockUnlessEmpty, false
}

// slot is a node's next field; head and tail point at slots, not nodes.
type slot = atomic.Pointer[NodeBase]

// Core is the untyped lock-free queue engine.
//
// Any number of goroutines may enqueue. Consumers serialise on the head
// slot: a consumer swaps the head for a private placeholder, so at most one
// dequeue is in flight at a time. Waiting is always busy-waiting.
//
// A consumer that obtained a node from AcquireHead must hand the same node
// to ReleaseHead; other consumers spin until it does.
type Core struct {
	head atomic.Pointer[slot]
	_    cpu.CacheLinePad
	tail atomic.Pointer[slot]
	_    cpu.CacheLinePad
	size atomic.Int64

	// sentinel.next always points to itself
	sentinel NodeBase
	// slot holding the first node after construction or Dispose
	root slot
	// placeholder swapped into head by the consumer in flight
	claimed slot
	// node whose next slot is the current head, freed on the next release
	lastHead *NodeBase

	free func(*NodeBase)

	handlerMutex sync.Mutex
	handler      DataReadyHandler
	hasHandler   atomic.Bool
}

// NewCore creates an empty queue. free receives nodes that are no longer
// reachable from the queue; it may be nil.
func NewCore(free func(*NodeBase)) *Core {
	c := &Core{free: free}
	c.sentinel.next.Store(&c.sentinel)
	c.reset()
	return c
}

func (c *Core) reset() {
	c.root.Store(&c.sentinel)
	c.head.Store(&c.root)
	c.tail.Store(&c.root)
	c.lastHead = nil
	c.size.Store(0)
}

// Sentinel returns the end-of-list marker of this queue.
func (c *Core) Sentinel() *NodeBase {
	return &c.sentinel
}

// Size returns the number of announced values not yet dequeued.
// Values that are mid-insertion are already counted.
func (c *Core) Size() int {
	return int(c.size.Load())
}

// IsEmpty reports whether Size is zero.
func (c *Core) IsEmpty() bool {
	return c.size.Load() == 0
}

// Enqueue links n at the tail. It is safe for concurrent producers.
func (c *Core) Enqueue(n *NodeBase) {
	c.announce(n).Store(n)
	c.notify()
}

// announce counts n and makes it the tail. It returns the slot of the
// previous tail, which must be set to n to link it. Until then consumers
// see the value in Size but cannot reach it.
func (c *Core) announce(n *NodeBase) *slot {
	c.size.Add(1)
	n.next.Store(&c.sentinel)
	return c.tail.Swap(&n.next)
}

// AcquireHead claims the front node without waiting for in-flight values.
// It returns nil if no node is linked.
func (c *Core) AcquireHead() *NodeBase {
	return c.acquire(false)
}

// AcquireHeadBlocking claims the front node, spinning while Size reports
// announced values that are not linked yet. It returns nil once the queue
// is empty.
func (c *Core) AcquireHeadBlocking() *NodeBase {
	return c.acquire(true)
}

func (c *Core) acquire(block bool) *NodeBase {
	var s spinner
	for {
		head := c.claimHead()
		if n := head.Load(); n != &c.sentinel {
			c.size.Add(-1)
			return n
		}

		c.head.Store(head)
		if !block || c.size.Load() <= 0 {
			return nil
		}
		s.once()
	}
}

func (c *Core) claimHead() *slot {
	var s spinner
	for {
		if head := c.head.Swap(&c.claimed); head != &c.claimed {
			return head
		}
		s.once()
	}
}

// ReleaseHead publishes n.next as the new head and frees the node released
// before n. The free is delayed by one step because the previous head's
// next slot stays live until the head moves past it.
func (c *Core) ReleaseHead(n *NodeBase) {
	prev := c.lastHead
	c.lastHead = n
	c.head.Store(&n.next)
	if prev != nil && c.free != nil {
		c.free(prev)
	}
}

// SetDataReadyHandler installs h, or removes the handler if h is nil.
//
// The handler runs on the producer's goroutine with the handler lock held,
// so it must neither call SetDataReadyHandler nor enqueue on the queue it
// observes. Either deadlocks. Hand the work to another goroutine instead,
// as Notifier does.
func (c *Core) SetDataReadyHandler(h DataReadyHandler) {
	c.handlerMutex.Lock()
	defer c.handlerMutex.Unlock()
	c.handler = h
	c.hasHandler.Store(h != nil)
}

func (c *Core) notify() {
	if !c.hasHandler.Load() {
		return
	}
	c.handlerMutex.Lock()
	defer c.handlerMutex.Unlock()
	if c.handler != nil {
		c.handler.DataReady()
	}
}

// Dispose frees every linked node and returns the queue to its initial
// state. Nodes retained by a pool are not touched. Dispose must not run
// concurrently with any other operation on the queue.
func (c *Core) Dispose() {
	for n := c.AcquireHead(); n != nil; n = c.AcquireHead() {
		c.ReleaseHead(n)
	}
	if c.lastHead != nil && c.free != nil {
		c.free(c.lastHead)
	}
	c.reset()
}
