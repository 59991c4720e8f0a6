package lockfree

import (
	"sync/atomic"
	"unsafe"
)

// NodeBase is the intrusive link shared by every queue node.
// While a node is retained by a Pool the same link chains the free list.
type NodeBase struct {
	next atomic.Pointer[NodeBase]
}

// Next returns the successor of the node.
// The successor of the last linked node is the queue sentinel.
func (n *NodeBase) Next() *NodeBase {
	return n.next.Load()
}

// Node wraps a single payload value.
// NodeBase must stay the first field, the core only sees *NodeBase.
type Node[T any] struct {
	NodeBase
	Value T
}

func nodeOf[T any](b *NodeBase) *Node[T] {
	return (*Node[T])(unsafe.Pointer(b))
}

// Allocator is the memory-management policy of a queue.
type Allocator[T any] interface {
	// New returns an unlinked node with a zero payload.
	New() *Node[T]
	// Free takes ownership of a node that is no longer reachable.
	Free(*Node[T])
}

// StandardAllocator allocates every node on the heap and leaves released
// nodes to the garbage collector.
type StandardAllocator[T any] struct{}

func (StandardAllocator[T]) New() *Node[T] {
	return new(Node[T])
}

func (StandardAllocator[T]) Free(n *Node[T]) {
	var zero T
	n.Value = zero
	n.next.Store(nil)
}

// PooledAllocator recycles nodes through a Pool size class.
type PooledAllocator[T any] struct {
	pool  *Pool
	class *sizeClass
}

// NewPooledAllocator binds a new allocator to the size class of Node[T].
// A nil pool selects DefaultPool().
func NewPooledAllocator[T any](pool *Pool) *PooledAllocator[T] {
	if pool == nil {
		pool = DefaultPool()
	}
	return &PooledAllocator[T]{
		pool:  pool,
		class: pool.classFor(typeOfNode[T]()),
	}
}

// Pool returns the pool backing the allocator.
func (a *PooledAllocator[T]) Pool() *Pool {
	return a.pool
}

func (a *PooledAllocator[T]) New() *Node[T] {
	if b := a.class.acquire(); b != nil {
		return nodeOf[T](b)
	}
	a.class.allocs.Add(1)
	return new(Node[T])
}

func (a *PooledAllocator[T]) Free(n *Node[T]) {
	var zero T
	n.Value = zero
	a.class.release(&n.NodeBase)
}
