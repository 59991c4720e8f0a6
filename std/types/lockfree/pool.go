package lockfree

import (
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/named-data/lfq/std/utils"
)

// MaxSizeClasses is the number of size classes a single Pool holds
// before chaining to an overflow pool.
const MaxSizeClasses = 16

// DefaultPoolSize is the initial per-class retention limit.
const DefaultPoolSize = 128

// MaxPoolSize is the largest accepted per-class retention limit.
const MaxPoolSize = 1 << 20

// Pool is a size-segregated free list of queue nodes.
//
// Every node type gets its own class, so a recycled node always has
// exactly the layout it is requested with. The hot path is lock-free;
// the mutex is only taken the first time a class is bound.
type Pool struct {
	limit    *atomic.Int64
	slots    [MaxSizeClasses]atomic.Pointer[sizeClass]
	overflow atomic.Pointer[Pool]
	mutex    sync.Mutex
}

// PoolStats is a snapshot of the pool counters.
type PoolStats struct {
	// Number of bound size classes
	Classes int `json:"classes"`
	// Nodes currently retained across all classes
	Retained int64 `json:"retained"`
	// Nodes allocated because the free list was empty
	Allocs uint64 `json:"allocs"`
	// Nodes served from the free list
	Reuses uint64 `json:"reuses"`
	// Nodes released while the class was full
	Drops uint64 `json:"drops"`
}

// ClassStats describes a single size class.
type ClassStats struct {
	Type     string  `json:"type"`
	Size     uintptr `json:"size"`
	Retained int64   `json:"retained"`
	Allocs   uint64  `json:"allocs"`
	Reuses   uint64  `json:"reuses"`
	Drops    uint64  `json:"drops"`
}

// NewPool creates an empty pool retaining up to DefaultPoolSize nodes per class.
func NewPool() *Pool {
	limit := &atomic.Int64{}
	limit.Store(DefaultPoolSize)
	return &Pool{limit: limit}
}

// SetPoolSize sets the maximum number of nodes retained per class,
// clamped to [0, MaxPoolSize].
// Lowering the limit does not evict retained nodes; use Clear for that.
func (p *Pool) SetPoolSize(n int) {
	p.limit.Store(int64(utils.Clamp(n, 0, MaxPoolSize)))
}

// PoolSize returns the maximum number of nodes retained per class.
func (p *Pool) PoolSize() int {
	return int(p.limit.Load())
}

// Clear drops every retained node and returns how many were released.
// Concurrent acquire and release calls are allowed.
func (p *Pool) Clear() (n int) {
	p.each(func(c *sizeClass) {
		n += c.clear()
	})
	return n
}

// Stats returns the counters aggregated over all classes.
func (p *Pool) Stats() (s PoolStats) {
	p.each(func(c *sizeClass) {
		s.Classes++
		s.Retained += c.count.Load()
		s.Allocs += c.allocs.Load()
		s.Reuses += c.reuses.Load()
		s.Drops += c.drops.Load()
	})
	return s
}

// ClassStats returns the counters of every bound class in binding order.
func (p *Pool) ClassStats() (s []ClassStats) {
	p.each(func(c *sizeClass) {
		s = append(s, ClassStats{
			Type:     c.typ.String(),
			Size:     c.typ.Size(),
			Retained: c.count.Load(),
			Allocs:   c.allocs.Load(),
			Reuses:   c.reuses.Load(),
			Drops:    c.drops.Load(),
		})
	})
	return s
}

func (p *Pool) each(f func(*sizeClass)) {
	for pool := p; pool != nil; pool = pool.overflow.Load() {
		for i := range pool.slots {
			c := pool.slots[i].Load()
			if c == nil {
				return
			}
			f(c)
		}
	}
}

// classFor returns the class bound to typ, binding a free slot if needed.
// Slots are bound in order, so the first empty slot ends the search.
func (p *Pool) classFor(typ reflect.Type) *sizeClass {
	for i := range p.slots {
		c := p.slots[i].Load()
		if c == nil {
			p.mutex.Lock()
			if c = p.slots[i].Load(); c == nil {
				c = &sizeClass{typ: typ, limit: p.limit}
				p.slots[i].Store(c)
			}
			p.mutex.Unlock()
		}
		if c.typ == typ {
			return c
		}
	}

	next := p.overflow.Load()
	if next == nil {
		p.mutex.Lock()
		if next = p.overflow.Load(); next == nil {
			next = &Pool{limit: p.limit}
			p.overflow.Store(next)
		}
		p.mutex.Unlock()
	}
	return next.classFor(typ)
}

func typeOfNode[T any]() reflect.Type {
	return reflect.TypeFor[Node[T]]()
}

// sizeClass is a Treiber stack of free nodes of one type.
//
// Pushes are fully concurrent. Pops are serialised by the popping flag:
// a node can only leave the stack through the current popper, which rules
// out ABA on the head. A goroutine that loses the flag allocates instead
// of waiting.
type sizeClass struct {
	typ   reflect.Type
	limit *atomic.Int64

	head    atomic.Pointer[NodeBase]
	count   atomic.Int64
	popping atomic.Bool

	allocs atomic.Uint64
	reuses atomic.Uint64
	drops  atomic.Uint64
}

func (c *sizeClass) acquire() *NodeBase {
	if !c.popping.CompareAndSwap(false, true) {
		return nil
	}

	var top *NodeBase
	for {
		top = c.head.Load()
		if top == nil || c.head.CompareAndSwap(top, top.next.Load()) {
			break
		}
	}
	c.popping.Store(false)

	if top == nil {
		return nil
	}
	top.next.Store(nil)
	c.count.Add(-1)
	c.reuses.Add(1)
	return top
}

func (c *sizeClass) release(n *NodeBase) {
	// reserve a slot first so the limit holds under concurrent releases
	if c.count.Add(1) > c.limit.Load() {
		c.count.Add(-1)
		c.drops.Add(1)
		n.next.Store(nil)
		return
	}

	for {
		top := c.head.Load()
		n.next.Store(top)
		if c.head.CompareAndSwap(top, n) {
			return
		}
	}
}

func (c *sizeClass) clear() int {
	var s spinner
	for !c.popping.CompareAndSwap(false, true) {
		s.once()
	}
	list := c.head.Swap(nil)
	c.popping.Store(false)

	n := 0
	for list != nil {
		next := list.next.Load()
		list.next.Store(nil)
		list = next
		n++
	}
	c.count.Add(int64(-n))
	return n
}

var defaultPool = sync.OnceValue(NewPool)

// DefaultPool returns the process-wide pool, creating it on first use.
func DefaultPool() *Pool {
	return defaultPool()
}

// SetPoolSize sets the retention limit of the default pool.
func SetPoolSize(n int) {
	DefaultPool().SetPoolSize(n)
}

// PoolSize returns the retention limit of the default pool.
func PoolSize() int {
	return DefaultPool().PoolSize()
}

// ClearPool drops every node retained by the default pool.
func ClearPool() int {
	return DefaultPool().Clear()
}
