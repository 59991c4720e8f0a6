package lockfree

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCoreAnnouncedNotLinked(t *testing.T) {
	c := NewCore(nil)
	n := &NodeBase{}
	prev := c.announce(n)

	// counted, but not reachable from the head yet
	require.Equal(t, 1, c.Size())
	require.Nil(t, c.AcquireHead())
	require.Equal(t, 1, c.Size())

	acquired := make(chan *NodeBase, 1)
	go func() {
		acquired <- c.AcquireHeadBlocking()
	}()

	select {
	case <-acquired:
		t.Fatal("blocking acquire returned before the node was linked")
	case <-time.After(50 * time.Millisecond):
	}

	prev.Store(n)
	got := <-acquired
	require.Same(t, n, got)
	c.ReleaseHead(got)
	require.True(t, c.IsEmpty())
	require.Nil(t, c.AcquireHeadBlocking())
}

func TestQueueBlockingModes(t *testing.T) {
	q := NewQueue[int]()
	n := q.alloc.New()
	n.Value = 7
	prev := q.core.announce(&n.NodeBase)

	_, ok := q.Dequeue(NeverBlock)
	require.False(t, ok)

	type result struct {
		val int
		ok  bool
	}
	done := make(chan result, 1)
	go func() {
		val, ok := q.Dequeue(BlockUnlessEmpty)
		done <- result{val, ok}
	}()

	select {
	case <-done:
		t.Fatal("blocking dequeue returned while a value was announced")
	case <-time.After(50 * time.Millisecond):
	}

	prev.Store(&n.NodeBase)
	res := <-done
	require.True(t, res.ok)
	require.Equal(t, 7, res.val)

	// nothing announced: both modes return at once
	_, ok = q.Dequeue(BlockUnlessEmpty)
	require.False(t, ok)
}
