package renderbridge

import (
	"sync"
	"testing"
)

// TestPendingRegistry_Order verifies drained nodes preserve insertion
// order.
func TestPendingRegistry_Order(t *testing.T) {
	var r pendingRegistry

	const total = 100
	nodes := make([]*RenderNode, total)
	for i := range nodes {
		nodes[i] = NewRenderNode("n")
		r.append(nodes[i])
	}
	if r.len() != total {
		t.Fatalf("expected %d pending, got %d", total, r.len())
	}

	var drained []*RenderNode
	r.drainInto(func(n *RenderNode) { drained = append(drained, n) })

	if len(drained) != total {
		t.Fatalf("expected %d drained, got %d", total, len(drained))
	}
	for i := range drained {
		if drained[i] != nodes[i] {
			t.Fatalf("out of order at %d", i)
		}
	}
	if r.len() != 0 {
		t.Fatalf("registry should be empty after drain, got %d", r.len())
	}
}

// TestPendingRegistry_DoubleDrain verifies the second drain of the same
// contents is a no-op.
func TestPendingRegistry_DoubleDrain(t *testing.T) {
	var r pendingRegistry
	r.append(NewRenderNode("n"))

	var count int
	r.drainInto(func(*RenderNode) { count++ })
	r.drainInto(func(*RenderNode) { count++ })

	if count != 1 {
		t.Fatalf("expected 1 attachment, got %d", count)
	}
}

// TestPendingRegistry_ConcurrentAppend verifies appends racing a drain are
// either fully included or left for the next drain, never lost.
func TestPendingRegistry_ConcurrentAppend(t *testing.T) {
	var r pendingRegistry

	const (
		goroutines = 8
		perSender  = 200
	)
	var wg sync.WaitGroup
	wg.Add(goroutines)

	var mu sync.Mutex
	var drained int

	stop := make(chan struct{})
	drainer := make(chan struct{})
	go func() {
		defer close(drainer)
		for {
			r.drainInto(func(*RenderNode) {
				mu.Lock()
				drained++
				mu.Unlock()
			})
			select {
			case <-stop:
				return
			default:
			}
		}
	}()

	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perSender; j++ {
				r.append(NewRenderNode("n"))
			}
		}()
	}
	wg.Wait()
	close(stop)
	<-drainer

	// Final drain picks up anything appended after the drainer exited.
	r.drainInto(func(*RenderNode) {
		mu.Lock()
		drained++
		mu.Unlock()
	})

	if drained != goroutines*perSender {
		t.Fatalf("expected %d drained, got %d", goroutines*perSender, drained)
	}
}
