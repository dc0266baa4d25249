package renderbridge

import (
	"sync"
)

// pendingRegistry buffers animating-node registrations made on the owner
// goroutine until the rendering goroutine begins the next frame.
//
// Appends and drains are mutually excluded by the mutex; the frame-boundary
// protocol guarantees drains only happen at frame start on the rendering
// goroutine, and at most once per frame.
type pendingRegistry struct {
	mu    sync.Mutex
	nodes []*RenderNode
}

// append buffers a node. O(1) amortized; no deduplication.
func (r *pendingRegistry) append(node *RenderNode) {
	r.mu.Lock()
	r.nodes = append(r.nodes, node)
	r.mu.Unlock()
}

// drainInto moves every buffered node into the attach target, in insertion
// order, then clears the buffer. Draining an empty registry is a no-op.
//
// The buffered slice is moved out under the lock and attached outside it,
// so a concurrent append never interleaves with attachment.
func (r *pendingRegistry) drainInto(attach func(*RenderNode)) {
	r.mu.Lock()
	nodes := r.nodes
	r.nodes = nil
	r.mu.Unlock()

	for _, node := range nodes {
		attach(node)
	}
}

// len returns the number of buffered registrations.
func (r *pendingRegistry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.nodes)
}
