package renderbridge

import (
	"sync"
)

// AnimationListener observes the completion of a single animation. It is
// always invoked on the owner goroutine, never on the rendering goroutine.
type AnimationListener interface {
	OnAnimationFinished(animator Animator)
}

// AnimationListenerFunc adapts a plain function to AnimationListener.
type AnimationListenerFunc func(animator Animator)

// OnAnimationFinished implements AnimationListener.
func (f AnimationListenerFunc) OnAnimationFinished(animator Animator) { f(animator) }

// Animator is a single animation attached to a RenderNode, advanced once
// per frame on the rendering goroutine.
type Animator interface {
	// Animate advances the animation by one frame, returning true when the
	// animation has reached a terminal state. A finished animator is not
	// advanced again.
	Animate(info *FrameInfo) bool

	// Listener returns the completion listener, or nil if none is attached.
	Listener() AnimationListener
}

// RenderNode is a node in the render-side scene graph with zero or more
// animations attached. The bridge holds a reference to a registered node
// only between registration and attachment; after attachment the node is
// owned by the per-frame animation context until its animations finish.
type RenderNode struct {
	mu        sync.Mutex
	name      string
	animators []Animator
}

// NewRenderNode creates a named render node.
func NewRenderNode(name string) *RenderNode {
	return &RenderNode{name: name}
}

// Name returns the node's debug name.
func (n *RenderNode) Name() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.name
}

// SetName sets the node's debug name.
func (n *RenderNode) SetName(name string) {
	n.mu.Lock()
	n.name = name
	n.mu.Unlock()
}

// AddAnimator attaches an animation to the node. Typically called on the
// owner goroutine before the node is registered for animation.
func (n *RenderNode) AddAnimator(a Animator) {
	if a == nil {
		return
	}
	n.mu.Lock()
	n.animators = append(n.animators, a)
	n.mu.Unlock()
}

// AnimatorCount returns the number of animations still attached.
func (n *RenderNode) AnimatorCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.animators)
}

// animate advances every attached animator by one frame, in attachment
// order, reporting each completion via onFinished and detaching finished
// animators. Returns true while at least one animator remains.
func (n *RenderNode) animate(info *FrameInfo, onFinished func(Animator, AnimationListener)) bool {
	n.mu.Lock()
	animators := n.animators
	n.mu.Unlock()

	remaining := animators[:0]
	for _, a := range animators {
		if a.Animate(info) {
			if l := a.Listener(); l != nil {
				onFinished(a, l)
			}
			continue
		}
		remaining = append(remaining, a)
	}
	// Clear trailing slots so detached animators do not leak.
	for i := len(remaining); i < len(animators); i++ {
		animators[i] = nil
	}

	n.mu.Lock()
	n.animators = remaining
	n.mu.Unlock()

	return len(remaining) > 0
}

// ErrorHandler receives unrecoverable errors detected during a tree
// preparation pass. A handler is installed only for the duration of one
// traversal.
type ErrorHandler interface {
	OnError(message string)
}

// AnimationDriver is the per-frame animation advancement algorithm. It is
// invoked on the rendering goroutine with the active set in attachment
// order, and must report each completed animation via onFinished exactly
// once. Returning a node as inactive removes it from the active set.
type AnimationDriver interface {
	// AdvanceAnimations advances all animations of the given nodes for one
	// frame. It returns the nodes that remain active, which must be a
	// (possibly filtered) reordering-free view of the input.
	AdvanceAnimations(nodes []*RenderNode, info *FrameInfo, onFinished func(Animator, AnimationListener)) []*RenderNode
}

// defaultDriver advances each node's animators sequentially, in insertion
// order, pruning nodes with no animations left.
type defaultDriver struct{}

func (defaultDriver) AdvanceAnimations(nodes []*RenderNode, info *FrameInfo, onFinished func(Animator, AnimationListener)) []*RenderNode {
	active := nodes[:0]
	for _, n := range nodes {
		if n.animate(info, onFinished) {
			active = append(active, n)
		}
	}
	for i := len(active); i < len(nodes); i++ {
		nodes[i] = nil
	}
	return active
}
