package renderbridge

import (
	"testing"
)

func TestRenderNode_Name(t *testing.T) {
	n := NewRenderNode("original")
	if n.Name() != "original" {
		t.Fatalf("unexpected name %q", n.Name())
	}
	n.SetName("renamed")
	if n.Name() != "renamed" {
		t.Fatalf("unexpected name %q", n.Name())
	}
}

func TestRenderNode_AddAnimator(t *testing.T) {
	n := NewRenderNode("n")
	n.AddAnimator(nil)
	if n.AnimatorCount() != 0 {
		t.Fatal("nil animator should not be attached")
	}
	n.AddAnimator(newTestAnimator(1, nil))
	n.AddAnimator(newTestAnimator(2, nil))
	if n.AnimatorCount() != 2 {
		t.Fatalf("expected 2 animators, got %d", n.AnimatorCount())
	}
}

// TestRenderNode_AnimateDetachesFinished verifies finished animators are
// reported and detached, and the node stays active while any remain.
func TestRenderNode_AnimateDetachesFinished(t *testing.T) {
	n := NewRenderNode("n")

	listener := &finishRecorder{}
	short := newTestAnimator(1, listener)
	long := newTestAnimator(3, listener)
	n.AddAnimator(short)
	n.AddAnimator(long)

	info := &FrameInfo{Frame: 1}
	onFinished := func(a Animator, l AnimationListener) {
		l.OnAnimationFinished(a)
	}

	if !n.animate(info, onFinished) {
		t.Fatal("node should stay active while the long animator remains")
	}
	if n.AnimatorCount() != 1 {
		t.Fatalf("expected 1 remaining animator, got %d", n.AnimatorCount())
	}
	if got := listener.order(); len(got) != 1 || got[0] != short {
		t.Fatalf("expected [short] finished, got %v", got)
	}

	if !n.animate(info, onFinished) {
		t.Fatal("node should still be active, long needs one more frame")
	}

	if n.animate(info, onFinished) {
		t.Fatal("node should be inactive once all animators finished")
	}
	if n.AnimatorCount() != 0 {
		t.Fatalf("expected 0 animators, got %d", n.AnimatorCount())
	}
	if listener.count() != 2 {
		t.Fatalf("expected 2 finished events, got %d", listener.count())
	}
}

// TestRenderNode_AnimateOrder verifies animators advance and finish in
// attachment order.
func TestRenderNode_AnimateOrder(t *testing.T) {
	n := NewRenderNode("n")
	listener := &finishRecorder{}

	animators := make([]*testAnimator, 5)
	for i := range animators {
		animators[i] = newTestAnimator(1, listener)
		n.AddAnimator(animators[i])
	}

	n.animate(&FrameInfo{Frame: 1}, func(a Animator, l AnimationListener) {
		l.OnAnimationFinished(a)
	})

	got := listener.order()
	if len(got) != len(animators) {
		t.Fatalf("expected %d finished, got %d", len(animators), len(got))
	}
	for i := range got {
		if got[i] != animators[i] {
			t.Fatalf("out of order at %d", i)
		}
	}
}

// TestDefaultDriver_PrunesInactive verifies nodes with no remaining
// animations are removed from the active set, preserving order.
func TestDefaultDriver_PrunesInactive(t *testing.T) {
	a := NewRenderNode("a")
	a.AddAnimator(newTestAnimator(1, nil))
	b := NewRenderNode("b")
	b.AddAnimator(newTestAnimator(2, nil))
	c := NewRenderNode("c")
	c.AddAnimator(newTestAnimator(2, nil))

	var d defaultDriver
	active := d.AdvanceAnimations([]*RenderNode{a, b, c}, &FrameInfo{Frame: 1}, func(Animator, AnimationListener) {})

	if len(active) != 2 || active[0] != b || active[1] != c {
		t.Fatalf("expected [b c], got %v", active)
	}

	active = d.AdvanceAnimations(active, &FrameInfo{Frame: 2}, func(Animator, AnimationListener) {})
	if len(active) != 0 {
		t.Fatalf("expected empty active set, got %d", len(active))
	}
}

// TestDefaultDriver_NilListenerSkipped verifies a finished animator with no
// listener produces no callback.
func TestDefaultDriver_NilListenerSkipped(t *testing.T) {
	n := NewRenderNode("n")
	n.AddAnimator(newTestAnimator(1, nil))

	var called int
	var d defaultDriver
	d.AdvanceAnimations([]*RenderNode{n}, &FrameInfo{Frame: 1}, func(Animator, AnimationListener) { called++ })

	if called != 0 {
		t.Fatalf("expected no callbacks, got %d", called)
	}
}
