// Package renderbridge provides a cross-thread event bridge between a
// dedicated rendering goroutine and the goroutine that owns the user-facing
// object tree (the "owner" goroutine), built on a single-consumer
// message-queue handoff.
//
// # Architecture
//
// The bridge is composed of four cooperating pieces:
//
//   - [Looper]: a cooperative event loop run by the owner goroutine. Units
//     of work ([MessageHandler]) may be posted from any goroutine via
//     [Looper.Send], and are executed FIFO on the loop goroutine.
//   - [RootNode]: the render-thread-visible anchor for the owner-side tree.
//     It buffers animating-node registrations made on the owner goroutine,
//     and is the single point through which messages are posted back to the
//     owner goroutine.
//   - [AnimationBridge]: runs entirely on the rendering goroutine during a
//     frame. It consumes pending registrations at frame start, delegates
//     per-frame animation advancement to an [AnimationDriver], and collects
//     finished-animation events during the frame rather than delivering
//     them immediately.
//   - [RenderProxy]: the thread-safe command proxy that ships work onto the
//     rendering goroutine, paces frames, and tears the render side down.
//
// Control flow: the owner goroutine registers animating nodes; the
// rendering goroutine starts a frame, pulls pending registrations into the
// active set, advances animations, and if any animation completed, posts a
// single batch of finished events back through the anchor; the owner
// goroutine's loop later executes the batch, invoking each listener once.
// A parallel path delivers unrecoverable rendering errors the same way,
// surfacing a [RenderError] on the owner goroutine.
//
// # Thread Safety
//
//   - [Looper.Send] is safe to call from any goroutine.
//   - [RootNode.RegisterAnimatingNode] is intended to be called from the
//     owner goroutine; the registration buffer itself is mutex-guarded.
//   - [AnimationBridge] methods must only be called from the rendering
//     goroutine, between frames in the documented order.
//   - None of the cross-thread operations block the caller: posting a
//     message and registering a node are both non-blocking, and the
//     rendering goroutine never waits for the owner goroutine to execute a
//     posted unit of work.
//
// # Ordering
//
// Units posted through the same anchor execute FIFO relative to each
// other. Within one delivered batch, listeners fire in the order the
// animations completed. No ordering is guaranteed between units posted
// through different anchors.
//
// # Usage
//
//	looper := renderbridge.NewLooper()
//	go looper.Run(context.Background())
//
//	root := renderbridge.NewRootNode(looper)
//	proxy := renderbridge.NewRenderProxy(root)
//	defer proxy.Destroy(context.Background())
//
//	node := renderbridge.NewRenderNode("spinner")
//	node.AddAnimator(anim) // anim carries its AnimationListener
//	root.RegisterAnimatingNode(node)
//
//	// Each frame, typically driven by an external scheduler:
//	_ = proxy.SyncAndDrawFrame(context.Background())
package renderbridge
