package renderbridge

import (
	"sync"
)

// chunkSize is the number of handlers per node in the ingress linked list.
const chunkSize = 128

// messageQueue is a chunked linked-list queue of pending message handlers.
//
// Thread Safety: this struct is NOT thread-safe. The caller must provide
// external synchronization (the Looper's ingress mutex).
//
// Fixed-size chunks provide cache locality and amortize allocations, and
// chunk recycling via sync.Pool prevents GC thrashing under sustained
// posting load.
type messageQueue struct {
	head   *chunk
	tail   *chunk
	length int
}

var chunkPool = sync.Pool{
	New: func() any {
		return &chunk{}
	},
}

// chunk is a fixed-size node in the chunked linked-list. It uses
// readPos/pos cursors for O(1) push/pop without shifting.
type chunk struct {
	handlers [chunkSize]MessageHandler
	next     *chunk
	readPos  int // First unread slot
	pos      int // First unused slot
}

func newChunk() *chunk {
	c := chunkPool.Get().(*chunk)
	// Reset fields for reuse; the chunk may carry stale cursors.
	c.pos = 0
	c.readPos = 0
	c.next = nil
	return c
}

// returnChunk returns an exhausted chunk to the pool, clearing handler
// slots so retained references do not leak.
func returnChunk(c *chunk) {
	for i := 0; i < c.pos; i++ {
		c.handlers[i] = nil
	}
	c.pos = 0
	c.readPos = 0
	c.next = nil
	chunkPool.Put(c)
}

// push adds a handler to the queue.
//
// CALLER MUST HOLD EXTERNAL MUTEX.
func (q *messageQueue) push(h MessageHandler) {
	if q.tail == nil {
		q.tail = newChunk()
		q.head = q.tail
	}

	if q.tail.pos == len(q.tail.handlers) {
		newTail := newChunk()
		q.tail.next = newTail
		q.tail = newTail
	}

	q.tail.handlers[q.tail.pos] = h
	q.tail.pos++
	q.length++
}

// pop removes and returns the oldest handler. Returns false if the queue
// is empty.
//
// CALLER MUST HOLD EXTERNAL MUTEX.
func (q *messageQueue) pop() (MessageHandler, bool) {
	if q.head == nil {
		return nil, false
	}

	// Current chunk exhausted: advance, or reset cursors if it is the only
	// chunk (keeps one chunk warm for reuse).
	if q.head.readPos >= q.head.pos {
		if q.head == q.tail {
			q.head.pos = 0
			q.head.readPos = 0
			return nil, false
		}
		oldHead := q.head
		q.head = q.head.next
		returnChunk(oldHead)
	}

	if q.head.readPos >= q.head.pos {
		return nil, false
	}

	h := q.head.handlers[q.head.readPos]
	q.head.handlers[q.head.readPos] = nil // Zero out popped slot for GC
	q.head.readPos++
	q.length--

	if q.head.readPos >= q.head.pos {
		if q.head == q.tail {
			q.head.pos = 0
			q.head.readPos = 0
			return h, true
		}
		oldHead := q.head
		q.head = q.head.next
		returnChunk(oldHead)
	}

	return h, true
}

// len returns the queue length.
//
// CALLER MUST HOLD EXTERNAL MUTEX.
func (q *messageQueue) len() int {
	return q.length
}
