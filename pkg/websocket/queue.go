package websocket

import "sync"

// FrameQueue is a bounded ring buffer of outbound frames for one socket.
type FrameQueue struct {
	mu     sync.Mutex
	buf    [][]byte
	head   int
	size   int
	closed bool
	policy OverflowPolicy
	ready  chan struct{}
}

func NewFrameQueue(capacity int, policy OverflowPolicy) *FrameQueue {
	if capacity <= 0 {
		capacity = 1
	}
	return &FrameQueue{
		buf:    make([][]byte, capacity),
		policy: policy,
		ready:  make(chan struct{}, 1),
	}
}

// Push enqueues a frame according to the overflow policy. It reports whether
// the frame was queued and whether an older frame was evicted for it.
func (q *FrameQueue) Push(frame []byte) (queued, evicted bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false, false
	}
	if q.size == len(q.buf) {
		if q.policy != OverflowDropOldest {
			return false, false
		}
		q.buf[q.head] = nil
		q.head = (q.head + 1) % len(q.buf)
		q.size--
		evicted = true
	}
	q.buf[(q.head+q.size)%len(q.buf)] = frame
	q.size++
	select {
	case q.ready <- struct{}{}:
	default:
	}
	return true, evicted
}

// Pop dequeues the next frame without blocking.
func (q *FrameQueue) Pop() ([]byte, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.size == 0 {
		return nil, false
	}
	frame := q.buf[q.head]
	q.buf[q.head] = nil
	q.head = (q.head + 1) % len(q.buf)
	q.size--
	return frame, true
}

// Ready is signaled after a Push; the receiver should Pop until empty.
func (q *FrameQueue) Ready() <-chan struct{} {
	return q.ready
}

// Close rejects further pushes and discards pending frames.
func (q *FrameQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	for i := range q.buf {
		q.buf[i] = nil
	}
	q.head, q.size = 0, 0
}

func (q *FrameQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.size
}
