package bus

import (
	"context"
	"sync"

	"github.com/smeysmey1509/rest-api-node-sub000/internal/obs"
	"github.com/smeysmey1509/rest-api-node-sub000/pkg/exception"
)

// Queue is a bounded, non-blocking message queue.
type Queue struct {
	mu     sync.Mutex
	ch     chan Message
	closed bool
}

// NewQueue allocates a queue with the given capacity.
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = 1
	}
	return &Queue{ch: make(chan Message, capacity)}
}

// TryPublish enqueues a message without blocking.
func (q *Queue) TryPublish(m Message) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return exception.ErrBusClosed
	}
	select {
	case q.ch <- m:
		return nil
	default:
		return exception.ErrBusQueueFull
	}
}

// Len returns the number of queued messages.
func (q *Queue) Len() int {
	return len(q.ch)
}

// Close stops the queue from accepting new messages.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		q.closed = true
		close(q.ch)
	}
}

// Run consumes messages until the context is done or the queue is closed.
func (q *Queue) Run(ctx context.Context, handler Handler) {
	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-q.ch:
			if !ok {
				return
			}
			handler(ctx, m)
		}
	}
}

// Memory is an in-process Bus with one queue per subject. Groups are
// ignored: every subscriber of a subject competes on the same queue.
type Memory struct {
	mu       sync.Mutex
	capacity int
	queues   map[string]*Queue
	wg       sync.WaitGroup
	closed   bool
}

// NewMemory creates an in-process bus whose subject queues hold capacity messages.
func NewMemory(capacity int) *Memory {
	return &Memory{
		capacity: capacity,
		queues:   make(map[string]*Queue),
	}
}

func (m *Memory) queue(subject string) (*Queue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, exception.ErrBusClosed
	}
	q, ok := m.queues[subject]
	if !ok {
		q = NewQueue(m.capacity)
		m.queues[subject] = q
	}
	return q, nil
}

func (m *Memory) Publish(_ context.Context, subject string, data []byte) error {
	if subject == "" {
		return exception.ErrBusNoSubject
	}
	q, err := m.queue(subject)
	if err != nil {
		obs.BusPublishFailed(subject, "closed")
		return err
	}
	if err := q.TryPublish(Message{Subject: subject, Data: data}); err != nil {
		obs.BusPublishFailed(subject, "queue_full")
		return err
	}
	obs.BusPublished(subject)
	return nil
}

func (m *Memory) Subscribe(ctx context.Context, subject, _ string, handler Handler) error {
	if subject == "" {
		return exception.ErrBusNoSubject
	}
	if handler == nil {
		return exception.ErrBusNilHandler
	}
	q, err := m.queue(subject)
	if err != nil {
		return err
	}
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		q.Run(ctx, func(ctx context.Context, msg Message) {
			obs.BusConsumed(msg.Subject)
			handler(ctx, msg)
		})
	}()
	return nil
}

// Close closes every subject queue and waits for subscribers to drain them.
func (m *Memory) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	for _, q := range m.queues {
		q.Close()
	}
	m.mu.Unlock()
	m.wg.Wait()
	return nil
}
