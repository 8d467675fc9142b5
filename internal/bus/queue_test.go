package bus

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smeysmey1509/rest-api-node-sub000/pkg/exception"
)

func TestQueueTryPublishFull(t *testing.T) {
	q := NewQueue(1)
	require.NoError(t, q.TryPublish(Message{Subject: "a"}))
	assert.ErrorIs(t, q.TryPublish(Message{Subject: "a"}), exception.ErrBusQueueFull)
	assert.Equal(t, 1, q.Len())

	q.Close()
	assert.ErrorIs(t, q.TryPublish(Message{Subject: "a"}), exception.ErrBusClosed)
}

func TestMemoryDeliversInOrder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b := NewMemory(16)
	var mu sync.Mutex
	var got []string
	done := make(chan struct{})
	require.NoError(t, b.Subscribe(ctx, "activity_logs", "workers", func(_ context.Context, msg Message) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, string(msg.Data))
		if len(got) == 3 {
			close(done)
		}
	}))

	for _, v := range []string{"1", "2", "3"} {
		require.NoError(t, b.Publish(ctx, "activity_logs", []byte(v)))
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for messages")
	}
	mu.Lock()
	assert.Equal(t, []string{"1", "2", "3"}, got)
	mu.Unlock()
	require.NoError(t, b.Close())
}

func TestMemorySubjectsAreIsolated(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b := NewMemory(4)
	hits := make(chan string, 4)
	require.NoError(t, b.Subscribe(ctx, "notification_logs", "", func(_ context.Context, msg Message) {
		hits <- msg.Subject
	}))
	require.NoError(t, b.Publish(ctx, "activity_logs", []byte("x")))
	require.NoError(t, b.Publish(ctx, "notification_logs", []byte("y")))

	select {
	case s := <-hits:
		assert.Equal(t, "notification_logs", s)
	case <-time.After(time.Second):
		t.Fatalf("no delivery")
	}
	select {
	case s := <-hits:
		t.Fatalf("unexpected delivery on %s", s)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestMemoryPublishQueueFull(t *testing.T) {
	b := NewMemory(1)
	ctx := context.Background()
	require.NoError(t, b.Publish(ctx, "s", nil))
	assert.ErrorIs(t, b.Publish(ctx, "s", nil), exception.ErrBusQueueFull)
}

func TestMemoryCloseDrainsQueued(t *testing.T) {
	b := NewMemory(8)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		require.NoError(t, b.Publish(ctx, "s", []byte{byte(i)}))
	}

	var mu sync.Mutex
	count := 0
	require.NoError(t, b.Subscribe(ctx, "s", "", func(context.Context, Message) {
		mu.Lock()
		count++
		mu.Unlock()
	}))
	require.NoError(t, b.Close())

	mu.Lock()
	assert.Equal(t, 5, count)
	mu.Unlock()
	assert.ErrorIs(t, b.Publish(ctx, "s", nil), exception.ErrBusClosed)
	assert.NoError(t, b.Close())
}

func TestMemoryRejectsBadArguments(t *testing.T) {
	b := NewMemory(1)
	ctx := context.Background()
	assert.ErrorIs(t, b.Publish(ctx, "", nil), exception.ErrBusNoSubject)
	assert.ErrorIs(t, b.Subscribe(ctx, "", "", func(context.Context, Message) {}), exception.ErrBusNoSubject)
	assert.ErrorIs(t, b.Subscribe(ctx, "s", "", nil), exception.ErrBusNilHandler)
}

func TestOpenDrivers(t *testing.T) {
	b, err := Open(context.Background(), Option{Driver: DriverMemory})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, b)

	_, err = Open(context.Background(), Option{Driver: "kafka"})
	assert.Error(t, err)
}

func TestNATSRetryWaitDoublesAndCaps(t *testing.T) {
	o := NATSOption{ReconnectWait: 250 * time.Millisecond, MaxRetryWait: 2 * time.Second}.withDefaults()
	assert.Equal(t, 250*time.Millisecond, o.retryWait(1))
	assert.Equal(t, 500*time.Millisecond, o.retryWait(2))
	assert.Equal(t, time.Second, o.retryWait(3))
	assert.Equal(t, 2*time.Second, o.retryWait(4))
	assert.Equal(t, 2*time.Second, o.retryWait(40))

	d := NATSOption{}.withDefaults()
	assert.Equal(t, 2*time.Second, d.retryWait(1))
	assert.Equal(t, 15*time.Second, d.retryWait(10))
}

func TestQueuePublishRacingClose(t *testing.T) {
	for round := 0; round < 200; round++ {
		q := NewQueue(64)
		var wg sync.WaitGroup
		for g := 0; g < 4; g++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < 50; i++ {
					_ = q.TryPublish(Message{Subject: "a"})
				}
			}()
		}
		q.Close()
		wg.Wait()
		assert.ErrorIs(t, q.TryPublish(Message{Subject: "a"}), exception.ErrBusClosed)
	}
}
