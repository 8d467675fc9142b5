// Package batch buffers items and hands them to a sink in groups.
package batch

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/yanun0323/logs"

	"github.com/smeysmey1509/rest-api-node-sub000/internal/obs"
	"github.com/smeysmey1509/rest-api-node-sub000/pkg/exception"
)

// Sink persists one batch. It must not retain the slice.
type Sink[T any] func(ctx context.Context, items []T) error

// Writer collects items from a bounded queue and flushes them to a sink
// when a batch fills, on every FlushInterval tick, and on shutdown.
// A failed flush is logged and counted; the writer keeps running.
type Writer[T any] struct {
	cfg  Config
	sink Sink[T]
	ch   chan T
	wg   sync.WaitGroup
	err  atomic.Value

	// mu orders sends on ch against close(ch).
	mu      sync.Mutex
	closed  bool
	started uint32
}

// NewWriter creates a writer for sink.
func NewWriter[T any](cfg Config, sink Sink[T]) (*Writer[T], error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if sink == nil {
		return nil, exception.ErrBatchNilSink
	}
	return &Writer[T]{
		cfg:  cfg,
		sink: sink,
		ch:   make(chan T, cfg.QueueSize),
	}, nil
}

// Start runs the writer loop in a new goroutine.
func (w *Writer[T]) Start(ctx context.Context) error {
	if !atomic.CompareAndSwapUint32(&w.started, 0, 1) {
		return exception.ErrBatchStarted
	}
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.run(ctx)
	}()
	return nil
}

// Close stops accepting items, flushes what is queued, and waits.
// Items appended after the loop stopped on ctx are flushed here.
func (w *Writer[T]) Close() error {
	w.mu.Lock()
	first := !w.closed
	if first {
		w.closed = true
		close(w.ch)
	}
	w.mu.Unlock()

	w.wg.Wait()
	if first {
		var rest []T
		for item := range w.ch {
			rest = append(rest, item)
		}
		for len(rest) > 0 {
			n := min(len(rest), w.cfg.BatchSize)
			w.flush(context.Background(), rest[:n])
			rest = rest[n:]
		}
	}
	return w.Err()
}

// Err returns the first flush error observed by the writer, if any.
func (w *Writer[T]) Err() error {
	if v := w.err.Load(); v != nil {
		return v.(error)
	}
	return nil
}

// Len returns the number of queued items.
func (w *Writer[T]) Len() int {
	return len(w.ch)
}

// TryAppend enqueues items without blocking. It is all-or-nothing: when the
// queue has no room for every item, none is queued and ErrBatchQueueFull is
// returned.
func (w *Writer[T]) TryAppend(items ...T) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return exception.ErrBatchClosed
	}
	if atomic.LoadUint32(&w.started) == 0 {
		return exception.ErrBatchNotStarted
	}
	// the loop only takes from ch, so free space cannot shrink while mu is held
	if cap(w.ch)-len(w.ch) < len(items) {
		for range items {
			obs.BatchDropped(w.cfg.Name)
		}
		return exception.ErrBatchQueueFull
	}
	for _, item := range items {
		w.ch <- item
	}
	return nil
}

func (w *Writer[T]) run(ctx context.Context) {
	var (
		buf         = make([]T, 0, w.cfg.BatchSize)
		flushC      <-chan time.Time
		flushTicker *time.Ticker
	)

	if w.cfg.FlushInterval > 0 {
		flushTicker = time.NewTicker(w.cfg.FlushInterval)
		flushC = flushTicker.C
		defer flushTicker.Stop()
	}

	flushCtx := context.WithoutCancel(ctx)
	flush := func() {
		if len(buf) == 0 {
			return
		}
		w.flush(flushCtx, buf)
		clear(buf)
		buf = buf[:0]
	}

	for {
		select {
		case <-ctx.Done():
			w.drainNonBlocking(func(item T) {
				buf = append(buf, item)
				if len(buf) >= w.cfg.BatchSize {
					flush()
				}
			})
			flush()
			return
		case item, ok := <-w.ch:
			if !ok {
				flush()
				return
			}
			buf = append(buf, item)
			if len(buf) >= w.cfg.BatchSize {
				flush()
			}
		case <-flushC:
			flush()
		}
	}
}

func (w *Writer[T]) drainNonBlocking(add func(T)) {
	for {
		select {
		case item, ok := <-w.ch:
			if !ok {
				return
			}
			add(item)
		default:
			return
		}
	}
}

func (w *Writer[T]) flush(ctx context.Context, items []T) {
	ctx, cancel := context.WithTimeout(ctx, w.cfg.FlushTimeout)
	defer cancel()

	start := time.Now()
	if err := w.sink(ctx, items); err != nil {
		obs.BatchFlushFailed(w.cfg.Name)
		logs.Errorf("batch %s flush %d items, err: %+v", w.cfg.Name, len(items), err)
		w.setErr(err)
		return
	}
	obs.BatchFlushed(w.cfg.Name, len(items), time.Since(start))
}

func (w *Writer[T]) setErr(err error) {
	if err == nil {
		return
	}
	if w.err.Load() != nil {
		return
	}
	w.err.Store(err)
}
