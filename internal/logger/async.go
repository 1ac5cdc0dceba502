package logger

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Closer allows flushing and stopping the async handler.
type Closer interface {
	Close()
}

// nopCloser is a no-op Closer for synchronous mode.
type nopCloser struct{}

func (nopCloser) Close() {}

// AsyncHandler moves record formatting and writing off the request path.
// Records are queued on a bounded channel and drained by a fixed set of
// workers; when the queue is full new records are dropped and counted.
type AsyncHandler struct {
	inner   slog.Handler
	queue   *asyncQueue
	dropped *atomic.Int64
}

// asyncQueue is shared by an AsyncHandler and every handler derived from it.
type asyncQueue struct {
	ch        chan queued
	wg        sync.WaitGroup
	closeOnce sync.Once
}

type queued struct {
	h   slog.Handler
	rec slog.Record
}

// NewAsyncHandler creates an AsyncHandler with the given channel capacity and worker count.
func NewAsyncHandler(inner slog.Handler, chanSize, workers int) *AsyncHandler {
	q := &asyncQueue{ch: make(chan queued, chanSize)}
	for range max(workers, 1) {
		q.wg.Add(1)
		go q.drain()
	}
	return &AsyncHandler{inner: inner, queue: q, dropped: &atomic.Int64{}}
}

func (q *asyncQueue) drain() {
	defer q.wg.Done()
	for item := range q.ch {
		_ = item.h.Handle(context.Background(), item.rec)
	}
}

// Enabled delegates to the inner handler.
func (h *AsyncHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle enqueues the record. Drops if the channel is full.
func (h *AsyncHandler) Handle(_ context.Context, rec slog.Record) error { //nolint:gocritic // slog.Handler interface requires value receiver
	select {
	case h.queue.ch <- queued{h: h.inner, rec: rec.Clone()}:
	default:
		h.dropped.Add(1)
	}
	return nil
}

// WithAttrs returns a handler that shares the queue but formats with the extra attrs.
func (h *AsyncHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &AsyncHandler{inner: h.inner.WithAttrs(attrs), queue: h.queue, dropped: h.dropped}
}

// WithGroup returns a handler that shares the queue but formats under the group.
func (h *AsyncHandler) WithGroup(name string) slog.Handler {
	return &AsyncHandler{inner: h.inner.WithGroup(name), queue: h.queue, dropped: h.dropped}
}

// DroppedCount returns the number of dropped records.
func (h *AsyncHandler) DroppedCount() int64 {
	return h.dropped.Load()
}

// Close stops accepting records and waits until the queue is drained.
// Safe to call more than once.
func (h *AsyncHandler) Close() {
	h.queue.closeOnce.Do(func() {
		close(h.queue.ch)
	})
	h.queue.wg.Wait()
}
