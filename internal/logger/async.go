package logger

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

const (
	// DrainTimeout bounds how long Close waits for a queue to empty.
	DrainTimeout = 5 * time.Second

	deliverTimeout = 10 * time.Second
)

// queueItem is either an event or a flush barrier.
type queueItem struct {
	ev      Event
	barrier chan struct{}
}

// deliveryQueue decouples emission from delivery for one destination. A single
// goroutine drains the channel into the sink, so events reach the sink in
// enqueue order.
type deliveryQueue struct {
	name        string
	sink        Sink
	ch          chan queueItem
	done        chan struct{}
	blockOnFull bool
	recorder    DeliveryRecorder
	diag        *diagnostics

	drainTimeout time.Duration
	abandoned    atomic.Bool  // set by close after drainTimeout; the worker drops what is left
	discarded    atomic.Int64 // events dropped after abandonment

	mu        sync.RWMutex // guards closed against sends on a closed channel
	closed    bool
	closeOnce sync.Once
	closeErr  error
}

func newDeliveryQueue(name string, sink Sink, size int, blockOnFull bool, recorder DeliveryRecorder, diag *diagnostics) *deliveryQueue {
	if size <= 0 {
		size = DefaultQueueSize
	}
	q := &deliveryQueue{
		name:        name,
		sink:        sink,
		ch:          make(chan queueItem, size),
		done:        make(chan struct{}),
		blockOnFull: blockOnFull,
		recorder:    recorder,
		diag:        diag,

		drainTimeout: DrainTimeout,
	}
	go q.drain()
	return q
}

// enqueue hands ev to the worker. It returns false when the event was dropped
// because the queue is full or closed.
func (q *deliveryQueue) enqueue(ev Event) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		q.recorder.RecordDropped(q.name)
		return false
	}

	item := queueItem{ev: ev}
	if q.blockOnFull {
		q.ch <- item
		q.recorder.SetQueueDepth(q.name, len(q.ch))
		return true
	}

	select {
	case q.ch <- item:
		q.recorder.SetQueueDepth(q.name, len(q.ch))
		return true
	default:
		q.recorder.RecordDropped(q.name)
		q.diag.report("log queue full, dropping event",
			"destination", q.name,
			"severity", ev.Severity.String(),
			"capacity", cap(q.ch))
		return false
	}
}

// flush waits until every event enqueued before the call has been handed to
// the sink, then flushes the sink.
func (q *deliveryQueue) flush(ctx context.Context) error {
	barrier := make(chan struct{})

	q.mu.RLock()
	if q.closed {
		q.mu.RUnlock()
		return nil
	}
	select {
	case q.ch <- queueItem{barrier: barrier}:
	case <-ctx.Done():
		q.mu.RUnlock()
		return fmt.Errorf("flush %s: %w", q.name, ctx.Err())
	}
	q.mu.RUnlock()

	select {
	case <-barrier:
	case <-ctx.Done():
		return fmt.Errorf("flush %s: %w", q.name, ctx.Err())
	}

	if err := q.sink.Flush(); err != nil {
		return fmt.Errorf("flush %s: %w", q.name, err)
	}
	return nil
}

// close stops accepting events and waits up to drainTimeout for the worker to
// deliver what is queued. After that the remaining events are dropped; the sink
// is closed once the worker has returned from its current delivery, or after
// deliverTimeout if it does not.
func (q *deliveryQueue) close() error {
	q.closeOnce.Do(func() {
		q.mu.Lock()
		q.closed = true
		close(q.ch)
		q.mu.Unlock()

		timer := time.NewTimer(q.drainTimeout)
		defer timer.Stop()

		select {
		case <-q.done:
		case <-timer.C:
			q.abandoned.Store(true)
			stuck := false
			select {
			case <-q.done:
			case <-time.After(deliverTimeout):
				stuck = true
			}
			q.diag.report("log queue drain timed out, dropping pending events",
				"destination", q.name,
				"dropped", q.discarded.Load(),
				"delivery_stuck", stuck)
		}
		q.closeErr = q.sink.Close()
	})
	return q.closeErr
}

// drain delivers queued events until the channel is closed.
func (q *deliveryQueue) drain() {
	defer close(q.done)
	for item := range q.ch {
		if item.barrier != nil {
			close(item.barrier)
			continue
		}
		if q.abandoned.Load() {
			q.discarded.Add(1)
			q.recorder.RecordDropped(q.name)
			continue
		}
		q.deliver(item.ev)
		q.recorder.SetQueueDepth(q.name, len(q.ch))
	}
}

// deliver hands ev to the sink. A panic while formatting or writing counts as
// a delivery error and is reported; the worker keeps running.
func (q *deliveryQueue) deliver(ev Event) {
	ctx, cancel := context.WithTimeout(context.Background(), deliverTimeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			q.recorder.RecordDeliveryError(q.name)
			q.diag.report("log delivery panicked",
				"destination", q.name,
				"severity", ev.Severity.String(),
				"panic", safeSprint(r))
		}
	}()

	if err := q.sink.Deliver(ctx, ev); err != nil {
		q.recorder.RecordDeliveryError(q.name)
		q.diag.report("log delivery failed",
			"destination", q.name,
			"severity", ev.Severity.String(),
			"error", err)
		return
	}
	q.recorder.RecordEvent(q.name, ev.Severity.String())
}
