package storage

import (
	"context"
	"sync"
	"time"

	"github.com/rohmanhakim/store-insights/internal/insight"
	"github.com/rohmanhakim/store-insights/internal/metadata"
)

// DefaultWriteTimeout bounds a single sink write made by the dispatcher.
const DefaultWriteTimeout = 30 * time.Second

// Dispatcher hands finished documents to the sinks on a background worker.
// Submit never blocks the caller; documents that do not fit in the buffer
// are dropped and recorded. Close stops intake and drains what is queued.
type Dispatcher struct {
	metadataSink metadata.MetadataSink
	sinks        []Sink
	queue        chan insight.Document
	writeTimeout time.Duration

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

func NewDispatcher(metadataSink metadata.MetadataSink, buffer int, sinks ...Sink) *Dispatcher {
	if metadataSink == nil {
		metadataSink = &metadata.NoopSink{}
	}
	if buffer < 1 {
		buffer = 1
	}
	d := &Dispatcher{
		metadataSink: metadataSink,
		sinks:        sinks,
		queue:        make(chan insight.Document, buffer),
		writeTimeout: DefaultWriteTimeout,
		done:         make(chan struct{}),
	}
	go d.run()
	return d
}

// Submit enqueues doc for persistence without waiting for the write.
func (d *Dispatcher) Submit(doc insight.Document) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return ErrDispatcherClosed
	}

	select {
	case d.queue <- doc:
		return nil
	default:
		d.metadataSink.RecordError(
			time.Now(),
			"storage",
			"Dispatcher.Submit",
			metadata.CauseStorageFailure,
			ErrDispatcherFull.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrDomain, doc.Domain),
			},
		)
		return ErrDispatcherFull
	}
}

// Close stops accepting documents and waits until queued ones are written
// or ctx ends.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for doc := range d.queue {
		for _, sink := range d.sinks {
			d.write(sink, doc)
		}
	}
}

// write errors are recorded by the sink itself.
func (d *Dispatcher) write(sink Sink, doc insight.Document) {
	ctx, cancel := context.WithTimeout(context.Background(), d.writeTimeout)
	defer cancel()
	_, _ = sink.Write(ctx, doc)
}
