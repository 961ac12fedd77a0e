package queue

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"propfinder/server/internal/models"
)

var (
	ErrQueueFull   = errors.New("queue is full")
	ErrQueueClosed = errors.New("queue is closed")
)

// Batch is a slice of store rows of one market on its way to the search index
type Batch struct {
	Market models.Market
	Rows   []models.Row
	done   func(error)
}

// NewBatch creates a batch; done, when set, receives the handling outcome
func NewBatch(market models.Market, rows []models.Row, done func(error)) Batch {
	return Batch{Market: market, Rows: rows, done: done}
}

// Complete reports the handling outcome to the batch's producer
func (b Batch) Complete(err error) {
	if b.done != nil {
		b.done(err)
	}
}

// BatchQueue represents an in-memory queue of row batches
type BatchQueue struct {
	items    chan Batch
	done     chan struct{}
	maxSize  int
	closed   bool
	mu       sync.RWMutex
	workers  sync.WaitGroup
	inflight sync.WaitGroup
	logger   *logrus.Logger
	handlers []func(Batch) error
}

// NewBatchQueue creates a new batch queue with the specified buffer size
func NewBatchQueue(bufferSize int, logger *logrus.Logger) *BatchQueue {
	if logger == nil {
		logger = logrus.New()
	}
	return &BatchQueue{
		items:    make(chan Batch, bufferSize),
		done:     make(chan struct{}),
		maxSize:  bufferSize,
		logger:   logger,
		handlers: make([]func(Batch) error, 0),
	}
}

// Push adds a batch without blocking
func (q *BatchQueue) Push(batch Batch) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.items <- batch:
		q.logger.WithFields(logrus.Fields{
			"market":     batch.Market,
			"batch_size": len(batch.Rows),
		}).Debug("Pushed batch to queue")
		return nil
	default:
		return ErrQueueFull
	}
}

// PushWait adds a batch, waiting for free space until ctx ends or the
// queue closes.
func (q *BatchQueue) PushWait(ctx context.Context, batch Batch) error {
	// Registered under the lock so Close cannot drain before this send lands.
	q.mu.RLock()
	if q.closed {
		q.mu.RUnlock()
		return ErrQueueClosed
	}
	q.inflight.Add(1)
	q.mu.RUnlock()
	defer q.inflight.Done()

	select {
	case q.items <- batch:
		return nil
	case <-q.done:
		return ErrQueueClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Subscribe adds a handler function that will be called for each batch
func (q *BatchQueue) Subscribe(handler func(Batch) error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers = append(q.handlers, handler)
}

// Start runs workers goroutines that hand batches to the subscribers
func (q *BatchQueue) Start(workers int) {
	if workers < 1 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		q.workers.Add(1)
		go q.process()
	}
}

func (q *BatchQueue) process() {
	defer q.workers.Done()
	for {
		select {
		case <-q.done:
			return
		case batch := <-q.items:
			q.processBatch(batch)
		}
	}
}

// processBatch sends the batch to all subscribed handlers
func (q *BatchQueue) processBatch(batch Batch) {
	q.mu.RLock()
	handlers := q.handlers
	q.mu.RUnlock()

	var firstErr error
	for _, handler := range handlers {
		if err := handler(batch); err != nil {
			q.logger.WithError(err).WithField("market", batch.Market).Error("Handler failed to process batch")
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	batch.Complete(firstErr)
}

// Close stops the workers and fails every batch still waiting
func (q *BatchQueue) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.done)
	q.mu.Unlock()

	q.workers.Wait()
	q.inflight.Wait()
	for {
		select {
		case batch := <-q.items:
			batch.Complete(ErrQueueClosed)
		default:
			return nil
		}
	}
}

// Len returns the current number of batches in the queue
func (q *BatchQueue) Len() int {
	return len(q.items)
}

// IsClosed returns whether the queue has been closed
func (q *BatchQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
