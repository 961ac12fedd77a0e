package processor

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"propfinder/server/config"
	"propfinder/server/internal/models"
	"propfinder/server/internal/queue"
)

// DocumentSink receives rows to make them searchable
type DocumentSink interface {
	AddDocuments(ctx context.Context, market models.Market, rows []models.Row) error
}

// BatchProcessor handles the delivery of queued row batches to the search index
type BatchProcessor struct {
	sink   DocumentSink
	logger *logrus.Logger
	config *config.Config
	queue  *queue.BatchQueue
	ctx    context.Context
	cancel context.CancelFunc
}

// NewBatchProcessor creates a new batch processor instance
func NewBatchProcessor(sink DocumentSink, queue *queue.BatchQueue, config *config.Config, logger *logrus.Logger) *BatchProcessor {
	if logger == nil {
		logger = logrus.New()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &BatchProcessor{
		sink:   sink,
		queue:  queue,
		config: config,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start subscribes to the queue and starts its workers
func (p *BatchProcessor) Start() {
	p.queue.Subscribe(p.processBatch)
	p.queue.Start(p.config.BatchProcessing.ProcessorCount)
}

// Stop gracefully shuts down the processor; pending batches fail
func (p *BatchProcessor) Stop() {
	p.cancel()
	p.queue.Close()
}

// processBatch delivers a single batch with retry logic
func (p *BatchProcessor) processBatch(batch queue.Batch) error {
	maxRetries := p.config.BatchProcessing.MaxRetries
	delay := time.Duration(p.config.BatchProcessing.RetryDelay) * time.Second
	log := p.logger.WithFields(logrus.Fields{
		"market":     batch.Market,
		"batch_size": len(batch.Rows),
	})

	var err error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			log.Infof("Retrying batch delivery, attempt %d of %d", attempt, maxRetries)
			select {
			case <-p.ctx.Done():
				return fmt.Errorf("processor stopped before batch was delivered: %w", err)
			case <-time.After(delay):
			}
		}

		err = p.sink.AddDocuments(p.ctx, batch.Market, batch.Rows)
		if err == nil {
			log.Debug("Successfully delivered batch")
			return nil
		}

		log.WithError(err).Error("Batch delivery failed")
	}

	return fmt.Errorf("failed to process batch after %d attempts: %w", maxRetries+1, err)
}
