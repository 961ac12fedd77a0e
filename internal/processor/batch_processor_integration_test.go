package processor

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propfinder/server/config"
	"propfinder/server/internal/models"
	"propfinder/server/internal/queue"
)

// memorySink records delivered rows per market and fails the first
// failures deliveries.
type memorySink struct {
	mu       sync.Mutex
	failures int
	rows     map[models.Market][]models.Row
}

func (s *memorySink) AddDocuments(ctx context.Context, market models.Market, rows []models.Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failures > 0 {
		s.failures--
		return fmt.Errorf("transient failure")
	}
	if s.rows == nil {
		s.rows = make(map[models.Market][]models.Row)
	}
	s.rows[market] = append(s.rows[market], rows...)
	return nil
}

func (s *memorySink) count(market models.Market) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows[market])
}

func TestBatchProcessingIntegration(t *testing.T) {
	// Setup
	cfg := &config.Config{}
	cfg.BatchProcessing.ProcessorCount = 2
	cfg.BatchProcessing.MaxRetries = 3
	cfg.BatchProcessing.MaxBatchSize = 10
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	sink := &memorySink{failures: 2}
	batchQueue := queue.NewBatchQueue(4, logger)
	processor := NewBatchProcessor(sink, batchQueue, cfg, logger)

	processor.Start()
	defer processor.Stop()

	// Push 5 batches per market
	var wg sync.WaitGroup
	var failed int
	var mu sync.Mutex
	for _, market := range []models.Market{models.MarketGoa, models.MarketDubai} {
		for b := 0; b < 5; b++ {
			rows := make([]models.Row, cfg.BatchProcessing.MaxBatchSize)
			for i := range rows {
				rows[i] = models.Row{"id": fmt.Sprintf("%s-%d-%d", market, b, i)}
			}
			wg.Add(1)
			batch := queue.NewBatch(market, rows, func(err error) {
				if err != nil {
					mu.Lock()
					failed++
					mu.Unlock()
				}
				wg.Done()
			})
			require.NoError(t, batchQueue.PushWait(context.Background(), batch))
		}
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("batches were not processed in time")
	}

	assert.Equal(t, 0, failed)
	assert.Equal(t, 50, sink.count(models.MarketGoa))
	assert.Equal(t, 50, sink.count(models.MarketDubai))
}
