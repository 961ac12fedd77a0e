package indexing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"propfinder/server/internal/models"
	"propfinder/server/internal/queue"
)

// ErrSyncInProgress is returned when a sync is requested while another runs
var ErrSyncInProgress = errors.New("index sync already in progress")

// RowSource pages through the rows of a market table
type RowSource interface {
	CountRows(ctx context.Context, market models.Market) (int64, error)
	ScanRows(ctx context.Context, market models.Market, offset, limit int) ([]models.Row, error)
}

// Invalidator drops cached fetch results for a market
type Invalidator interface {
	Invalidate(ctx context.Context, market models.Market) (int, error)
}

// Preparer readies a market's index before documents arrive
type Preparer interface {
	EnsureSettings(market models.Market) error
}

// SyncReport summarises one market sync
type SyncReport struct {
	Market      models.Market `json:"market"`
	Rows        int           `json:"rows"`
	Batches     int           `json:"batches"`
	Failed      int           `json:"failed_batches"`
	Invalidated int           `json:"invalidated_keys"`
	Duration    time.Duration `json:"duration"`
}

// Syncer copies store rows into the search index through the batch queue
type Syncer struct {
	source      RowSource
	queue       *queue.BatchQueue
	batchSize   int
	invalidator Invalidator
	preparer    Preparer
	logger      *logrus.Logger
	running     atomic.Bool
}

// NewSyncer creates a syncer that pushes batches of batchSize rows
func NewSyncer(source RowSource, q *queue.BatchQueue, batchSize int, logger *logrus.Logger) *Syncer {
	if logger == nil {
		logger = logrus.New()
	}
	if batchSize < 1 {
		batchSize = 100
	}
	return &Syncer{
		source:    source,
		queue:     q,
		batchSize: batchSize,
		logger:    logger,
	}
}

// WithInvalidator sets the cache dropped after each market sync
func (s *Syncer) WithInvalidator(inv Invalidator) *Syncer {
	s.invalidator = inv
	return s
}

// WithPreparer sets the index preparation step run before each market sync
func (s *Syncer) WithPreparer(p Preparer) *Syncer {
	s.preparer = p
	return s
}

// SyncMarket copies a single market
func (s *Syncer) SyncMarket(ctx context.Context, market models.Market) (SyncReport, error) {
	if !s.running.CompareAndSwap(false, true) {
		return SyncReport{Market: market}, ErrSyncInProgress
	}
	defer s.running.Store(false)
	return s.syncMarket(ctx, market)
}

// SyncAll copies every given market in order. A failed market does not stop
// the others; the returned error joins the failures.
func (s *Syncer) SyncAll(ctx context.Context, markets []models.Market) ([]SyncReport, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrSyncInProgress
	}
	defer s.running.Store(false)

	reports := make([]SyncReport, 0, len(markets))
	var errs []error
	for _, market := range markets {
		report, err := s.syncMarket(ctx, market)
		reports = append(reports, report)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", market, err))
		}
		if ctx.Err() != nil {
			break
		}
	}
	return reports, errors.Join(errs...)
}

// Running reports whether a sync is in progress
func (s *Syncer) Running() bool {
	return s.running.Load()
}

func (s *Syncer) syncMarket(ctx context.Context, market models.Market) (SyncReport, error) {
	start := time.Now()
	report := SyncReport{Market: market}
	log := s.logger.WithField("market", market)

	if s.preparer != nil {
		if err := s.preparer.EnsureSettings(market); err != nil {
			return report, fmt.Errorf("failed to prepare index: %w", err)
		}
	}

	total, err := s.source.CountRows(ctx, market)
	if err != nil {
		return report, fmt.Errorf("failed to count rows: %w", err)
	}
	log.WithField("total", total).Info("Starting index sync")

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		failed int
	)
	onDone := func(err error) {
		if err != nil {
			mu.Lock()
			failed++
			mu.Unlock()
		}
		wg.Done()
	}

	var pushErr error
	for offset := 0; int64(offset) < total; offset += s.batchSize {
		rows, err := s.source.ScanRows(ctx, market, offset, s.batchSize)
		if err != nil {
			pushErr = fmt.Errorf("failed to scan rows at offset %d: %w", offset, err)
			break
		}
		if len(rows) == 0 {
			break
		}

		wg.Add(1)
		if err := s.queue.PushWait(ctx, queue.NewBatch(market, rows, onDone)); err != nil {
			wg.Done()
			pushErr = fmt.Errorf("failed to queue batch: %w", err)
			break
		}
		report.Rows += len(rows)
		report.Batches++
	}

	waited := make(chan struct{})
	go func() {
		wg.Wait()
		close(waited)
	}()
	select {
	case <-waited:
	case <-ctx.Done():
		if pushErr == nil {
			pushErr = ctx.Err()
		}
	}

	mu.Lock()
	report.Failed = failed
	mu.Unlock()

	if s.invalidator != nil && report.Batches > report.Failed {
		n, err := s.invalidator.Invalidate(ctx, market)
		if err != nil {
			log.WithError(err).Warn("Failed to invalidate cached results")
		}
		report.Invalidated = n
	}

	report.Duration = time.Since(start)
	log.WithFields(logrus.Fields{
		"rows":        report.Rows,
		"batches":     report.Batches,
		"failed":      report.Failed,
		"invalidated": report.Invalidated,
		"duration":    report.Duration,
	}).Info("Index sync finished")

	if pushErr != nil {
		return report, pushErr
	}
	if report.Failed > 0 {
		return report, fmt.Errorf("failed to index %d of %d batches", report.Failed, report.Batches)
	}
	return report, nil
}
