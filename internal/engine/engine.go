// Package engine runs the listing search pipeline: build a store plan,
// fetch candidates, normalize, filter, rank and paginate.
package engine

import (
	"context"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	apperrors "propfinder/server/internal/errors"
	"propfinder/server/internal/filter"
	"propfinder/server/internal/models"
	"propfinder/server/internal/normalize"
	"propfinder/server/internal/pagination"
	"propfinder/server/internal/querybuilder"
	"propfinder/server/internal/ranking"
	"propfinder/server/internal/store"
)

type Config struct {
	PageSize     int
	FetchLimit   int
	FetchTimeout time.Duration
	// Markets searched by SearchAll, in result order
	Markets []models.Market
}

// Request is one market search
type Request struct {
	Market   models.Market
	Criteria models.FilterCriteria
	Sort     ranking.SortKey
	Page     int
}

// Result is the page of listings handed to the renderer
type Result struct {
	Market models.Market `json:"market"`
	// Truncated is set when the store returned FetchLimit rows, so matches
	// beyond the limit may be missing.
	Truncated bool `json:"truncated,omitempty"`
	pagination.Page
}

// Engine is safe for concurrent use; it keeps no state between calls.
type Engine struct {
	store      store.Store
	normalizer *normalize.Normalizer
	config     Config
	logger     *logrus.Logger
}

func New(s store.Store, cfg Config, logger *logrus.Logger) *Engine {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	if cfg.PageSize < 1 {
		cfg.PageSize = pagination.DefaultPageSize
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 5 * time.Second
	}
	if len(cfg.Markets) == 0 {
		cfg.Markets = models.Markets
	}
	return &Engine{
		store:      s,
		normalizer: normalize.NewNormalizer(logger),
		config:     cfg,
		logger:     logger,
	}
}

// Search returns one page of the listings of a market matching the
// request criteria. An empty match is a successful result.
func (e *Engine) Search(ctx context.Context, req Request) (*Result, error) {
	if req.Page == 0 {
		req.Page = 1
	}
	if err := validate(req); err != nil {
		return nil, err
	}

	start := time.Now()
	plan := querybuilder.Build(req.Market, req.Criteria, e.config.FetchLimit)

	candidates, truncated, err := e.fetch(ctx, plan)
	if err != nil {
		return nil, err
	}

	matched := filter.Apply(candidates, req.Criteria)
	ranking.Sort(matched, req.Sort)

	page, err := pagination.Paginate(matched, e.config.PageSize, req.Page)
	if err != nil {
		return nil, apperrors.InvalidCriteria("%v", err)
	}

	e.logger.WithFields(logrus.Fields{
		"market":      req.Market,
		"constraints": plan.Describe(),
		"residual":    plan.Residual,
		"fetched":     len(candidates),
		"truncated":   truncated,
		"matched":     len(matched),
		"sort":        req.Sort.String(),
		"page":        req.Page,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("Search completed")

	return &Result{Market: req.Market, Truncated: truncated, Page: page}, nil
}

// fetch loads and normalizes the candidates of a plan. It gives up once the
// configured timeout passes, even if the store ignores its context.
// truncated reports that the store stopped at the plan limit.
func (e *Engine) fetch(ctx context.Context, plan querybuilder.Plan) ([]models.Listing, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, e.config.FetchTimeout)
	defer cancel()

	type result struct {
		rows []models.Row
		err  error
	}
	done := make(chan result, 1)
	go func() {
		rows, err := e.store.Fetch(ctx, plan)
		done <- result{rows: rows, err: err}
	}()

	var r result
	select {
	case <-ctx.Done():
		r.err = ctx.Err()
	case r = <-done:
	}

	if r.err != nil {
		e.logger.WithFields(logrus.Fields{
			"market": plan.Market,
			"table":  plan.Table,
		}).WithError(r.err).Error("Content store fetch failed")
		return nil, false, apperrors.StoreUnavailable("failed to fetch listings", r.err).
			WithContext("market", plan.Market)
	}

	truncated := plan.Limit > 0 && len(r.rows) >= plan.Limit
	if truncated {
		e.logger.WithFields(logrus.Fields{
			"market": plan.Market,
			"limit":  plan.Limit,
		}).Warn("Fetch hit the row limit, results may be incomplete")
	}
	return e.normalizer.NormalizeAll(plan.Market, r.rows), truncated, nil
}
