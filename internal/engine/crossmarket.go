package engine

import (
	"context"
	"strings"

	apperrors "propfinder/server/internal/errors"
	"propfinder/server/internal/models"
	"propfinder/server/internal/ranking"
)

// MarketResult is the outcome of one market within a cross-market search.
// Exactly one of Result and Error is set.
type MarketResult struct {
	Market    models.Market `json:"market"`
	Result    *Result       `json:"result,omitempty"`
	Error     string        `json:"error,omitempty"`
	Retryable bool          `json:"retryable,omitempty"`
}

// SearchAll runs the same free-text query against every configured market
// independently. Results are not merged; a failing market is reported in
// its own entry. It only fails when every market failed.
func (e *Engine) SearchAll(ctx context.Context, query string, sort ranking.SortKey, page int) ([]MarketResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperrors.InvalidCriteria("search query must not be empty")
	}

	results := make([]MarketResult, 0, len(e.config.Markets))
	var lastErr error
	for _, market := range e.config.Markets {
		res, err := e.Search(ctx, Request{
			Market:   market,
			Criteria: models.FilterCriteria{FreeTextQuery: query},
			Sort:     sort,
			Page:     page,
		})
		if err != nil {
			if apperrors.Is(err, apperrors.ErrorTypeInvalidCriteria) {
				return nil, err
			}
			lastErr = err
			results = append(results, MarketResult{
				Market:    market,
				Error:     err.Error(),
				Retryable: apperrors.Retryable(err),
			})
			continue
		}
		results = append(results, MarketResult{Market: market, Result: res})
	}

	if len(results) > 0 && allFailed(results) {
		return nil, lastErr
	}
	return results, nil
}

func allFailed(results []MarketResult) bool {
	for _, r := range results {
		if r.Result != nil {
			return false
		}
	}
	return true
}
