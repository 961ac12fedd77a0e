package api

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"propfinder/server/config"
	"propfinder/server/internal/engine"
	apperrors "propfinder/server/internal/errors"
	"propfinder/server/internal/models"
	"propfinder/server/internal/ranking"
	"propfinder/server/internal/scheduler"
)

// Searcher runs listing searches
type Searcher interface {
	Search(ctx context.Context, req engine.Request) (*engine.Result, error)
	SearchAll(ctx context.Context, query string, sort ranking.SortKey, page int) ([]engine.MarketResult, error)
	Shares(ctx context.Context, criteria models.FilterCriteria) ([]engine.ShareGroup, error)
}

// Reindexer starts and reports search index syncs
type Reindexer interface {
	Trigger() (string, error)
	LastJob() (scheduler.Job, bool)
}

type Handler struct {
	searcher  Searcher
	reindexer Reindexer
	catalog   *config.Catalog
	logger    *logrus.Logger
}

// NewHandler creates the HTTP handler. reindexer may be nil when no search
// index is configured.
func NewHandler(searcher Searcher, reindexer Reindexer, catalog *config.Catalog, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	if catalog == nil {
		catalog = config.DefaultCatalog()
	}
	return &Handler{
		searcher:  searcher,
		reindexer: reindexer,
		catalog:   catalog,
		logger:    logger,
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) GetCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalog)
}

// SearchListings serves one page of a market's filtered listings
func (h *Handler) SearchListings(c *gin.Context) {
	market := models.Market(strings.ToLower(c.Param("market")))
	if _, ok := h.catalog.Market(market); !ok || !market.IsValid() {
		h.writeError(c, apperrors.NotFound("unknown market "+string(market)).WithContext("market", market))
		return
	}

	criteria, err := parseCriteria(c, h.catalog, market)
	if err != nil {
		h.writeError(c, err)
		return
	}
	sortKey, page, err := parsePaging(c)
	if err != nil {
		h.writeError(c, err)
		return
	}

	result, err := h.searcher.Search(c.Request.Context(), engine.Request{
		Market:   market,
		Criteria: criteria,
		Sort:     sortKey,
		Page:     page,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// SearchAllMarkets runs a free-text query against every market
func (h *Handler) SearchAllMarkets(c *gin.Context) {
	sortKey, page, err := parsePaging(c)
	if err != nil {
		h.writeError(c, err)
		return
	}

	results, err := h.searcher.SearchAll(c.Request.Context(), c.Query("q"), sortKey, page)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"query":   strings.TrimSpace(c.Query("q")),
		"results": results,
	})
}

// GetShares lists Hyderabad share listings grouped by project
func (h *Handler) GetShares(c *gin.Context) {
	criteria, err := parseCriteria(c, h.catalog, models.MarketHyderabad)
	if err != nil {
		h.writeError(c, err)
		return
	}

	groups, err := h.searcher.Shares(c.Request.Context(), criteria)
	if err != nil {
		h.writeError(c, err)
		return
	}

	total := 0
	for _, g := range groups {
		total += g.Count
	}
	c.JSON(http.StatusOK, gin.H{
		"total_items": total,
		"groups":      groups,
	})
}

// TriggerReindex starts a background search index sync
func (h *Handler) TriggerReindex(c *gin.Context) {
	if h.reindexer == nil {
		h.writeError(c, apperrors.NotFound("search indexing is not configured"))
		return
	}

	jobID, err := h.reindexer.Trigger()
	if errors.Is(err, scheduler.ErrJobRunning) {
		c.JSON(http.StatusConflict, gin.H{"error": "A sync job is already running"})
		return
	}
	if err != nil {
		h.writeError(c, apperrors.Internal("failed to start sync job", err))
		return
	}

	h.logger.WithField("job_id", jobID).Info("Index sync triggered")
	c.JSON(http.StatusAccepted, gin.H{
		"status": "Index sync started",
		"job_id": jobID,
	})
}

// GetReindexStatus reports the most recent sync job
func (h *Handler) GetReindexStatus(c *gin.Context) {
	if h.reindexer == nil {
		h.writeError(c, apperrors.NotFound("search indexing is not configured"))
		return
	}

	job, ok := h.reindexer.LastJob()
	if !ok {
		h.writeError(c, apperrors.NotFound("no sync job has run yet"))
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *Handler) writeError(c *gin.Context, err error) {
	message := err.Error()
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		message = appErr.Message
	}

	log := h.logger.WithError(err).WithField("path", c.FullPath()).WithFields(apperrors.Fields(err))
	if id, ok := c.Get(requestIDKey); ok {
		log = log.WithField("request_id", id)
	}

	switch apperrors.TypeOf(err) {
	case apperrors.ErrorTypeInvalidCriteria:
		c.JSON(http.StatusBadRequest, gin.H{"error": message})
	case apperrors.ErrorTypeNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": message})
	case apperrors.ErrorTypeStoreUnavailable:
		log.Error("Listing store unavailable")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":     "Listings are temporarily unavailable",
			"retryable": apperrors.Retryable(err),
		})
	default:
		log.Error("Request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
