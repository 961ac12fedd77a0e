package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/meilisearch/meilisearch-go"
	"github.com/sirupsen/logrus"

	"propfinder/server/internal/models"
	"propfinder/server/internal/querybuilder"
)

// defaultMeiliLimit matches the engine's default maxTotalHits
const defaultMeiliLimit = 1000

// MeiliIndex is the part of *meilisearch.Index the store uses
type MeiliIndex interface {
	Search(query string, request *meilisearch.SearchRequest) (*meilisearch.SearchResponse, error)
	AddDocuments(documentsPtr interface{}, primaryKey ...string) (*meilisearch.TaskInfo, error)
	UpdateFilterableAttributes(request *[]string) (*meilisearch.TaskInfo, error)
	UpdateSortableAttributes(request *[]string) (*meilisearch.TaskInfo, error)
}

// MeiliStore serves plans from one Meilisearch index per market. Constraints
// Meilisearch cannot express are left out of the filter, which only widens
// the candidate set.
type MeiliStore struct {
	indexes map[models.Market]string
	open    func(uid string) MeiliIndex
	logger  *logrus.Logger
}

func NewMeiliStore(client *meilisearch.Client, indexes map[models.Market]string, logger *logrus.Logger) *MeiliStore {
	return newMeiliStore(func(uid string) MeiliIndex { return client.Index(uid) }, indexes, logger)
}

func newMeiliStore(open func(uid string) MeiliIndex, indexes map[models.Market]string, logger *logrus.Logger) *MeiliStore {
	if logger == nil {
		logger = logrus.New()
	}
	return &MeiliStore{indexes: indexes, open: open, logger: logger}
}

func (s *MeiliStore) index(market models.Market) (MeiliIndex, error) {
	uid, ok := s.indexes[market]
	if !ok || uid == "" {
		return nil, fmt.Errorf("no search index configured for market %q", market)
	}
	return s.open(uid), nil
}

func (s *MeiliStore) Fetch(ctx context.Context, plan querybuilder.Plan) ([]models.Row, error) {
	idx, err := s.index(plan.Market)
	if err != nil {
		return nil, err
	}

	limit := int64(plan.Limit)
	if limit <= 0 {
		limit = defaultMeiliLimit
	}
	req := &meilisearch.SearchRequest{
		Limit: limit,
		Sort:  []string{"is_featured:desc", "created_at:desc"},
	}
	if filter := MeiliFilter(plan); filter != "" {
		req.Filter = filter
	}

	type result struct {
		res *meilisearch.SearchResponse
		err error
	}
	done := make(chan result, 1)
	go func() {
		res, err := idx.Search("", req)
		done <- result{res: res, err: err}
	}()

	var r result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r = <-done:
	}
	if r.err != nil {
		return nil, fmt.Errorf("meilisearch search failed: %w", r.err)
	}

	rows := make([]models.Row, 0, len(r.res.Hits))
	for _, hit := range r.res.Hits {
		if m, ok := hit.(map[string]interface{}); ok {
			rows = append(rows, models.Row(m))
		}
	}

	s.logger.WithFields(logrus.Fields{
		"market": plan.Market,
		"filter": req.Filter,
		"rows":   len(rows),
	}).Debug("Fetched candidate documents")
	return rows, nil
}

// EnsureSettings declares the attributes plans filter and sort on
func (s *MeiliStore) EnsureSettings(market models.Market) error {
	idx, err := s.index(market)
	if err != nil {
		return err
	}
	filterable := []string{
		"price", "bedrooms", "district",
		"possession_status", "completion_status",
		"landowner_share", "investor_share", "is_resale",
	}
	if _, err := idx.UpdateFilterableAttributes(&filterable); err != nil {
		return fmt.Errorf("failed to update filterable attributes: %w", err)
	}
	sortable := []string{"is_featured", "created_at", "price"}
	if _, err := idx.UpdateSortableAttributes(&sortable); err != nil {
		return fmt.Errorf("failed to update sortable attributes: %w", err)
	}
	return nil
}

// AddDocuments enqueues rows for indexing under the market's index
func (s *MeiliStore) AddDocuments(ctx context.Context, market models.Market, rows []models.Row) error {
	if len(rows) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	idx, err := s.index(market)
	if err != nil {
		return err
	}
	task, err := idx.AddDocuments(indexDocuments(rows), "id")
	if err != nil {
		return fmt.Errorf("failed to add documents: %w", err)
	}
	s.logger.WithFields(logrus.Fields{
		"market":    market,
		"documents": len(rows),
		"task_uid":  task.TaskUID,
	}).Debug("Enqueued documents for indexing")
	return nil
}

// boolColumns are stored as integers by SQL backends. Meilisearch filters
// compare booleans as "true"/"false", so they are indexed as real booleans.
var boolColumns = []string{"is_featured", "landowner_share", "investor_share", "is_resale"}

// indexDocuments copies store rows into index documents with typed flag
// columns and text in place of raw bytes.
func indexDocuments(rows []models.Row) []map[string]interface{} {
	docs := make([]map[string]interface{}, 0, len(rows))
	for _, row := range rows {
		doc := make(map[string]interface{}, len(row))
		for k, v := range row {
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			doc[k] = v
		}
		for _, col := range boolColumns {
			if v, ok := doc[col]; ok {
				doc[col] = toBool(v)
			}
		}
		docs = append(docs, doc)
	}
	return docs
}

func toBool(v interface{}) bool {
	switch b := v.(type) {
	case bool:
		return b
	case int64:
		return b != 0
	case int:
		return b != 0
	case int32:
		return b != 0
	case float64:
		return b != 0
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(b))
		return err == nil && parsed
	}
	return false
}

// MeiliFilter translates the constraints Meilisearch can evaluate exactly.
// Substring and trimmed equality constraints have no Meilisearch equivalent
// and are skipped.
func MeiliFilter(plan querybuilder.Plan) string {
	var parts []string
	for _, c := range plan.Constraints {
		col := c.Column()
		switch c.Kind {
		case querybuilder.KindIn:
			values := make([]string, 0, len(c.Ints))
			for _, v := range c.Ints {
				values = append(values, fmt.Sprint(v))
			}
			parts = append(parts, fmt.Sprintf("%s IN [%s]", col, strings.Join(values, ", ")))
		case querybuilder.KindRange:
			parts = append(parts, fmt.Sprintf("%s >= %d", col, c.Min))
			if c.Max != nil {
				parts = append(parts, fmt.Sprintf("%s <= %d", col, *c.Max))
			}
		case querybuilder.KindNotNull:
			parts = append(parts, col+" IS NOT NULL")
		case querybuilder.KindAnyTrue:
			ors := make([]string, 0, len(c.Columns))
			for _, column := range c.Columns {
				ors = append(ors, column+" = true")
			}
			parts = append(parts, "("+strings.Join(ors, " OR ")+")")
		}
	}
	return strings.Join(parts, " AND ")
}
