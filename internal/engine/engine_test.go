package engine

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "propfinder/server/internal/errors"
	"propfinder/server/internal/models"
	"propfinder/server/internal/querybuilder"
	"propfinder/server/internal/ranking"
)

// MockStore is a mock implementation of store.Store
type MockStore struct {
	mock.Mock
	delay time.Duration
}

func (m *MockStore) Fetch(ctx context.Context, plan querybuilder.Plan) ([]models.Row, error) {
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	args := m.Called(ctx, plan)
	rows, _ := args.Get(0).([]models.Row)
	return rows, args.Error(1)
}

func forMarket(market models.Market) interface{} {
	return mock.MatchedBy(func(p querybuilder.Plan) bool { return p.Market == market })
}

func newTestEngine(s *MockStore, pageSize int) *Engine {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return New(s, Config{PageSize: pageSize, FetchLimit: 500, FetchTimeout: 50 * time.Millisecond}, logger)
}

func hyderabadRows() []models.Row {
	return []models.Row{
		{"id": "h1", "title": "Skyra Towers", "price": int64(12500000), "property_type": "Apartment/Flat",
			"bedrooms": int64(3), "micro_market": []interface{}{map[string]interface{}{"name": "Kokapet"}},
			"amenities": `["Pool","Gym"]`, "project_name": "Skyra", "landowner_share": int64(1),
			"created_at": "2024-01-01T00:00:00Z"},
		{"id": "h2", "title": "Lake View", "price": int64(45000000), "property_type": "Villa",
			"bedrooms": int64(4), "micro_market": "Gachibowli", "amenities": `["Pool"]`,
			"is_resale": true, "created_at": "2024-03-01T00:00:00Z"},
		{"id": "h3", "title": "Skyra Heights", "price": int64(9000000), "property_type": "Flat",
			"bedrooms": int64(2), "micro_market": "Kokapet", "amenities": `not json`,
			"project_name": "skyra heights", "investor_share": true, "is_featured": true,
			"created_at": "2023-06-01T00:00:00Z"},
		{"id": "h4", "title": "Plot 7", "price": int64(5000000), "property_type": "Plot",
			"micro_market": "Narsingi", "created_at": "2024-02-01T00:00:00Z"},
	}
}

func resultIDs(res *Result) []string {
	ids := make([]string, 0, len(res.Items))
	for _, l := range res.Items {
		ids = append(ids, l.ID)
	}
	return ids
}

func TestSearch_Pipeline(t *testing.T) {
	s := &MockStore{}
	e := newTestEngine(s, 20)

	criteria := models.FilterCriteria{
		PropertyTypes: []string{"apartment"},
		AmenitiesAll:  []string{"Pool"},
	}
	s.On("Fetch", mock.Anything, querybuilder.Build(models.MarketHyderabad, criteria, 500)).
		Return(hyderabadRows(), nil).Once()

	res, err := e.Search(context.Background(), Request{Market: models.MarketHyderabad, Criteria: criteria})
	require.NoError(t, err)
	assert.Equal(t, []string{"h1"}, resultIDs(res), "h3 has unreadable amenities and is treated as having none")
	assert.Equal(t, 1, res.TotalItems)
	assert.Equal(t, 1, res.TotalPages)
	assert.Equal(t, 1, res.CurrentPage)
	assert.Equal(t, 20, res.PageSize)
	assert.Equal(t, models.MarketHyderabad, res.Market)
	assert.False(t, res.Truncated)
	s.AssertExpectations(t)
}

func TestSearch_FlagsFetchLimit(t *testing.T) {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	tests := []struct {
		name      string
		limit     int
		truncated bool
	}{
		{name: "limit reached", limit: 4, truncated: true},
		{name: "below limit", limit: 5, truncated: false},
		{name: "no limit", limit: 0, truncated: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &MockStore{}
			e := New(s, Config{PageSize: 20, FetchLimit: tt.limit, FetchTimeout: 50 * time.Millisecond}, logger)
			s.On("Fetch", mock.Anything, forMarket(models.MarketHyderabad)).Return(hyderabadRows(), nil).Once()

			res, err := e.Search(context.Background(), Request{Market: models.MarketHyderabad})
			require.NoError(t, err)
			assert.Equal(t, tt.truncated, res.Truncated)
			assert.Equal(t, 4, res.TotalItems)
		})
	}
}

func TestSearch_DefaultSortAndPaging(t *testing.T) {
	s := &MockStore{}
	e := newTestEngine(s, 2)
	s.On("Fetch", mock.Anything, forMarket(models.MarketHyderabad)).Return(hyderabadRows(), nil)

	res, err := e.Search(context.Background(), Request{Market: models.MarketHyderabad})
	require.NoError(t, err)
	assert.Equal(t, []string{"h3", "h2"}, resultIDs(res), "featured first, then newest")
	assert.Equal(t, 4, res.TotalItems)
	assert.Equal(t, 2, res.TotalPages)

	res, err = e.Search(context.Background(), Request{Market: models.MarketHyderabad, Page: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"h4", "h1"}, resultIDs(res))

	res, err = e.Search(context.Background(), Request{Market: models.MarketHyderabad, Page: 3})
	require.NoError(t, err)
	assert.Empty(t, res.Items)
	assert.Equal(t, 4, res.TotalItems)

	res, err = e.Search(context.Background(), Request{Market: models.MarketHyderabad, Sort: ranking.PriceAscending})
	require.NoError(t, err)
	assert.Equal(t, []string{"h4", "h3"}, resultIDs(res))
}

func TestSearch_NoMatchIsNotAnError(t *testing.T) {
	s := &MockStore{}
	e := newTestEngine(s, 20)
	s.On("Fetch", mock.Anything, mock.Anything).Return([]models.Row{}, nil)

	res, err := e.Search(context.Background(), Request{
		Market:   models.MarketDubai,
		Criteria: models.FilterCriteria{FreeTextQuery: "palm jumeirah"},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, res.TotalItems)
	assert.Equal(t, 0, res.TotalPages)
	assert.Empty(t, res.Items)
}

func TestSearch_StoreFailure(t *testing.T) {
	s := &MockStore{}
	e := newTestEngine(s, 20)
	s.On("Fetch", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))

	_, err := e.Search(context.Background(), Request{Market: models.MarketGoa})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrorTypeStoreUnavailable))
	assert.Contains(t, err.Error(), "connection refused")
}

func TestSearch_StoreTimeout(t *testing.T) {
	s := &MockStore{delay: 300 * time.Millisecond}
	e := newTestEngine(s, 20)
	s.On("Fetch", mock.Anything, mock.Anything).Return(hyderabadRows(), nil).Maybe()

	start := time.Now()
	_, err := e.Search(context.Background(), Request{Market: models.MarketHyderabad})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrorTypeStoreUnavailable))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 250*time.Millisecond, "the engine does not wait for a slow store")
}

func TestSearch_InvalidCriteria(t *testing.T) {
	tests := []struct {
		name string
		req  Request
	}{
		{name: "Unknown market", req: Request{Market: "paris"}},
		{name: "Negative page", req: Request{Market: models.MarketGoa, Page: -1}},
		{name: "Unknown sort", req: Request{Market: models.MarketGoa, Sort: ranking.SortKey(42)}},
		{name: "Negative price", req: Request{Market: models.MarketGoa, Criteria: models.FilterCriteria{PriceRange: &models.PriceRange{Min: -1}}}},
		{name: "Inverted price", req: Request{Market: models.MarketGoa, Criteria: models.FilterCriteria{PriceRange: &models.PriceRange{Min: 10, Max: func() *int64 { v := int64(5); return &v }()}}}},
		{name: "Negative bedrooms", req: Request{Market: models.MarketGoa, Criteria: models.FilterCriteria{BedroomsIn: []int{-2}}}},
		{name: "Region outside goa", req: Request{Market: models.MarketDubai, Criteria: models.FilterCriteria{Region: "North Goa"}}},
		{name: "Shares outside hyderabad", req: Request{Market: models.MarketDubai, Criteria: models.FilterCriteria{ShareKinds: []models.ShareKind{models.ShareResale}}}},
		{name: "Unknown share kind", req: Request{Market: models.MarketHyderabad, Criteria: models.FilterCriteria{ShareKinds: []models.ShareKind{"partner"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &MockStore{}
			e := newTestEngine(s, 20)

			_, err := e.Search(context.Background(), tt.req)
			require.Error(t, err)
			assert.True(t, apperrors.Is(err, apperrors.ErrorTypeInvalidCriteria), fmt.Sprint(err))
			s.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything)
		})
	}
}

func TestSearchAll(t *testing.T) {
	s := &MockStore{}
	e := newTestEngine(s, 20)

	s.On("Fetch", mock.Anything, forMarket(models.MarketHyderabad)).Return(hyderabadRows(), nil)
	s.On("Fetch", mock.Anything, forMarket(models.MarketGoa)).Return(nil, errors.New("goa store down"))
	s.On("Fetch", mock.Anything, forMarket(models.MarketDubai)).Return([]models.Row{
		{"id": "d1", "title": "Skyra Residences", "community": "Dubai Hills"},
		{"id": "d2", "title": "Marina Gate", "community": "Dubai Marina"},
	}, nil)

	results, err := e.SearchAll(context.Background(), "skyra", ranking.Default, 1)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, models.MarketHyderabad, results[0].Market)
	assert.ElementsMatch(t, []string{"h1", "h3"}, resultIDs(results[0].Result))

	assert.Equal(t, models.MarketGoa, results[1].Market)
	assert.Nil(t, results[1].Result)
	assert.Contains(t, results[1].Error, "goa store down")
	assert.True(t, results[1].Retryable)

	assert.Equal(t, []string{"d1"}, resultIDs(results[2].Result))
}

func TestSearchAll_Errors(t *testing.T) {
	s := &MockStore{}
	e := newTestEngine(s, 20)

	_, err := e.SearchAll(context.Background(), "  ", ranking.Default, 1)
	assert.True(t, apperrors.Is(err, apperrors.ErrorTypeInvalidCriteria))

	s.On("Fetch", mock.Anything, mock.Anything).Return(nil, errors.New("down"))
	_, err = e.SearchAll(context.Background(), "villa", ranking.Default, 1)
	assert.True(t, apperrors.Is(err, apperrors.ErrorTypeStoreUnavailable))
}

func TestShares(t *testing.T) {
	s := &MockStore{}
	e := newTestEngine(s, 20)
	s.On("Fetch", mock.Anything, forMarket(models.MarketHyderabad)).Return(hyderabadRows(), nil)

	groups, err := e.Shares(context.Background(), models.FilterCriteria{})
	require.NoError(t, err)
	require.Len(t, groups, 3)

	assert.Equal(t, "Skyra", groups[0].Project)
	assert.Equal(t, "skyra heights", groups[1].Project)
	assert.Equal(t, models.IndependentProject, groups[2].Project)
	assert.Equal(t, 1, groups[2].Count)
	assert.Equal(t, "h2", groups[2].Listings[0].ID)

	groups, err = e.Shares(context.Background(), models.FilterCriteria{ShareKinds: []models.ShareKind{models.ShareInvestor}})
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "h3", groups[0].Listings[0].ID)
}

func TestGroupByProject_IndependentLast(t *testing.T) {
	name := func(s string) *string { return &s }
	groups := groupByProject([]models.Listing{
		{ID: "1"},
		{ID: "2", ProjectName: name("aurum")},
		{ID: "3", ProjectName: name("Zenith")},
		{ID: "4", ProjectName: name("Brigade")},
		{ID: "5"},
	})

	projects := make([]string, 0, len(groups))
	for _, g := range groups {
		projects = append(projects, g.Project)
	}
	assert.Equal(t, []string{"aurum", "Brigade", "Zenith", "Independent"}, projects)
	assert.Equal(t, 2, groups[3].Count)
}
