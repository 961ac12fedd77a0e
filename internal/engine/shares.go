package engine

import (
	"context"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"propfinder/server/internal/filter"
	"propfinder/server/internal/models"
	"propfinder/server/internal/querybuilder"
	"propfinder/server/internal/ranking"
)

var allShareKinds = []models.ShareKind{
	models.ShareLandowner,
	models.ShareInvestor,
	models.ShareResale,
}

// ShareGroup collects the share listings of one project
type ShareGroup struct {
	Project  string           `json:"project"`
	Count    int              `json:"count"`
	Listings []models.Listing `json:"listings"`
}

// Shares returns the Hyderabad listings carrying a share flag, grouped by
// project name. Listings without a project fall into the Independent group,
// which always comes last. Without explicit share kinds every flag counts.
func (e *Engine) Shares(ctx context.Context, criteria models.FilterCriteria) ([]ShareGroup, error) {
	if len(criteria.ShareKinds) == 0 {
		criteria.ShareKinds = allShareKinds
	}
	if err := validateCriteria(models.MarketHyderabad, criteria); err != nil {
		return nil, err
	}

	plan := querybuilder.Build(models.MarketHyderabad, criteria, e.config.FetchLimit)
	candidates, truncated, err := e.fetch(ctx, plan)
	if err != nil {
		return nil, err
	}

	matched := ranking.Sort(filter.Apply(candidates, criteria), ranking.Default)
	groups := groupByProject(matched)

	e.logger.WithFields(logrus.Fields{
		"fetched":   len(candidates),
		"truncated": truncated,
		"matched":   len(matched),
		"groups":    len(groups),
	}).Info("Share listings grouped")
	return groups, nil
}

func groupByProject(listings []models.Listing) []ShareGroup {
	index := make(map[string]int)
	groups := make([]ShareGroup, 0)
	for _, l := range listings {
		key := l.ProjectKey()
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, ShareGroup{Project: key})
		}
		groups[i].Listings = append(groups[i].Listings, l)
		groups[i].Count++
	}

	sort.SliceStable(groups, func(i, j int) bool {
		a, b := groups[i].Project, groups[j].Project
		if (a == models.IndependentProject) != (b == models.IndependentProject) {
			return b == models.IndependentProject
		}
		return strings.ToLower(a) < strings.ToLower(b)
	})
	return groups
}
