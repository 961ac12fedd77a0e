// Package store fetches candidate rows for a search plan from a content
// store backend.
package store

import (
	"context"

	"propfinder/server/internal/models"
	"propfinder/server/internal/querybuilder"
)

// Store returns the loosely typed rows matching a plan's push-down
// constraints, capped at plan.Limit when positive.
type Store interface {
	Fetch(ctx context.Context, plan querybuilder.Plan) ([]models.Row, error)
}
