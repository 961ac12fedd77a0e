package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"propfinder/server/internal/models"
	"propfinder/server/internal/querybuilder"
)

// SQLStore evaluates plans against the relational market tables
type SQLStore struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewSQLStore(db *gorm.DB, logger *logrus.Logger) *SQLStore {
	if logger == nil {
		logger = logrus.New()
	}
	return &SQLStore{db: db, logger: logger}
}

func (s *SQLStore) Fetch(ctx context.Context, plan querybuilder.Plan) ([]models.Row, error) {
	if plan.Table == "" {
		return nil, fmt.Errorf("no table for market %q", plan.Market)
	}

	query := s.db.WithContext(ctx).Table(plan.Table)
	for _, c := range plan.Constraints {
		query = s.apply(query, c)
	}
	// When the row cap truncates, keep the rows the default ranking would show first
	query = query.Order("is_featured DESC").Order("created_at DESC")
	if plan.Limit > 0 {
		query = query.Limit(plan.Limit)
	}

	var raw []map[string]interface{}
	if err := query.Find(&raw).Error; err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", plan.Table, err)
	}

	s.logger.WithFields(logrus.Fields{
		"table":       plan.Table,
		"constraints": plan.Describe(),
		"rows":        len(raw),
	}).Debug("Fetched candidate rows")

	rows := make([]models.Row, 0, len(raw))
	for _, r := range raw {
		rows = append(rows, models.Row(r))
	}
	return rows, nil
}

func (s *SQLStore) apply(query *gorm.DB, c querybuilder.Constraint) *gorm.DB {
	col := c.Column()
	switch c.Kind {
	case querybuilder.KindIn:
		return query.Where(col+" IN ?", c.Ints)
	case querybuilder.KindRange:
		query = query.Where(col+" >= ?", c.Min)
		if c.Max != nil {
			query = query.Where(col+" <= ?", *c.Max)
		}
		return query
	case querybuilder.KindEqualFold:
		// SQL TRIM only strips spaces, so padded values are matched by
		// containment and the exact comparison happens in memory.
		return query.Where(foldExpr(col)+" LIKE ?"+s.escapeClause(), "%"+escapeLike(strings.ToLower(strings.TrimSpace(c.Value)))+"%")
	case querybuilder.KindNotNull:
		return query.Where(col + " IS NOT NULL")
	case querybuilder.KindAnyTrue:
		clauses := make([]string, 0, len(c.Columns))
		args := make([]interface{}, 0, len(c.Columns))
		for _, column := range c.Columns {
			clauses = append(clauses, column+" = ?")
			args = append(args, true)
		}
		return query.Where("("+strings.Join(clauses, " OR ")+")", args...)
	case querybuilder.KindContainsAny:
		var (
			clauses []string
			args    []interface{}
		)
		for _, column := range c.Columns {
			for _, term := range c.Terms {
				clauses = append(clauses, foldExpr(column)+" LIKE ?"+s.escapeClause())
				args = append(args, "%"+escapeLike(strings.ToLower(term))+"%")
			}
		}
		if len(clauses) == 0 {
			return query
		}
		return query.Where("("+strings.Join(clauses, " OR ")+")", args...)
	}
	s.logger.WithField("kind", c.Kind.String()).Warn("Ignoring unsupported constraint")
	return query
}

// foldExpr lower-cases a column for comparison with an ASCII term. SQLite's
// LOWER only folds ASCII, so the non-ASCII letters Go folds onto ASCII ones
// (KELVIN SIGN, LONG S, CAPITAL I WITH DOT) are mapped first.
func foldExpr(col string) string {
	return "LOWER(REPLACE(REPLACE(REPLACE(" + col + ", '\u212a', 'k'), '\u017f', 's'), '\u0130', 'i'))"
}

// escapeClause names the LIKE escape character. MySQL already treats the
// backslash as one.
func (s *SQLStore) escapeClause() string {
	if s.db.Dialector.Name() == "sqlite" {
		return ` ESCAPE '\'`
	}
	return ""
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
