package querybuilder

import (
	"fmt"
	"strings"

	"propfinder/server/internal/models"
)

// Kind is the comparison a store applies for a constraint
type Kind int

const (
	// KindIn matches rows whose column equals one of Ints
	KindIn Kind = iota
	// KindRange matches Min <= column and, when Max is set, column <= Max
	KindRange
	// KindEqualFold matches a case-insensitive, whitespace-trimmed equality on Value.
	// Stores may widen it to a containment match.
	KindEqualFold
	// KindContainsAny matches when any of Columns contains any of Terms, ignoring case
	KindContainsAny
	// KindNotNull matches rows where the column holds a value
	KindNotNull
	// KindAnyTrue matches rows where at least one of Columns is true
	KindAnyTrue
)

var kindNames = map[Kind]string{
	KindIn:          "in",
	KindRange:       "range",
	KindEqualFold:   "equal_fold",
	KindContainsAny: "contains_any",
	KindNotNull:     "not_null",
	KindAnyTrue:     "any_true",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Constraint is one predicate pushed down to the content store. Only the
// fields relevant to Kind are set.
type Constraint struct {
	Kind    Kind
	Columns []string
	Value   string
	Ints    []int
	Terms   []string
	Min     int64
	Max     *int64
}

// Column returns the single column a constraint applies to
func (c Constraint) Column() string {
	if len(c.Columns) == 0 {
		return ""
	}
	return c.Columns[0]
}

func (c Constraint) String() string {
	cols := strings.Join(c.Columns, "|")
	switch c.Kind {
	case KindIn:
		return fmt.Sprintf("%s in %v", cols, c.Ints)
	case KindRange:
		if c.Max == nil {
			return fmt.Sprintf("%s >= %d", cols, c.Min)
		}
		return fmt.Sprintf("%s in [%d, %d]", cols, c.Min, *c.Max)
	case KindEqualFold:
		return fmt.Sprintf("%s =~ %q", cols, c.Value)
	case KindContainsAny:
		return fmt.Sprintf("%s contains any %q", cols, c.Terms)
	case KindNotNull:
		return fmt.Sprintf("%s not null", cols)
	case KindAnyTrue:
		return fmt.Sprintf("any of %s", cols)
	}
	return c.Kind.String()
}

// Plan is the store query for one market search. Constraints never exclude
// a row that the in-memory filter would keep; Residual names the criteria
// the store could not evaluate.
type Plan struct {
	Market      models.Market
	Table       string
	Constraints []Constraint
	Residual    []string
	Limit       int
}

// Describe renders the constraints for logs and cache keys
func (p Plan) Describe() string {
	parts := make([]string, 0, len(p.Constraints))
	for _, c := range p.Constraints {
		parts = append(parts, c.String())
	}
	return strings.Join(parts, " AND ")
}
