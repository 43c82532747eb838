package correction

import (
	"github.com/ekaya-inc/joinplanner/pkg/models"
	"github.com/ekaya-inc/joinplanner/pkg/sql"
)

// Fixer is a pure, non-reasoning transformation that repairs one recognized
// structural error. Fix returns ok=false when no safe fix exists for this
// particular query, in which case the pipeline escalates.
type Fixer interface {
	Type() models.ErrorType
	Fix(query string, normErr models.NormalizedError) (fixed string, ok bool)
}

// defaultFixers returns the fixer registry keyed by error type. Unknown
// column, ambiguous column, and other errors carry no entry: repairing them
// requires judgment about intent, so they always escalate.
func defaultFixers() map[models.ErrorType]Fixer {
	return map[models.ErrorType]Fixer{
		models.ErrTypeGroupByViolation: groupByFixer{},
		models.ErrTypeDuplicateAlias:   duplicateAliasFixer{},
	}
}

// groupByFixer appends the offending select-list expression to the grouping
// clause.
type groupByFixer struct{}

func (groupByFixer) Type() models.ErrorType { return models.ErrTypeGroupByViolation }

func (groupByFixer) Fix(query string, normErr models.NormalizedError) (string, bool) {
	detail := normErr.GroupBy
	if detail == nil {
		return "", false
	}

	expr := detail.Expression
	if expr == "" && detail.Position > 0 {
		expr = sql.SelectExpressionAt(query, detail.Position)
	}
	// No fix when the offending position cannot be resolved to a concrete
	// expression (SELECT *, position out of range, unparsable list).
	if expr == "" {
		return "", false
	}

	fixed, err := sql.AppendGroupBy(query, expr)
	if err != nil {
		return "", false
	}
	return fixed, true
}

// duplicateAliasFixer removes the redundant join clause for a table or
// alias bound more than once, keeping the first occurrence.
type duplicateAliasFixer struct{}

func (duplicateAliasFixer) Type() models.ErrorType { return models.ErrTypeDuplicateAlias }

func (duplicateAliasFixer) Fix(query string, normErr models.NormalizedError) (string, bool) {
	detail := normErr.Duplicate
	if detail == nil || detail.Alias == "" {
		return "", false
	}
	return sql.RemoveDuplicateJoin(query, detail.Alias)
}
