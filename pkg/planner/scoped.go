package planner

import (
	"regexp"
	"strings"

	"github.com/ekaya-inc/joinplanner/pkg/graph"
	"github.com/ekaya-inc/joinplanner/pkg/models"
)

// ScopedJoinValidator verifies that tables requiring compound join
// predicates are joined on all of them. It reports gaps for an external
// query-generation or correction step to close; it never mutates a query.
type ScopedJoinValidator struct {
	graph *graph.Graph
}

// NewScopedJoinValidator creates a validator over the given graph.
func NewScopedJoinValidator(g *graph.Graph) *ScopedJoinValidator {
	return &ScopedJoinValidator{graph: g}
}

// RequiredConditionsFor returns the scoped conditions attached to the
// table's relationships whose other referenced tables are all present in the
// context. A condition referencing a table outside the context is not
// actionable and is omitted.
func (v *ScopedJoinValidator) RequiredConditionsFor(table string, context map[string]struct{}) []models.ScopedCondition {
	var required []models.ScopedCondition
	seen := make(map[string]bool)

	for _, rel := range v.graph.Neighbors(table) {
		for _, cond := range rel.ScopedConditions {
			if cond.Table != table {
				continue
			}
			key := cond.Table + "\x00" + strings.Join(cond.Predicates, "\x00")
			if seen[key] {
				continue
			}

			actionable := true
			for _, ref := range cond.ReferencedTables() {
				if _, ok := context[ref]; !ok {
					actionable = false
					break
				}
			}
			if actionable {
				seen[key] = true
				required = append(required, cond)
			}
		}
	}
	return required
}

// Validate returns the subset of required conditions not present, by
// normalized equality-predicate text, in the candidate query's predicate
// set. An empty result means the query is correctly scoped.
func (v *ScopedJoinValidator) Validate(predicates map[string]struct{}, required []models.ScopedCondition) []models.ScopedCondition {
	present := make(map[string]bool, len(predicates))
	for pred := range predicates {
		present[NormalizePredicate(pred)] = true
	}

	var unmet []models.ScopedCondition
	for _, cond := range required {
		for _, pred := range cond.Predicates {
			if !present[NormalizePredicate(pred)] {
				unmet = append(unmet, cond)
				break
			}
		}
	}
	return unmet
}

var predicateSpaces = regexp.MustCompile(`\s+`)

// NormalizePredicate canonicalizes an equality predicate for comparison:
// lowercase, collapsed whitespace, and side order made irrelevant
// ("a.x = b.y" matches "b.y = a.x").
func NormalizePredicate(pred string) string {
	pred = strings.ToLower(strings.TrimSpace(pred))
	pred = predicateSpaces.ReplaceAllString(pred, " ")

	parts := strings.SplitN(pred, "=", 2)
	if len(parts) != 2 {
		return pred
	}
	left := strings.TrimSpace(parts[0])
	right := strings.TrimSpace(parts[1])
	if left > right {
		left, right = right, left
	}
	return left + " = " + right
}
