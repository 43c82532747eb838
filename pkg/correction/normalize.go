// Package correction repairs failed SQL queries: it normalizes raw database
// errors into typed errors, applies deterministic structural fixers where a
// safe one exists, and escalates the rest to an external reasoner under a
// bounded attempt budget.
package correction

import (
	"regexp"
	"strconv"

	"github.com/ekaya-inc/joinplanner/pkg/models"
)

// errorMatcher is one row of the normalization table: a pattern, the error
// type it recognizes, and an extractor that fills the typed details from the
// regex captures.
type errorMatcher struct {
	pattern *regexp.Regexp
	errType models.ErrorType
	extract func(norm *models.NormalizedError, match []string)
}

// errorMatchers is evaluated in priority order; the first match wins. Raw
// text matching nothing becomes ErrTypeOther, the guaranteed-exhaustive
// fallback.
var errorMatchers = []errorMatcher{
	{
		// MySQL ONLY_FULL_GROUP_BY, reports the 1-based select-list position.
		pattern: regexp.MustCompile(`(?i)Expression #(\d+) of SELECT list is not in GROUP BY clause`),
		errType: models.ErrTypeGroupByViolation,
		extract: func(norm *models.NormalizedError, match []string) {
			position, _ := strconv.Atoi(match[1])
			norm.GroupBy = &models.GroupByDetail{Position: position}
		},
	},
	{
		// Postgres 42803, names the offending column directly.
		pattern: regexp.MustCompile(`(?i)column "([^"]+)" must appear in the GROUP BY clause`),
		errType: models.ErrTypeGroupByViolation,
		extract: func(norm *models.NormalizedError, match []string) {
			norm.GroupBy = &models.GroupByDetail{Expression: match[1]}
		},
	},
	{
		// MySQL duplicate table/alias in the FROM list.
		pattern: regexp.MustCompile(`(?i)Not unique table/alias: '([^']+)'`),
		errType: models.ErrTypeDuplicateAlias,
		extract: func(norm *models.NormalizedError, match []string) {
			norm.Duplicate = &models.DuplicateAliasDetail{Alias: match[1]}
		},
	},
	{
		// Postgres duplicate table name.
		pattern: regexp.MustCompile(`(?i)table name "([^"]+)" specified more than once`),
		errType: models.ErrTypeDuplicateAlias,
		extract: func(norm *models.NormalizedError, match []string) {
			norm.Duplicate = &models.DuplicateAliasDetail{Alias: match[1]}
		},
	},
	{
		// Ambiguity checked before unknown-column: MySQL phrases both with
		// "Column '...'".
		pattern: regexp.MustCompile(`(?i)Column '([^']+)'[^']*is ambiguous`),
		errType: models.ErrTypeAmbiguousColumn,
		extract: func(norm *models.NormalizedError, match []string) {
			norm.Column = &models.ColumnDetail{Column: match[1]}
		},
	},
	{
		pattern: regexp.MustCompile(`(?i)column reference "([^"]+)" is ambiguous`),
		errType: models.ErrTypeAmbiguousColumn,
		extract: func(norm *models.NormalizedError, match []string) {
			norm.Column = &models.ColumnDetail{Column: match[1]}
		},
	},
	{
		pattern: regexp.MustCompile(`(?i)Unknown column '([^']+)'`),
		errType: models.ErrTypeUnknownColumn,
		extract: func(norm *models.NormalizedError, match []string) {
			norm.Column = &models.ColumnDetail{Column: match[1]}
		},
	},
	{
		// Postgres 42703.
		pattern: regexp.MustCompile(`(?i)column "([^"]+)" does not exist`),
		errType: models.ErrTypeUnknownColumn,
		extract: func(norm *models.NormalizedError, match []string) {
			norm.Column = &models.ColumnDetail{Column: match[1]}
		},
	},
}

// Normalize pattern-matches known database error phrasings into a typed
// error. Unmatched text becomes ErrTypeOther with the raw message preserved.
func Normalize(raw string) models.NormalizedError {
	norm := models.NormalizedError{
		Type:       models.ErrTypeOther,
		RawMessage: raw,
	}

	for _, matcher := range errorMatchers {
		if match := matcher.pattern.FindStringSubmatch(raw); match != nil {
			norm.Type = matcher.errType
			matcher.extract(&norm, match)
			return norm
		}
	}
	return norm
}
