package sql

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	groupByPattern = regexp.MustCompile(`(?i)\bGROUP\s+BY\b`)
	// Clauses that may follow a grouping clause, in any dialect we accept.
	afterGroupByPattern = regexp.MustCompile(`(?i)\b(HAVING|WINDOW|ORDER\s+BY|LIMIT|OFFSET|FETCH|FOR\s+UPDATE)\b`)
)

// AppendGroupBy appends an expression to the query's grouping clause,
// creating the clause when absent. The expression is inserted before any
// HAVING/ORDER BY/LIMIT tail. Returns the query unchanged when the
// expression is already grouped.
func AppendGroupBy(query, expr string) (string, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return "", fmt.Errorf("empty grouping expression")
	}

	loc := topLevelIndex(query, groupByPattern, 0)
	if loc == nil {
		// No grouping clause yet: insert one before any trailing clause.
		insertAt := len(query)
		if tail := topLevelIndex(query, afterGroupByPattern, 0); tail != nil {
			insertAt = tail[0]
		}
		head := strings.TrimRight(query[:insertAt], " \t\n\r")
		tail := query[insertAt:]
		if tail == "" {
			return head + " GROUP BY " + expr, nil
		}
		return head + " GROUP BY " + expr + " " + strings.TrimLeft(tail, " \t\n\r"), nil
	}

	// Existing clause: find its end and append the expression there.
	clauseStart := loc[1]
	clauseEnd := len(query)
	if tail := topLevelIndex(query, afterGroupByPattern, clauseStart); tail != nil {
		clauseEnd = tail[0]
	}

	clause := query[clauseStart:clauseEnd]
	for _, grouped := range strings.Split(clause, ",") {
		if strings.EqualFold(strings.TrimSpace(grouped), expr) {
			return query, nil
		}
	}

	head := strings.TrimRight(query[:clauseEnd], " \t\n\r")
	tail := query[clauseEnd:]
	if tail == "" {
		return head + ", " + expr, nil
	}
	return head + ", " + expr + " " + strings.TrimLeft(tail, " \t\n\r"), nil
}
