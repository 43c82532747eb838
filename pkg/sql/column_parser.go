package sql

import (
	"regexp"
	"strings"
)

// ParsedColumn represents one entry of a SELECT list.
type ParsedColumn struct {
	Name string // The column name or alias
	Expr string // The full expression (e.g., "SUM(amount)")
}

// ParseSelectColumns extracts the select-list entries from a SELECT
// statement. The GROUP BY fixer uses this to resolve a 1-based select-list
// position, reported by the database error, to a concrete expression.
//
// This is a paren-aware splitter, not a full parser. It handles simple
// columns, aliases (explicit and implicit), functions, and table-qualified
// columns; it does not parse subqueries inside the SELECT list, and it
// returns nil for SELECT * since positions cannot be resolved without a
// schema.
func ParseSelectColumns(sql string) ([]ParsedColumn, error) {
	sql = strings.TrimSpace(sql)
	sqlLower := strings.ToLower(sql)

	selectIdx := strings.Index(sqlLower, "select")
	if selectIdx == -1 {
		return nil, nil // Not a SELECT query
	}

	// End of the SELECT list is the first clause keyword after it.
	endKeywords := []string{" from ", " where ", " group ", " order ", " limit ", " union ", " intersect ", " except ", ";"}
	endIdx := len(sql)
	for _, keyword := range endKeywords {
		idx := strings.Index(sqlLower[selectIdx:], keyword)
		if idx != -1 && idx < endIdx-selectIdx {
			endIdx = selectIdx + idx
		}
	}

	selectClause := strings.TrimSpace(sql[selectIdx+6 : endIdx])

	if strings.HasPrefix(selectClause, "*") {
		return nil, nil
	}

	var result []ParsedColumn
	for _, col := range splitSelectColumns(selectClause) {
		col = strings.TrimSpace(col)
		if col == "" {
			continue
		}
		result = append(result, parseColumnExpression(col))
	}

	return result, nil
}

// SelectExpressionAt returns the select-list expression at the given 1-based
// position, or empty string when the position cannot be resolved to a
// concrete expression.
func SelectExpressionAt(sql string, position int) string {
	if position < 1 {
		return ""
	}
	columns, err := ParseSelectColumns(sql)
	if err != nil || position > len(columns) {
		return ""
	}
	return stripAlias(columns[position-1].Expr)
}

var trailingAliasPattern = regexp.MustCompile(`(?i)\s+as\s+\w+\s*$`)

// stripAlias removes a trailing "AS alias" so the bare expression can be
// appended to a grouping clause.
func stripAlias(expr string) string {
	return strings.TrimSpace(trailingAliasPattern.ReplaceAllString(expr, ""))
}

// splitSelectColumns splits a SELECT column list by commas, respecting parentheses.
func splitSelectColumns(selectClause string) []string {
	var columns []string
	var current strings.Builder
	parenDepth := 0

	for _, ch := range selectClause {
		switch ch {
		case '(':
			parenDepth++
			current.WriteRune(ch)
		case ')':
			parenDepth--
			current.WriteRune(ch)
		case ',':
			if parenDepth == 0 {
				columns = append(columns, current.String())
				current.Reset()
			} else {
				current.WriteRune(ch)
			}
		default:
			current.WriteRune(ch)
		}
	}

	if current.Len() > 0 {
		columns = append(columns, current.String())
	}

	return columns
}

var explicitAliasPattern = regexp.MustCompile(`\s+as\s+(\w+)\s*$`)

// parseColumnExpression extracts the name/alias from a single column expression.
// Examples:
//   - "name" -> name
//   - "u.name" -> name
//   - "name AS customer_name" -> customer_name
//   - "SUM(amount) AS total" -> total
func parseColumnExpression(expr string) ParsedColumn {
	expr = strings.TrimSpace(expr)
	exprLower := strings.ToLower(expr)

	if matches := explicitAliasPattern.FindStringSubmatch(exprLower); matches != nil {
		return ParsedColumn{Name: matches[1], Expr: expr}
	}

	// Implicit alias: "COUNT(*) total" -> total. Only when parens are
	// balanced and the last word is not part of a function call or a keyword.
	if strings.Count(expr, "(") == strings.Count(expr, ")") {
		parts := strings.Fields(expr)
		if len(parts) > 1 {
			lastPart := parts[len(parts)-1]
			if !strings.ContainsAny(lastPart, "()") && !isSelectKeyword(lastPart) {
				return ParsedColumn{Name: lastPart, Expr: expr}
			}
		}
	}

	return ParsedColumn{Name: extractColumnName(expr), Expr: expr}
}

func isSelectKeyword(word string) bool {
	switch strings.ToLower(word) {
	case "from", "where", "group", "order", "limit", "and", "or", "as":
		return true
	default:
		return false
	}
}

var funcNamePattern = regexp.MustCompile(`^(\w+)\s*\(`)
var nonWordPattern = regexp.MustCompile(`[^\w]`)

// extractColumnName extracts a bare column name from an expression.
func extractColumnName(expr string) string {
	expr = strings.TrimSpace(expr)

	// Remove table qualifiers ("users.name" -> "name").
	if dotIdx := strings.LastIndex(expr, "."); dotIdx != -1 {
		expr = expr[dotIdx+1:]
	}

	// Function calls: "SUM(amount)" -> "sum".
	if matches := funcNamePattern.FindStringSubmatch(expr); matches != nil {
		return strings.ToLower(matches[1])
	}

	if strings.HasPrefix(strings.ToLower(expr), "case") {
		return "case_result"
	}

	name := strings.Trim(expr, "`\"[]")
	name = nonWordPattern.ReplaceAllString(strings.TrimSpace(name), "")
	return strings.ToLower(name)
}
