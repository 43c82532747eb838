package sql

import (
	"fmt"
	"regexp"
	"strings"

	libinjection "github.com/corazawaf/libinjection-go"
)

// StatementType represents the type of SQL statement.
type StatementType string

const (
	StatementSelect  StatementType = "SELECT"
	StatementInsert  StatementType = "INSERT"
	StatementUpdate  StatementType = "UPDATE"
	StatementDelete  StatementType = "DELETE"
	StatementDDL     StatementType = "DDL"     // CREATE, ALTER, DROP, TRUNCATE
	StatementUnknown StatementType = "UNKNOWN" // Unrecognized or blocked statement types
)

// modifyingCTEPattern matches CTEs that contain data-modifying operations.
// Example: WITH deleted AS (DELETE FROM ...) SELECT * FROM deleted
var modifyingCTEPattern = regexp.MustCompile(`(?i)\bAS\s*\(\s*(INSERT|UPDATE|DELETE)\b`)

// DetectStatementType determines the statement type from the first keyword.
// WITH queries count as SELECT unless a CTE modifies data.
func DetectStatementType(sql string) StatementType {
	normalized := strings.ToUpper(strings.TrimSpace(sql))

	switch {
	case strings.HasPrefix(normalized, "SELECT"):
		return StatementSelect

	case strings.HasPrefix(normalized, "WITH"):
		if modifyingCTEPattern.MatchString(sql) {
			return StatementUnknown
		}
		return StatementSelect

	case strings.HasPrefix(normalized, "INSERT"):
		return StatementInsert

	case strings.HasPrefix(normalized, "UPDATE"):
		return StatementUpdate

	case strings.HasPrefix(normalized, "DELETE"):
		return StatementDelete

	case strings.HasPrefix(normalized, "CREATE"),
		strings.HasPrefix(normalized, "ALTER"),
		strings.HasPrefix(normalized, "DROP"),
		strings.HasPrefix(normalized, "TRUNCATE"):
		return StatementDDL

	default:
		return StatementUnknown
	}
}

var stringLiteralPattern = regexp.MustCompile(`'(?:[^']|'')*'`)

// ScreenReplacement validates a replacement query returned by the reasoner
// before the pipeline accepts it as a candidate. A replacement must be a
// single SELECT (or pure-SELECT WITH) statement, and its string literals
// must not carry injection patterns. Reasoner output is untrusted text.
//
// Returns the normalized query on success.
func ScreenReplacement(query string) (string, error) {
	result := ValidateAndNormalize(query)
	if result.Error != nil {
		return "", fmt.Errorf("replacement query rejected: %w", result.Error)
	}
	if result.NormalizedSQL == "" {
		return "", fmt.Errorf("replacement query rejected: empty query")
	}

	if t := DetectStatementType(result.NormalizedSQL); t != StatementSelect {
		return "", fmt.Errorf("replacement query rejected: statement type %s not allowed", t)
	}

	for _, literal := range stringLiteralPattern.FindAllString(result.NormalizedSQL, -1) {
		content := strings.Trim(literal, "'")
		if isSQLi, fingerprint := libinjection.IsSQLi(content); isSQLi {
			return "", fmt.Errorf("replacement query rejected: injection pattern %q in literal", fingerprint)
		}
	}

	return result.NormalizedSQL, nil
}
