package models

// ErrorType classifies a raw database error into one of the recognized
// structural error categories.
type ErrorType string

const (
	ErrTypeGroupByViolation ErrorType = "group_by_violation"
	ErrTypeDuplicateAlias   ErrorType = "duplicate_alias"
	ErrTypeUnknownColumn    ErrorType = "unknown_column"
	ErrTypeAmbiguousColumn  ErrorType = "ambiguous_column"
	ErrTypeOther            ErrorType = "other" // Guaranteed-exhaustive fallback
)

// String returns the string representation of an ErrorType.
func (t ErrorType) String() string {
	return string(t)
}

// GroupByDetail holds the structured details of a GROUP BY violation.
type GroupByDetail struct {
	// Position is the 1-based offending select-list position, 0 when the
	// error text did not name one.
	Position int `json:"position"`
	// Expression is the select-list expression text when the error named it
	// directly (Postgres style), empty otherwise.
	Expression string `json:"expression,omitempty"`
}

// DuplicateAliasDetail holds the repeated table or alias name.
type DuplicateAliasDetail struct {
	Alias string `json:"alias"`
}

// ColumnDetail holds the column name extracted from unknown/ambiguous column
// errors.
type ColumnDetail struct {
	Column string `json:"column"`
}

// NormalizedError is a typed view of a raw database error. Exactly one of
// the detail fields is populated, matching Type.
type NormalizedError struct {
	Type       ErrorType             `json:"type"`
	RawMessage string                `json:"raw_message"`
	GroupBy    *GroupByDetail        `json:"group_by,omitempty"`
	Duplicate  *DuplicateAliasDetail `json:"duplicate,omitempty"`
	Column     *ColumnDetail         `json:"column,omitempty"`
}
