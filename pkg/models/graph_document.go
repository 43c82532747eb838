package models

import (
	"encoding/json"
	"fmt"

	"github.com/ekaya-inc/joinplanner/pkg/jsonutil"
)

// GraphDocument is the persisted graph artifact: one JSON document with the
// declared tables, the relationship list, and per-table metadata. Documents
// are merged (base plus overlays) before being loaded into a Graph.
type GraphDocument struct {
	Tables        map[string]TableColumns  `json:"tables"`
	Relationships []Relationship           `json:"relationships"`
	TableMetadata map[string]TableMetadata `json:"table_metadata"`
}

// TableColumns declares the column list for a table.
type TableColumns struct {
	Columns []string `json:"columns"`
}

// TableMetadata carries the semantic role and description for a table.
type TableMetadata struct {
	Role        string `json:"role"`
	Description string `json:"description,omitempty"`
}

// rawRelationship mirrors Relationship but defers confidence decoding, since
// extraction sources disagree on whether confidence is a number or a string.
type rawRelationship struct {
	FromTable        string            `json:"from_table"`
	FromColumn       string            `json:"from_column"`
	ToTable          string            `json:"to_table"`
	ToColumn         string            `json:"to_column"`
	Kind             string            `json:"kind"`
	Confidence       json.RawMessage   `json:"confidence"`
	Cardinality      string            `json:"cardinality"`
	Sources          []string          `json:"sources"`
	ScopedConditions []ScopedCondition `json:"scoped_conditions"`
}

// UnmarshalJSON decodes a Relationship, tolerating string-typed confidence
// values. A missing or unparseable confidence fails the decode rather than
// defaulting, so malformed artifacts are rejected at load time.
func (r *Relationship) UnmarshalJSON(data []byte) error {
	var raw rawRelationship
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	confidence, ok := jsonutil.FlexibleFloatValue(raw.Confidence)
	if !ok {
		return fmt.Errorf("relationship %s.%s -> %s.%s: confidence is not numeric",
			raw.FromTable, raw.FromColumn, raw.ToTable, raw.ToColumn)
	}

	r.FromTable = raw.FromTable
	r.FromColumn = raw.FromColumn
	r.ToTable = raw.ToTable
	r.ToColumn = raw.ToColumn
	r.Kind = raw.Kind
	r.Confidence = confidence
	r.Cardinality = raw.Cardinality
	r.Sources = raw.Sources
	r.ScopedConditions = raw.ScopedConditions
	return nil
}

// ParseGraphDocument decodes a persisted graph artifact.
func ParseGraphDocument(data []byte) (*GraphDocument, error) {
	var doc GraphDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse graph document: %w", err)
	}
	return &doc, nil
}
