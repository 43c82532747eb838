package models

import (
	"fmt"
	"math"
)

// Relationship sources. These record HOW a relationship was discovered.
const (
	SourceForeignKey = "foreign_key" // Discovered from database FK constraint
	SourceInference  = "inference"   // Inferred by the extraction pipeline
	SourceManual     = "manual"      // Declared by hand in an overlay document
)

// Relationship kinds.
const (
	KindJoin     = "join"     // Regular joinable relationship
	KindMetadata = "metadata" // Documentation-only link, dropped at graph load
)

// weightEpsilon is the edge weight assigned to confidence-1.0 relationships.
// -log(1) is zero, which would make such edges free; Dijkstra needs strictly
// positive weights for the hop-count tie-break to matter.
const weightEpsilon = 1e-9

// Relationship represents a joinable edge between two tables. Edges are
// traversed in either direction but retain their FK direction for predicate
// generation.
type Relationship struct {
	FromTable        string            `json:"from_table"`
	FromColumn       string            `json:"from_column"`
	ToTable          string            `json:"to_table"`
	ToColumn         string            `json:"to_column"`
	Kind             string            `json:"kind"`
	Confidence       float64           `json:"confidence"`  // In (0, 1]
	Cardinality      string            `json:"cardinality"` // "1:1", "1:N", "N:1", "N:M", "unknown"
	Sources          []string          `json:"sources,omitempty"`
	ScopedConditions []ScopedCondition `json:"scoped_conditions,omitempty"`
}

// Key returns the deduplication key for the relationship.
func (r *Relationship) Key() string {
	return fmt.Sprintf("%s.%s->%s.%s", r.FromTable, r.FromColumn, r.ToTable, r.ToColumn)
}

// Weight returns the traversal cost of the edge. Higher-confidence edges are
// cheaper: weight = -log(confidence), clamped to a small positive epsilon
// when confidence is 1.
func (r *Relationship) Weight() float64 {
	w := -math.Log(r.Confidence)
	if w < weightEpsilon {
		return weightEpsilon
	}
	return w
}

// Touches returns true if the edge connects tables a and b in either
// direction.
func (r *Relationship) Touches(a, b string) bool {
	return (r.FromTable == a && r.ToTable == b) || (r.FromTable == b && r.ToTable == a)
}

// Other returns the table on the opposite end of the edge from the given
// table, and false if the edge does not touch the table at all.
func (r *Relationship) Other(table string) (string, bool) {
	switch table {
	case r.FromTable:
		return r.ToTable, true
	case r.ToTable:
		return r.FromTable, true
	default:
		return "", false
	}
}
