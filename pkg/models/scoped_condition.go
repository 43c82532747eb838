package models

import "strings"

// ScopedCondition represents a compound join requirement: a content table
// carrying both a template key and an instance key must be joined on both
// simultaneously. Omitting the instance-scoping key silently returns rows
// belonging to other instances that share the same template.
type ScopedCondition struct {
	Table      string   `json:"table"`
	Predicates []string `json:"predicates"` // Equality predicates, e.g. "answer.executionId = execution.id"
	Note       string   `json:"note,omitempty"`
}

// ReferencedTables returns the distinct tables named in the condition's
// predicates, excluding the condition's own table. A condition is only
// actionable when all of these are present in the query context.
func (c *ScopedCondition) ReferencedTables() []string {
	seen := map[string]bool{c.Table: true}
	var tables []string
	for _, pred := range c.Predicates {
		for _, side := range strings.Split(pred, "=") {
			side = strings.TrimSpace(side)
			dot := strings.Index(side, ".")
			if dot <= 0 {
				continue
			}
			table := side[:dot]
			if !seen[table] {
				seen[table] = true
				tables = append(tables, table)
			}
		}
	}
	return tables
}
