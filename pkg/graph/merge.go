package graph

import "github.com/ekaya-inc/joinplanner/pkg/models"

// Merge combines a base graph document with zero or more overlay documents
// into a single document ready for Load. It is a pure function with defined
// conflict rules:
//
//   - relationships are keyed by (from_table, from_column, to_table,
//     to_column); the last source wins for every field except confidence,
//     which is combined by max, and sources, which accumulate;
//   - tables and table metadata are overlaid per table name, last wins.
//
// File I/O stays with the caller so merging is testable in isolation.
func Merge(base *models.GraphDocument, overlays ...*models.GraphDocument) *models.GraphDocument {
	merged := &models.GraphDocument{
		Tables:        make(map[string]models.TableColumns),
		TableMetadata: make(map[string]models.TableMetadata),
	}

	relByKey := make(map[string]models.Relationship)
	var relOrder []string

	apply := func(doc *models.GraphDocument) {
		if doc == nil {
			return
		}
		for name, cols := range doc.Tables {
			merged.Tables[name] = cols
		}
		for name, meta := range doc.TableMetadata {
			merged.TableMetadata[name] = meta
		}
		for _, rel := range doc.Relationships {
			key := rel.Key()
			existing, ok := relByKey[key]
			if !ok {
				relByKey[key] = rel
				relOrder = append(relOrder, key)
				continue
			}

			if existing.Confidence > rel.Confidence {
				rel.Confidence = existing.Confidence
			}
			rel.Sources = mergeSources(existing.Sources, rel.Sources)
			if len(rel.ScopedConditions) == 0 {
				rel.ScopedConditions = existing.ScopedConditions
			}
			relByKey[key] = rel
		}
	}

	apply(base)
	for _, overlay := range overlays {
		apply(overlay)
	}

	merged.Relationships = make([]models.Relationship, 0, len(relOrder))
	for _, key := range relOrder {
		merged.Relationships = append(merged.Relationships, relByKey[key])
	}
	return merged
}

// mergeSources unions two source lists preserving first-seen order.
func mergeSources(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	var out []string
	for _, src := range a {
		if !seen[src] {
			seen[src] = true
			out = append(out, src)
		}
	}
	for _, src := range b {
		if !seen[src] {
			seen[src] = true
			out = append(out, src)
		}
	}
	return out
}
