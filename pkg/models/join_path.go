package models

// JoinPath is an ordered sequence of edges connecting a source table to a
// destination table. Immutable once returned by the path finder.
type JoinPath struct {
	Edges       []Relationship `json:"edges"`
	TotalWeight float64        `json:"total_weight"`
	Hops        int            `json:"hops"`
}

// Flatten returns the path's edges deduplicated by relationship key,
// preserving traversal order.
func (p *JoinPath) Flatten() []Relationship {
	seen := make(map[string]bool, len(p.Edges))
	var out []Relationship
	for _, edge := range p.Edges {
		key := edge.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, edge)
	}
	return out
}
