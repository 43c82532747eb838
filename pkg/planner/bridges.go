// Package planner turns a set of wanted tables into the relationships,
// bridge tables, and scoped-join requirements needed to connect them.
package planner

import (
	"sort"

	"go.uber.org/zap"

	"github.com/ekaya-inc/joinplanner/pkg/graph"
	"github.com/ekaya-inc/joinplanner/pkg/models"
)

// BridgeResolver finds the minimal additional tables needed to connect a set
// of selected tables. It is a pure function of its inputs and holds no
// mutable state.
type BridgeResolver struct {
	graph  *graph.Graph
	logger *zap.Logger
}

// NewBridgeResolver creates a BridgeResolver over the given graph.
func NewBridgeResolver(g *graph.Graph, logger *zap.Logger) *BridgeResolver {
	return &BridgeResolver{
		graph:  g,
		logger: logger.Named("bridges"),
	}
}

// bridgeCandidate is one table under consideration as a connective hop,
// together with the selected tables it reaches directly.
type bridgeCandidate struct {
	name string
	// edge to each selected table it connects, keyed by selected table name
	edges map[string]models.Relationship
}

// minConfidence returns the lowest confidence among the candidate's edges to
// the given pair of selected tables.
func (c *bridgeCandidate) minConfidence(a, b string) float64 {
	ca := c.edges[a].Confidence
	if cb := c.edges[b].Confidence; cb < ca {
		return cb
	}
	return ca
}

// FindBridges returns the bridge tables needed to connect the selected set.
// Three filter layers are applied in order, each strictly narrowing the
// candidates of the previous one:
//
//  1. connectivity: a candidate must connect at least one pair of selected
//     tables that has no existing direct edge;
//  2. role: satellite, assignment, and configuration tables never serve as
//     connective hops;
//  3. manual exclusions: a candidate is discarded for a specific pair when
//     the exclusion list names that pair under the candidate.
//
// When several candidates remain for the same unconnected pair, the one with
// role bridge wins over other connective roles, then the one with the
// highest minimum edge confidence, then the lexicographically smallest name.
func (r *BridgeResolver) FindBridges(
	selected map[string]struct{},
	relationships []models.Relationship,
	exclusions ManualExclusions,
) map[string]struct{} {
	// Collect candidate tables and the selected tables each one touches.
	candidates := make(map[string]*bridgeCandidate)
	directPairs := make(map[[2]string]bool)

	for _, rel := range relationships {
		_, fromSelected := selected[rel.FromTable]
		_, toSelected := selected[rel.ToTable]

		if fromSelected && toSelected {
			directPairs[orderedPair(rel.FromTable, rel.ToTable)] = true
			continue
		}
		if fromSelected != toSelected {
			outside, inside := rel.FromTable, rel.ToTable
			if fromSelected {
				outside, inside = rel.ToTable, rel.FromTable
			}
			cand := candidates[outside]
			if cand == nil {
				cand = &bridgeCandidate{name: outside, edges: make(map[string]models.Relationship)}
				candidates[outside] = cand
			}
			// Keep the strongest edge per selected table.
			if existing, ok := cand.edges[inside]; !ok || rel.Confidence > existing.Confidence {
				cand.edges[inside] = rel
			}
		}
	}

	// Per unconnected selected pair, pick the best surviving candidate.
	bridges := make(map[string]struct{})
	for pair, names := range r.survivorsByPair(candidates, directPairs, exclusions) {
		best := r.pickBest(names, candidates, pair)
		if best != "" {
			bridges[best] = struct{}{}
			r.logger.Debug("Bridge selected",
				zap.String("bridge", best),
				zap.String("pair_a", pair[0]),
				zap.String("pair_b", pair[1]))
		}
	}
	return bridges
}

// survivorsByPair applies the three filter layers and groups the surviving
// candidate names by the unconnected selected pair they would serve.
func (r *BridgeResolver) survivorsByPair(
	candidates map[string]*bridgeCandidate,
	directPairs map[[2]string]bool,
	exclusions ManualExclusions,
) map[[2]string][]string {
	byPair := make(map[[2]string][]string)

	for name, cand := range candidates {
		if len(cand.edges) < 2 {
			continue
		}

		// Layer 2: role filter. Applied before pair enumeration since it is
		// a property of the candidate, not of any pair.
		if !r.graph.RoleOf(name).IsConnective() {
			continue
		}

		reached := make([]string, 0, len(cand.edges))
		for table := range cand.edges {
			reached = append(reached, table)
		}
		sort.Strings(reached)

		for i := 0; i < len(reached); i++ {
			for j := i + 1; j < len(reached); j++ {
				pair := orderedPair(reached[i], reached[j])

				// Layer 1: the pair must not already be directly connected.
				if directPairs[pair] {
					continue
				}
				// Layer 3: explicit per-pair exclusion of this candidate.
				if exclusions.Excluded(name, pair[0], pair[1]) {
					continue
				}
				byPair[pair] = append(byPair[pair], name)
			}
		}
	}
	return byPair
}

// pickBest chooses one candidate for a pair: role bridge first, then highest
// minimum edge confidence, then lexicographic name.
func (r *BridgeResolver) pickBest(names []string, candidates map[string]*bridgeCandidate, pair [2]string) string {
	sort.Strings(names)
	best := ""
	for _, name := range names {
		if best == "" {
			best = name
			continue
		}
		if r.preferOver(name, best, candidates, pair) {
			best = name
		}
	}
	return best
}

// preferOver reports whether candidate a should replace b for the pair.
func (r *BridgeResolver) preferOver(a, b string, candidates map[string]*bridgeCandidate, pair [2]string) bool {
	aBridge := r.graph.RoleOf(a) == models.RoleBridge
	bBridge := r.graph.RoleOf(b) == models.RoleBridge
	if aBridge != bBridge {
		return aBridge
	}

	aConf := candidates[a].minConfidence(pair[0], pair[1])
	bConf := candidates[b].minConfidence(pair[0], pair[1])
	if aConf != bConf {
		return aConf > bConf
	}

	return a < b
}

// orderedPair returns the pair with its members in lexicographic order.
func orderedPair(a, b string) [2]string {
	if a > b {
		a, b = b, a
	}
	return [2]string{a, b}
}
