package graph

import (
	"container/heap"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/ekaya-inc/joinplanner/pkg/models"
)

// PathFinder discovers shortest join paths over a Graph. Results are
// memoized per (source, dest, maxHops); the cache lives exactly as long as
// the PathFinder and is discarded with it on graph reconstruction.
type PathFinder struct {
	graph  *Graph
	cache  sync.Map // string key -> *cachedPath
	logger *zap.Logger
}

// cachedPath wraps a memoized result so a "no path" answer is cacheable too.
type cachedPath struct {
	path *models.JoinPath // nil when no path exists within the bound
}

// NewPathFinder creates a PathFinder over the given graph.
func NewPathFinder(g *Graph, logger *zap.Logger) *PathFinder {
	return &PathFinder{
		graph:  g,
		logger: logger.Named("pathfinder"),
	}
}

// ShortestPath returns the cheapest join path from source to dest within
// maxHops edges, or nil when no such path exists. Paths exceeding maxHops
// are pruned from consideration entirely, not merely deprioritized.
//
// Ties on total weight are broken by fewer hops, then by the
// lexicographically smallest (from_table, to_table) edge sequence, so
// repeated calls return bit-identical results.
func (pf *PathFinder) ShortestPath(source, dest string, maxHops int) *models.JoinPath {
	key := fmt.Sprintf("%s\x00%s\x00%d", source, dest, maxHops)
	if v, ok := pf.cache.Load(key); ok {
		return v.(*cachedPath).path
	}

	path := pf.dijkstra(source, dest, maxHops)

	// Two callers may compute the same pair concurrently; both results are
	// equal by deterministic construction, so the first store wins and the
	// loser's copy is simply dropped.
	actual, _ := pf.cache.LoadOrStore(key, &cachedPath{path: path})
	return actual.(*cachedPath).path
}

// searchState is one reachable (table, hops) label during Dijkstra.
type searchState struct {
	table  string
	hops   int
	weight float64
	edges  []models.Relationship
}

// stateHeap orders states by weight, then hops, then edge sequence.
type stateHeap []*searchState

func (h stateHeap) Len() int { return len(h) }
func (h stateHeap) Less(i, j int) bool {
	if h[i].weight != h[j].weight {
		return h[i].weight < h[j].weight
	}
	if h[i].hops != h[j].hops {
		return h[i].hops < h[j].hops
	}
	return compareEdgeSequences(h[i].edges, h[j].edges) < 0
}
func (h stateHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *stateHeap) Push(x any)   { *h = append(*h, x.(*searchState)) }
func (h *stateHeap) Pop() any {
	old := *h
	n := len(old)
	s := old[n-1]
	*h = old[:n-1]
	return s
}

// compareEdgeSequences orders two edge sequences by their (from_table,
// to_table) pairs, element-wise, shorter-as-prefix first.
func compareEdgeSequences(a, b []models.Relationship) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i].FromTable != b[i].FromTable {
			if a[i].FromTable < b[i].FromTable {
				return -1
			}
			return 1
		}
		if a[i].ToTable != b[i].ToTable {
			if a[i].ToTable < b[i].ToTable {
				return -1
			}
			return 1
		}
	}
	return len(a) - len(b)
}

func (pf *PathFinder) dijkstra(source, dest string, maxHops int) *models.JoinPath {
	if !pf.graph.HasTable(source) || !pf.graph.HasTable(dest) || maxHops < 1 {
		return nil
	}
	if source == dest {
		return &models.JoinPath{}
	}

	// settled tracks the best label already popped per (table, hops) pair;
	// the state space is bounded by tables x maxHops, so the search always
	// terminates without cancellation support.
	type labelKey struct {
		table string
		hops  int
	}
	settled := make(map[labelKey]bool)

	h := &stateHeap{{table: source}}
	heap.Init(h)

	for h.Len() > 0 {
		state := heap.Pop(h).(*searchState)

		if state.table == dest {
			return &models.JoinPath{
				Edges:       state.edges,
				TotalWeight: state.weight,
				Hops:        state.hops,
			}
		}

		lk := labelKey{table: state.table, hops: state.hops}
		if settled[lk] {
			continue
		}
		settled[lk] = true

		if state.hops == maxHops {
			continue
		}

		for _, edge := range pf.graph.Neighbors(state.table) {
			next, ok := edge.Other(state.table)
			if !ok || next == state.table {
				continue
			}
			if settled[labelKey{table: next, hops: state.hops + 1}] {
				continue
			}
			edges := make([]models.Relationship, len(state.edges)+1)
			copy(edges, state.edges)
			edges[len(state.edges)] = edge
			heap.Push(h, &searchState{
				table:  next,
				hops:   state.hops + 1,
				weight: state.weight + edge.Weight(),
				edges:  edges,
			})
		}
	}

	return nil
}

// ExpandRelationships finds, for every pair of tables lacking a direct
// relationship, the shortest connecting path within maxHops, and flattens
// the discovered edges into the result. Edges are deduplicated by
// (from_table, from_column, to_table, to_column) and returned in key order.
//
// This is how multi-hop joins are discovered without enumerating all paths
// between all tables, which is combinatorially infeasible at schema scale.
func (pf *PathFinder) ExpandRelationships(tables []string, direct []models.Relationship, maxHops int) []models.Relationship {
	directPairs := make(map[string]bool, len(direct))
	for _, rel := range direct {
		directPairs[pairKey(rel.FromTable, rel.ToTable)] = true
	}

	sorted := make([]string, len(tables))
	copy(sorted, tables)
	sort.Strings(sorted)

	seen := make(map[string]bool)
	var expanded []models.Relationship

	for i := 0; i < len(sorted); i++ {
		for j := i + 1; j < len(sorted); j++ {
			a, b := sorted[i], sorted[j]
			if directPairs[pairKey(a, b)] {
				continue
			}

			path := pf.ShortestPath(a, b, maxHops)
			if path == nil {
				pf.logger.Debug("No join path within hop bound",
					zap.String("source", a),
					zap.String("dest", b),
					zap.Int("max_hops", maxHops))
				continue
			}

			for _, edge := range path.Flatten() {
				key := edge.Key()
				if seen[key] {
					continue
				}
				seen[key] = true
				expanded = append(expanded, edge)
			}
		}
	}

	sort.Slice(expanded, func(i, j int) bool { return expanded[i].Key() < expanded[j].Key() })
	return expanded
}
