package planner

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/ekaya-inc/joinplanner/pkg/apperrors"
	"github.com/ekaya-inc/joinplanner/pkg/graph"
	"github.com/ekaya-inc/joinplanner/pkg/models"
)

// PlanResult is what the table-selection boundary receives back: the
// expanded relationship set, the bridge tables that were added, and the
// scoped conditions the query generator must include. Pairs that could not
// be connected within the hop bound are reported rather than thrown, since
// "no path" is an expected, modelable outcome.
type PlanResult struct {
	Relationships    []models.Relationship    `json:"relationships"`
	BridgeTables     map[string]struct{}      `json:"bridge_tables"`
	UnmetConditions  []models.ScopedCondition `json:"unmet_scoped_conditions"`
	UnconnectedPairs [][2]string              `json:"unconnected_pairs,omitempty"`
}

// Planner is the query-planning boundary. It composes the bridge resolver,
// path finder, and scoped join validator over one immutable graph.
type Planner struct {
	graph      *graph.Graph
	pathFinder *graph.PathFinder
	bridges    *BridgeResolver
	scoped     *ScopedJoinValidator
	exclusions ManualExclusions
	maxHops    int
	logger     *zap.Logger
}

// NewPlanner creates a Planner. maxHops bounds every path search.
func NewPlanner(
	g *graph.Graph,
	pathFinder *graph.PathFinder,
	exclusions ManualExclusions,
	maxHops int,
	logger *zap.Logger,
) *Planner {
	return &Planner{
		graph:      g,
		pathFinder: pathFinder,
		bridges:    NewBridgeResolver(g, logger),
		scoped:     NewScopedJoinValidator(g),
		exclusions: exclusions,
		maxHops:    maxHops,
		logger:     logger.Named("planner"),
	}
}

// Plan expands a set of wanted tables into the relationships needed to join
// them: direct edges, minimal bridge tables, and multi-hop paths, plus the
// scoped conditions the generated query must carry.
func (p *Planner) Plan(selected []string) (*PlanResult, error) {
	if len(selected) == 0 {
		return nil, fmt.Errorf("%w: no tables selected", apperrors.ErrConfig)
	}

	selectedSet := make(map[string]struct{}, len(selected))
	for _, table := range selected {
		if !p.graph.HasTable(table) {
			return nil, fmt.Errorf("%w: selected table %q is not in the graph", apperrors.ErrConfig, table)
		}
		selectedSet[table] = struct{}{}
	}

	bridgeTables := p.bridges.FindBridges(selectedSet, p.graph.Relationships(), p.exclusions)

	// The join context is the selected tables plus every chosen bridge.
	context := make(map[string]struct{}, len(selectedSet)+len(bridgeTables))
	for table := range selectedSet {
		context[table] = struct{}{}
	}
	for table := range bridgeTables {
		context[table] = struct{}{}
	}

	contextTables := make([]string, 0, len(context))
	for table := range context {
		contextTables = append(contextTables, table)
	}
	sort.Strings(contextTables)

	// Direct edges between any two context tables.
	var direct []models.Relationship
	for i := 0; i < len(contextTables); i++ {
		for j := i + 1; j < len(contextTables); j++ {
			if rel := p.graph.RelationshipBetween(contextTables[i], contextTables[j]); rel != nil {
				direct = append(direct, *rel)
			}
		}
	}

	// Multi-hop paths for context pairs still lacking a direct edge.
	expanded := p.pathFinder.ExpandRelationships(contextTables, direct, p.maxHops)

	relationships := dedupeByKey(append(direct, expanded...))

	// Selected pairs that remain unconnected within the hop bound.
	var unconnected [][2]string
	sortedSelected := make([]string, 0, len(selectedSet))
	for table := range selectedSet {
		sortedSelected = append(sortedSelected, table)
	}
	sort.Strings(sortedSelected)
	for i := 0; i < len(sortedSelected); i++ {
		for j := i + 1; j < len(sortedSelected); j++ {
			a, b := sortedSelected[i], sortedSelected[j]
			if p.graph.RelationshipBetween(a, b) != nil {
				continue
			}
			if p.pathFinder.ShortestPath(a, b, p.maxHops) == nil {
				unconnected = append(unconnected, [2]string{a, b})
			}
		}
	}

	// Scoped conditions actionable in this context. The generator has not
	// produced predicates yet, so every actionable condition is reported;
	// the correction boundary re-validates against the actual query.
	var unmet []models.ScopedCondition
	for _, table := range contextTables {
		unmet = append(unmet, p.scoped.RequiredConditionsFor(table, context)...)
	}

	p.logger.Info("Plan complete",
		zap.Int("selected", len(selectedSet)),
		zap.Int("bridges", len(bridgeTables)),
		zap.Int("relationships", len(relationships)),
		zap.Int("scoped_conditions", len(unmet)),
		zap.Int("unconnected_pairs", len(unconnected)))

	return &PlanResult{
		Relationships:    relationships,
		BridgeTables:     bridgeTables,
		UnmetConditions:  unmet,
		UnconnectedPairs: unconnected,
	}, nil
}

// ScopedValidator exposes the scoped join validator so the correction
// boundary can re-validate generated predicates.
func (p *Planner) ScopedValidator() *ScopedJoinValidator {
	return p.scoped
}

// dedupeByKey removes duplicate relationships and returns them in key order.
func dedupeByKey(rels []models.Relationship) []models.Relationship {
	seen := make(map[string]bool, len(rels))
	var out []models.Relationship
	for _, rel := range rels {
		key := rel.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, rel)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out
}
