// Package graph holds the immutable relationship graph and the path finder
// that plans joins over it.
package graph

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/ekaya-inc/joinplanner/pkg/apperrors"
	"github.com/ekaya-inc/joinplanner/pkg/models"
)

// auditColumns are bookkeeping columns that must never be proposed as join
// keys. Relationships touching them are removed at graph construction time,
// so no downstream component can ever see one. Closed invariant, not a
// per-query filter.
var auditColumns = map[string]bool{
	"createdby": true,
	"updatedby": true,
	"deletedby": true,
	"createdat": true,
	"updatedat": true,
	"deletedat": true,
	"ownerid":   true,
}

// IsAuditColumn reports whether a column belongs to the fixed audit-column
// exclusion set. Comparison is case-insensitive.
func IsAuditColumn(column string) bool {
	return auditColumns[strings.ToLower(column)]
}

// Graph is the in-memory representation of tables, relationships, and
// per-table semantic roles. Constructed once and read-only afterwards; safe
// for unsynchronized concurrent reads.
type Graph struct {
	tables        map[string]*models.Table
	neighbors     map[string][]models.Relationship
	relationships []models.Relationship
	// best direct edge per unordered table pair
	byPair map[string]*models.Relationship
}

// pairKey returns an order-independent key for a table pair.
func pairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "\x00" + b
}

// Load constructs a Graph from a merged graph document. It fails with a
// wrapped apperrors.ErrConfig when a relationship references an undeclared
// table or a metadata entry carries an unknown role. Audit-column and
// metadata-only relationships are dropped before the graph is considered
// valid.
func Load(doc *models.GraphDocument, logger *zap.Logger) (*Graph, error) {
	logger = logger.Named("graph")

	g := &Graph{
		tables:    make(map[string]*models.Table, len(doc.Tables)),
		neighbors: make(map[string][]models.Relationship),
		byPair:    make(map[string]*models.Relationship),
	}

	for name, decl := range doc.Tables {
		table := &models.Table{Name: name, Columns: decl.Columns}
		if meta, ok := doc.TableMetadata[name]; ok {
			role := models.SemanticRole(meta.Role)
			if !role.IsValid() {
				return nil, fmt.Errorf("%w: table %q has unknown role %q",
					apperrors.ErrConfig, name, meta.Role)
			}
			table.Role = role
			table.Description = meta.Description
		}
		g.tables[name] = table
	}

	for name := range doc.TableMetadata {
		if _, ok := doc.Tables[name]; !ok {
			return nil, fmt.Errorf("%w: metadata references undeclared table %q",
				apperrors.ErrConfig, name)
		}
	}

	var droppedAudit, droppedMetadata int
	for _, rel := range doc.Relationships {
		if _, ok := g.tables[rel.FromTable]; !ok {
			return nil, fmt.Errorf("%w: relationship %s references undeclared table %q",
				apperrors.ErrConfig, rel.Key(), rel.FromTable)
		}
		if _, ok := g.tables[rel.ToTable]; !ok {
			return nil, fmt.Errorf("%w: relationship %s references undeclared table %q",
				apperrors.ErrConfig, rel.Key(), rel.ToTable)
		}
		if rel.Confidence <= 0 || rel.Confidence > 1 {
			return nil, fmt.Errorf("%w: relationship %s has confidence %g outside (0, 1]",
				apperrors.ErrConfig, rel.Key(), rel.Confidence)
		}

		if IsAuditColumn(rel.FromColumn) || IsAuditColumn(rel.ToColumn) {
			droppedAudit++
			continue
		}
		if rel.Kind == models.KindMetadata {
			droppedMetadata++
			continue
		}

		g.addRelationship(rel)
	}

	// Deterministic neighbor order regardless of document order.
	for table := range g.neighbors {
		rels := g.neighbors[table]
		sort.Slice(rels, func(i, j int) bool { return rels[i].Key() < rels[j].Key() })
	}
	sort.Slice(g.relationships, func(i, j int) bool {
		return g.relationships[i].Key() < g.relationships[j].Key()
	})
	g.buildPairIndex()

	logger.Info("Graph loaded",
		zap.Int("tables", len(g.tables)),
		zap.Int("relationships", len(g.relationships)),
		zap.Int("dropped_audit_edges", droppedAudit),
		zap.Int("dropped_metadata_edges", droppedMetadata))

	return g, nil
}

// addRelationship records an edge in both adjacency lists.
func (g *Graph) addRelationship(rel models.Relationship) {
	g.relationships = append(g.relationships, rel)
	g.neighbors[rel.FromTable] = append(g.neighbors[rel.FromTable], rel)
	if rel.ToTable != rel.FromTable {
		g.neighbors[rel.ToTable] = append(g.neighbors[rel.ToTable], rel)
	}
}

// buildPairIndex indexes the best direct edge per table pair (highest
// confidence, key as tie-break). Must run after the relationships slice has
// reached its final sorted form: the index holds pointers into that slice.
func (g *Graph) buildPairIndex() {
	for i := range g.relationships {
		rel := &g.relationships[i]
		key := pairKey(rel.FromTable, rel.ToTable)
		current, ok := g.byPair[key]
		// Key order ties break toward the earlier entry.
		if !ok || rel.Confidence > current.Confidence {
			g.byPair[key] = rel
		}
	}
}

// HasTable returns true if the table is declared in the graph.
func (g *Graph) HasTable(name string) bool {
	_, ok := g.tables[name]
	return ok
}

// Neighbors returns the relationships touching the given table. The returned
// slice must not be modified.
func (g *Graph) Neighbors(table string) []models.Relationship {
	return g.neighbors[table]
}

// RoleOf returns the semantic role of a table. Tables without metadata have
// an empty role, which is treated as connective by the planner.
func (g *Graph) RoleOf(table string) models.SemanticRole {
	if t, ok := g.tables[table]; ok {
		return t.Role
	}
	return ""
}

// RelationshipBetween returns the direct edge between a and b, or nil when
// none exists. When multiple direct edges exist, the highest-confidence one
// is returned.
func (g *Graph) RelationshipBetween(a, b string) *models.Relationship {
	return g.byPair[pairKey(a, b)]
}

// Tables returns the declared tables in name order.
func (g *Graph) Tables() []*models.Table {
	names := make([]string, 0, len(g.tables))
	for name := range g.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	tables := make([]*models.Table, len(names))
	for i, name := range names {
		tables[i] = g.tables[name]
	}
	return tables
}

// Relationships returns all surviving relationships in key order. The
// returned slice must not be modified.
func (g *Graph) Relationships() []models.Relationship {
	return g.relationships
}
