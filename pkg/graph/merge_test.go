package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekaya-inc/joinplanner/pkg/models"
)

func TestMerge_ConflictRules(t *testing.T) {
	base := &models.GraphDocument{
		Tables: declareTables("workOrder", "asset"),
		Relationships: []models.Relationship{
			{
				FromTable: "workOrder", FromColumn: "assetId",
				ToTable: "asset", ToColumn: "id",
				Kind:        models.KindJoin,
				Confidence:  0.95,
				Cardinality: "N:1",
				Sources:     []string{models.SourceForeignKey},
			},
		},
	}
	overlay := &models.GraphDocument{
		Relationships: []models.Relationship{
			{
				FromTable: "workOrder", FromColumn: "assetId",
				ToTable: "asset", ToColumn: "id",
				Kind:        models.KindJoin,
				Confidence:  0.7,
				Cardinality: "1:1",
				Sources:     []string{models.SourceManual},
			},
		},
	}

	merged := Merge(base, overlay)

	require.Len(t, merged.Relationships, 1)
	got := merged.Relationships[0]

	// Confidence merges by max, never degraded by a weaker overlay.
	assert.Equal(t, 0.95, got.Confidence)
	// Sources accumulate in first-seen order.
	assert.Equal(t, []string{models.SourceForeignKey, models.SourceManual}, got.Sources)
	// Every other field takes the last source.
	assert.Equal(t, "1:1", got.Cardinality)
}

func TestMerge_OverlayAddsRelationships(t *testing.T) {
	base := &models.GraphDocument{
		Tables:        declareTables("a", "b"),
		Relationships: []models.Relationship{rel("a", "bId", "b", "id", 0.9)},
	}
	overlay := &models.GraphDocument{
		Tables:        declareTables("c"),
		Relationships: []models.Relationship{rel("b", "cId", "c", "id", 0.8)},
	}

	merged := Merge(base, overlay)

	assert.Len(t, merged.Tables, 3)
	require.Len(t, merged.Relationships, 2)
	// First-seen order is preserved.
	assert.Equal(t, "a.bId->b.id", merged.Relationships[0].Key())
	assert.Equal(t, "b.cId->c.id", merged.Relationships[1].Key())
}

func TestMerge_ScopedConditionsInherited(t *testing.T) {
	withCond := rel("answer", "questionId", "question", "id", 0.9)
	withCond.ScopedConditions = []models.ScopedCondition{
		{Table: "answer", Predicates: []string{"answer.executionId = execution.id"}},
	}

	base := &models.GraphDocument{
		Tables:        declareTables("answer", "question"),
		Relationships: []models.Relationship{withCond},
	}
	overlay := &models.GraphDocument{
		Relationships: []models.Relationship{rel("answer", "questionId", "question", "id", 0.9)},
	}

	merged := Merge(base, overlay)
	require.Len(t, merged.Relationships, 1)
	// An overlay without conditions does not erase the base's.
	assert.Len(t, merged.Relationships[0].ScopedConditions, 1)
}

func TestMerge_TableMetadataLastWins(t *testing.T) {
	base := &models.GraphDocument{
		TableMetadata: map[string]models.TableMetadata{
			"workOrder": {Role: "template"},
			"asset":     {Role: "instance"},
		},
	}
	overlay := &models.GraphDocument{
		TableMetadata: map[string]models.TableMetadata{
			"workOrder": {Role: "instance", Description: "corrected"},
		},
	}

	merged := Merge(base, overlay)

	assert.Equal(t, "instance", merged.TableMetadata["workOrder"].Role)
	assert.Equal(t, "corrected", merged.TableMetadata["workOrder"].Description)
	assert.Equal(t, "instance", merged.TableMetadata["asset"].Role)
}

func TestMerge_NilOverlay(t *testing.T) {
	base := &models.GraphDocument{
		Tables:        declareTables("a", "b"),
		Relationships: []models.Relationship{rel("a", "bId", "b", "id", 0.9)},
	}

	merged := Merge(base, nil)
	assert.Len(t, merged.Relationships, 1)
	assert.Len(t, merged.Tables, 2)
}
