package models

import "github.com/google/uuid"

// Correction methods.
const (
	MethodDeterministic = "deterministic" // Structural fixer repaired the query
	MethodEscalated     = "escalated"     // External reasoner produced the replacement
)

// CorrectionOutcome is the result of one correction attempt.
type CorrectionOutcome struct {
	AttemptID uuid.UUID `json:"attempt_id"`
	Succeeded bool      `json:"succeeded"`
	Method    string    `json:"method,omitempty"` // "deterministic" or "escalated"
	// Query is the corrected query text when Succeeded is true.
	Query string `json:"query,omitempty"`
	// FailureReason explains why no correction was produced.
	FailureReason string `json:"failure_reason,omitempty"`
	// AttemptedFixers records the chain of fixer types tried, in order, so a
	// human can diagnose why automated repair did not succeed.
	AttemptedFixers []string `json:"attempted_fixers,omitempty"`
}
