// Package llm provides the reasoning boundary the correction pipeline
// escalates to when no deterministic fixer applies.
package llm

import (
	"context"

	"github.com/ekaya-inc/joinplanner/pkg/models"
)

// Reasoner is the capability interface for the external reasoning service.
// AttemptFix returns a replacement query, or an error wrapping
// apperrors.ErrUnfixable when the service explicitly cannot repair the
// query. The caller supplies the timeout through ctx; the reasoner never
// retries a fix on its own.
//
// Use this interface for dependency injection so the pipeline's control
// flow is testable without a live external dependency.
type Reasoner interface {
	AttemptFix(ctx context.Context, query string, normErr models.NormalizedError) (string, error)
}

// Config holds configuration for creating a reasoner client.
type Config struct {
	Provider string // "openai" or "anthropic"
	Endpoint string // Base URL; empty uses the provider default
	Model    string // Model name, e.g. "gpt-4o"
	APIKey   string // From environment only
}
