package llm

import (
	"context"

	"github.com/ekaya-inc/joinplanner/pkg/models"
)

// MockReasoner is a configurable mock for testing escalation control flow.
// Set the function field to control behavior in tests.
type MockReasoner struct {
	// AttemptFixFunc is called when AttemptFix is invoked.
	// If nil, returns empty string and nil error.
	AttemptFixFunc func(ctx context.Context, query string, normErr models.NormalizedError) (string, error)

	// Call tracking for verification
	AttemptFixCalls int
	LastQuery       string
	LastErrorType   models.ErrorType
}

// NewMockReasoner creates a new mock reasoner.
func NewMockReasoner() *MockReasoner {
	return &MockReasoner{}
}

// AttemptFix implements Reasoner.
func (m *MockReasoner) AttemptFix(ctx context.Context, query string, normErr models.NormalizedError) (string, error) {
	m.AttemptFixCalls++
	m.LastQuery = query
	m.LastErrorType = normErr.Type
	if m.AttemptFixFunc != nil {
		return m.AttemptFixFunc(ctx, query, normErr)
	}
	return "", nil
}

// Reset clears call tracking.
func (m *MockReasoner) Reset() {
	m.AttemptFixCalls = 0
	m.LastQuery = ""
	m.LastErrorType = ""
}

// Ensure MockReasoner implements Reasoner at compile time.
var _ Reasoner = (*MockReasoner)(nil)
