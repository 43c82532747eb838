package llm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekaya-inc/joinplanner/pkg/models"
)

func TestBuildFixPrompt(t *testing.T) {
	normErr := models.NormalizedError{
		Type:       models.ErrTypeUnknownColumn,
		RawMessage: `column "nmae" does not exist`,
	}

	prompt := buildFixPrompt("SELECT nmae FROM users", normErr)

	assert.Contains(t, prompt, "SELECT nmae FROM users")
	assert.Contains(t, prompt, "unknown_column")
	assert.Contains(t, prompt, `column "nmae" does not exist`)
}

func TestParseFixReply(t *testing.T) {
	tests := []struct {
		name     string
		reply    string
		expected string
		ok       bool
	}{
		{
			name:     "plain statement",
			reply:    "SELECT id FROM users",
			expected: "SELECT id FROM users",
			ok:       true,
		},
		{
			name:     "surrounding whitespace",
			reply:    "\n  SELECT id FROM users\n",
			expected: "SELECT id FROM users",
			ok:       true,
		},
		{
			name:     "fenced sql block",
			reply:    "```sql\nSELECT id FROM users\n```",
			expected: "SELECT id FROM users",
			ok:       true,
		},
		{
			name:     "fenced block without language tag",
			reply:    "```\nSELECT id FROM users\n```",
			expected: "SELECT id FROM users",
			ok:       true,
		},
		{
			name:  "cannot fix marker",
			reply: "CANNOT_FIX",
			ok:    false,
		},
		{
			name:  "cannot fix marker with commentary",
			reply: "CANNOT_FIX: the referenced table does not exist",
			ok:    false,
		},
		{
			name:  "empty reply",
			reply: "   ",
			ok:    false,
		},
		{
			name:  "empty fenced block",
			reply: "```sql\n```",
			ok:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseFixReply(tt.reply)
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, got)
			}
		})
	}
}

func TestFixSystemMessageMentionsMarker(t *testing.T) {
	// The parser and the instructions must agree on the refusal marker.
	assert.True(t, strings.Contains(fixSystemMessage, cannotFixMarker))
}
