package llm

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ekaya-inc/joinplanner/pkg/models"
)

// cannotFixMarker is the explicit signal a reasoner emits when it judges the
// query unrepairable.
const cannotFixMarker = "CANNOT_FIX"

const fixSystemMessage = `You repair SQL queries that failed to execute.
Reply with ONLY the corrected SQL statement, nothing else.
Do not change the intent of the query; fix only what the error describes.
If the query cannot be repaired, reply with exactly CANNOT_FIX.`

// buildFixPrompt renders the escalation prompt for a failed query.
func buildFixPrompt(query string, normErr models.NormalizedError) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The following SQL query failed.\n\nQuery:\n%s\n\n", query)
	fmt.Fprintf(&b, "Error type: %s\n", normErr.Type)
	fmt.Fprintf(&b, "Database error:\n%s\n", normErr.RawMessage)
	return b.String()
}

var fencedSQLPattern = regexp.MustCompile("(?s)```(?:sql)?\\s*(.*?)```")

// parseFixReply extracts the replacement SQL from a reasoner reply. Models
// sometimes wrap the statement in a fenced block despite instructions.
// Returns ok=false when the reply carries the cannot-fix marker or no usable
// statement.
func parseFixReply(reply string) (string, bool) {
	reply = strings.TrimSpace(reply)
	if reply == "" || strings.Contains(reply, cannotFixMarker) {
		return "", false
	}

	if m := fencedSQLPattern.FindStringSubmatch(reply); m != nil {
		reply = strings.TrimSpace(m[1])
	}
	if reply == "" {
		return "", false
	}
	return reply, true
}
