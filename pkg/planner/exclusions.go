package planner

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ManualExclusions lists, per candidate table, the selected-table pairs for
// which that candidate must not be used as a bridge. This permits narrow,
// explicit overrides without weakening the default role filter.
//
// YAML shape:
//
//	inspectionCrewAssignment:
//	  - [crew, workOrder]
type ManualExclusions map[string][][2]string

// Excluded reports whether the candidate is disallowed as a bridge for the
// pair (a, b). Pair order does not matter.
func (m ManualExclusions) Excluded(candidate, a, b string) bool {
	for _, pair := range m[candidate] {
		if (pair[0] == a && pair[1] == b) || (pair[0] == b && pair[1] == a) {
			return true
		}
	}
	return false
}

// LoadManualExclusions reads a manual-exclusions file. A missing path yields
// an empty exclusion set; a malformed file is an error.
func LoadManualExclusions(path string) (ManualExclusions, error) {
	if path == "" {
		return ManualExclusions{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ManualExclusions{}, nil
		}
		return nil, fmt.Errorf("read manual exclusions: %w", err)
	}
	return ParseManualExclusions(data)
}

// ParseManualExclusions decodes manual-exclusion YAML. Every entry must be a
// two-element table pair.
func ParseManualExclusions(data []byte) (ManualExclusions, error) {
	var raw map[string][][]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse manual exclusions: %w", err)
	}

	exclusions := make(ManualExclusions, len(raw))
	for candidate, pairs := range raw {
		for _, pair := range pairs {
			if len(pair) != 2 {
				return nil, fmt.Errorf("manual exclusion for %q: pair must have exactly two tables, got %d", candidate, len(pair))
			}
			exclusions[candidate] = append(exclusions[candidate], [2]string{pair[0], pair[1]})
		}
	}
	return exclusions, nil
}
