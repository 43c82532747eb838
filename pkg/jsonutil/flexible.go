package jsonutil

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FlexibleStringValue converts a json.RawMessage to a string, handling cases
// where upstream extractors return numbers or booleans instead of strings.
// Returns empty string for null/empty.
func FlexibleStringValue(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	// Try string first
	var strVal string
	if err := json.Unmarshal(raw, &strVal); err == nil {
		return strVal
	}

	// Try number
	var numVal float64
	if err := json.Unmarshal(raw, &numVal); err == nil {
		if numVal == float64(int64(numVal)) {
			return fmt.Sprintf("%d", int64(numVal))
		}
		return fmt.Sprintf("%g", numVal)
	}

	// Try boolean
	var boolVal bool
	if err := json.Unmarshal(raw, &boolVal); err == nil {
		return fmt.Sprintf("%t", boolVal)
	}

	// Fallback: return raw string representation
	return string(raw)
}

// FlexibleFloatValue converts a json.RawMessage to a float64, accepting both
// JSON numbers and numeric strings ("0.85"). Relationship confidence scores
// arrive in either form depending on which extraction source produced the
// document. Returns 0 and false when the value cannot be interpreted.
func FlexibleFloatValue(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false
	}

	var numVal float64
	if err := json.Unmarshal(raw, &numVal); err == nil {
		return numVal, true
	}

	var strVal string
	if err := json.Unmarshal(raw, &strVal); err == nil {
		parsed, err := strconv.ParseFloat(strings.TrimSpace(strVal), 64)
		if err == nil {
			return parsed, true
		}
	}

	return 0, false
}

// FlexibleIntValue converts a json.RawMessage to an int, accepting both JSON
// numbers and numeric strings. Returns 0 and false when the value cannot be
// interpreted as a whole number.
func FlexibleIntValue(raw json.RawMessage) (int, bool) {
	f, ok := FlexibleFloatValue(raw)
	if !ok || f != float64(int64(f)) {
		return 0, false
	}
	return int(f), true
}
