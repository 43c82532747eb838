package sql

import (
	"regexp"
	"strings"
)

// TableRef is one table binding in a query: the FROM table or a joined
// table, with the alias it is referenced by (the table name itself when no
// alias is given).
type TableRef struct {
	Table  string
	Alias  string
	IsJoin bool
	// Start and End delimit the full clause text within the query. For the
	// FROM binding only the table reference itself is delimited.
	Start int
	End   int
}

// Name returns the identifier the rest of the query uses for this binding.
func (t *TableRef) Name() string {
	if t.Alias != "" {
		return t.Alias
	}
	return t.Table
}

var (
	joinStartPattern = regexp.MustCompile(`(?i)\b(?:(?:LEFT|RIGHT|FULL|INNER|CROSS)\s+)?(?:OUTER\s+)?JOIN\b`)
	fromPattern      = regexp.MustCompile(`(?i)\bFROM\s+([\w."]+)`)
	clauseEndPattern = regexp.MustCompile(`(?i)\b(WHERE|GROUP\s+BY|HAVING|WINDOW|ORDER\s+BY|LIMIT|OFFSET|UNION|INTERSECT|EXCEPT)\b`)
	identPattern     = regexp.MustCompile(`^[\w."]+`)
	excessSpaces     = regexp.MustCompile(`[ \t]{2,}`)
)

// atTopLevel reports whether the byte offset sits at paren depth zero and
// outside single-quoted string literals. Keyword matches inside derived
// tables or literals must not be treated as clause boundaries.
func atTopLevel(query string, offset int) bool {
	depth := 0
	inString := false
	for i := 0; i < offset && i < len(query); i++ {
		switch ch := query[i]; {
		case inString:
			if ch == '\'' {
				inString = false
			}
		case ch == '\'':
			inString = true
		case ch == '(':
			depth++
		case ch == ')':
			depth--
		}
	}
	return depth == 0 && !inString
}

// topLevelIndex returns the first match of pattern at or after from that
// sits at the top level of the statement, or nil.
func topLevelIndex(query string, pattern *regexp.Regexp, from int) []int {
	for _, loc := range pattern.FindAllStringIndex(query, -1) {
		if loc[0] >= from && atTopLevel(query, loc[0]) {
			return loc
		}
	}
	return nil
}

// topLevelIndexes returns every top-level match of pattern.
func topLevelIndexes(query string, pattern *regexp.Regexp) [][]int {
	var locs [][]int
	for _, loc := range pattern.FindAllStringIndex(query, -1) {
		if atTopLevel(query, loc[0]) {
			locs = append(locs, loc)
		}
	}
	return locs
}

// reservedAfterTable are words that terminate a table reference rather than
// naming an alias.
var reservedAfterTable = map[string]bool{
	"on": true, "using": true, "where": true, "join": true, "left": true,
	"right": true, "full": true, "inner": true, "cross": true, "outer": true,
	"group": true, "having": true, "order": true, "limit": true,
	"offset": true, "union": true, "intersect": true, "except": true,
	"as": true,
}

// TableRefs scans a single SELECT statement for its FROM binding and every
// join clause. Like the select-list parser this is a token scanner, not a
// full SQL parser; it assumes a normalized single statement.
func TableRefs(query string) []TableRef {
	var refs []TableRef

	for _, m := range fromPattern.FindAllStringSubmatchIndex(query, -1) {
		if !atTopLevel(query, m[0]) {
			continue
		}
		table := query[m[2]:m[3]]
		alias, aliasEnd := aliasAfter(query, m[3])
		end := m[3]
		if alias != "" {
			end = aliasEnd
		}
		refs = append(refs, TableRef{Table: table, Alias: alias, Start: m[0], End: end})
		break
	}

	joinLocs := topLevelIndexes(query, joinStartPattern)
	for i, loc := range joinLocs {
		// The clause runs to the next join or the next major clause keyword.
		end := len(query)
		if i+1 < len(joinLocs) {
			end = joinLocs[i+1][0]
		}
		if tail := topLevelIndex(query, clauseEndPattern, loc[1]); tail != nil && tail[0] < end {
			end = tail[0]
		}

		rest := strings.TrimLeft(query[loc[1]:end], " \t\n\r")
		offset := end - len(rest)
		ident := identPattern.FindString(rest)
		if ident == "" {
			continue
		}
		alias, _ := aliasAfter(query, offset+len(ident))

		refs = append(refs, TableRef{
			Table:  ident,
			Alias:  alias,
			IsJoin: true,
			Start:  loc[0],
			End:    end,
		})
	}

	return refs
}

// aliasAfter reads an optional alias starting at the given offset. Returns
// the alias and the offset just past it, or empty string when the next word
// is a keyword.
func aliasAfter(query string, offset int) (string, int) {
	rest := query[offset:]
	trimmed := strings.TrimLeft(rest, " \t\n\r")
	if trimmed == rest && len(rest) > 0 {
		return "", offset // No whitespace: not an alias position
	}
	skipped := len(rest) - len(trimmed)

	word := identPattern.FindString(trimmed)
	if word == "" {
		return "", offset
	}
	if strings.EqualFold(word, "as") {
		afterAs := strings.TrimLeft(trimmed[len(word):], " \t\n\r")
		alias := identPattern.FindString(afterAs)
		if alias == "" || reservedAfterTable[strings.ToLower(alias)] {
			return "", offset
		}
		consumed := len(trimmed) - len(afterAs) + len(alias)
		return alias, offset + skipped + consumed
	}
	if reservedAfterTable[strings.ToLower(word)] {
		return "", offset
	}
	return word, offset + skipped + len(word)
}

// RemoveDuplicateJoin removes the redundant join clause binding the given
// table or alias name, keeping the first occurrence. No fix is produced
// (ok=false) when fewer than two bindings use the name, or when the
// duplicate joins a different table than the kept occurrence, since removal
// would then drop columns referenced elsewhere in the query.
func RemoveDuplicateJoin(query, name string) (string, bool) {
	refs := TableRefs(query)

	var matched []TableRef
	for _, ref := range refs {
		if strings.EqualFold(ref.Name(), name) || strings.EqualFold(ref.Table, name) {
			matched = append(matched, ref)
		}
	}
	if len(matched) < 2 {
		return "", false
	}

	kept := matched[0]
	removed := matched[len(matched)-1]
	if !removed.IsJoin {
		return "", false
	}
	// Same binding name but a different underlying table: columns reached
	// through the duplicate would silently re-resolve against the kept
	// table. Not safe to fix structurally.
	if !strings.EqualFold(kept.Table, removed.Table) {
		return "", false
	}

	fixed := query[:removed.Start] + query[removed.End:]
	fixed = excessSpaces.ReplaceAllString(fixed, " ")
	return strings.TrimSpace(fixed), true
}
