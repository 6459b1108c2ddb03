package segment

import (
	"regexp"
	"strings"
)

// Bibliographies use ditto marks (runs of underscores or em-dashes) to
// mean "same author as the previous entry". The resolver rewrites those
// placeholders using a single piece of carried state: the most recently
// extracted author name.

var (
	dittoTestRe    = regexp.MustCompile(`^(_{3,}|—{2,}|—)\.?\s`)
	dittoReplaceRe = regexp.MustCompile(`^(_{3,}|—{2,}|—)\.?`)

	// Strips an accidentally captured "1940" or "1940a" from the end of
	// a fallback author capture. The carried author must never contain a
	// year, otherwise every later ditto expansion compounds the damage.
	trailingYearRe = regexp.MustCompile(`\s+\d{4}[a-z]?$`)
)

// authorPattern extracts an author name from the start of an entry.
// Patterns run in priority order; the first match wins.
type authorPattern struct {
	name    string
	re      *regexp.Regexp
	capture func(match string) string
}

var authorPatterns = []authorPattern{
	{
		// "Surname, Given M." followed by a year or bracketed year.
		// The lazy given-name group keeps the year out of the capture.
		name: "surname-given-year",
		re:   regexp.MustCompile(`^([A-Z][a-zA-Z'\-]+(?:\s+[A-Z]\.?)?,\s+[A-Z][a-zA-Z.\s\-]+?)\.\s+[\[\d]`),
	},
	{
		// "Name [pseudonym]." followed by a year token; capture the part
		// before the bracket.
		name: "bracketed-annotation",
		re:   regexp.MustCompile(`^([^.]+?)\s*\[[^\]]+\]\.\s+[\d\[]`),
	},
	{
		// Fallback: capitalized text up to the first period, with any
		// trailing year token stripped off.
		name: "leading-capitalized",
		re:   regexp.MustCompile(`^([A-Z][^.]+)\.\s+`),
		capture: func(match string) string {
			return trailingYearRe.ReplaceAllString(match, "")
		},
	},
}

// ExpandDittos rewrites ditto-mark entries using the previous entry's
// author. It is a fold over the ordered entry sequence; the carried state
// is exactly one author name string.
func ExpandDittos(entries []string) []string {
	out := make([]string, len(entries))
	author := ""
	for i, entry := range entries {
		author, out[i] = resolveEntry(author, entry)
	}
	return out
}

// resolveEntry processes one entry against the carried author state and
// returns the updated state plus the (possibly rewritten) entry.
func resolveEntry(prevAuthor, entry string) (string, string) {
	if prevAuthor != "" && dittoTestRe.MatchString(entry) {
		entry = dittoReplaceRe.ReplaceAllString(entry, prevAuthor+".")
	}

	// Re-extract from the possibly rewritten text so a ditto entry keeps
	// the carried author alive for the entry after it. No match leaves
	// the state untouched.
	if name, ok := extractAuthor(entry); ok {
		prevAuthor = name
	}
	return prevAuthor, entry
}

func extractAuthor(entry string) (string, bool) {
	for _, p := range authorPatterns {
		m := p.re.FindStringSubmatch(entry)
		if m == nil {
			continue
		}
		name := strings.TrimSpace(m[1])
		if p.capture != nil {
			name = p.capture(name)
		}
		if name != "" {
			return name, true
		}
	}
	return "", false
}
