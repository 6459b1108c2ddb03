// Package segment splits raw bibliography text into candidate citation
// entries and resolves author ditto marks across consecutive entries.
package segment

import (
	"regexp"
	"strings"
)

// DefaultMinEntryLength is the cutoff below which a block is discarded
// unless it contains a four-digit year. Tuned against Omeka-style
// bibliography pages; override via Options for other corpora.
const DefaultMinEntryLength = 20

// Options controls entry splitting.
type Options struct {
	// MinEntryLength discards short blocks that carry no year token.
	// Zero means DefaultMinEntryLength.
	MinEntryLength int
}

var (
	lineEndingRe = regexp.MustCompile(`\r\n?`)
	blankRunRe   = regexp.MustCompile(`\n{2,}`)
	wsRunRe      = regexp.MustCompile(`\s+`)
	yearTokenRe  = regexp.MustCompile(`\d{4}`)

	// Page chrome that survives HTML-to-text extraction.
	navLabelRe = regexp.MustCompile(`(?i)^(home|about|browse|search|contact|map|essays?|collections?)(\s|$)`)
)

// boilerplatePrefixes are matched case-insensitively against the start of
// a normalized block.
var boilerplatePrefixes = []string{
	"search using this query type",
}

// discardRule drops a candidate block that is not a citation. Rules run
// in order; the first match wins.
type discardRule struct {
	name string
	drop func(block string, opts Options) bool
}

var discardRules = []discardRule{
	{
		name: "empty",
		drop: func(block string, _ Options) bool { return block == "" },
	},
	{
		name: "boilerplate",
		drop: func(block string, _ Options) bool {
			lower := strings.ToLower(block)
			for _, prefix := range boilerplatePrefixes {
				if strings.HasPrefix(lower, prefix) {
					return true
				}
			}
			return false
		},
	},
	{
		name: "nav-label",
		drop: func(block string, _ Options) bool { return navLabelRe.MatchString(block) },
	},
	{
		name: "short-without-year",
		drop: func(block string, opts Options) bool {
			minLen := opts.MinEntryLength
			if minLen <= 0 {
				minLen = DefaultMinEntryLength
			}
			return len(block) < minLen && !yearTokenRe.MatchString(block)
		},
	},
}

// Split breaks raw text into ordered citation entries.
//
// The separator convention is chosen once per invocation: if the text
// contains any blank line, entries are assumed to be separated by runs of
// blank lines and single newlines inside a block are treated as soft
// wraps; otherwise the text is treated as one entry per line.
func Split(raw string, opts Options) []string {
	text := strings.ReplaceAll(raw, "\u00a0", " ") // non-breaking spaces
	text = lineEndingRe.ReplaceAllString(text, "\n")

	var blocks []string
	if blankRunRe.MatchString(text) {
		blocks = blankRunRe.Split(text, -1)
	} else {
		blocks = strings.Split(text, "\n")
	}

	entries := make([]string, 0, len(blocks))
blocks:
	for _, block := range blocks {
		// Rejoin wrapped lines: a citation title broken across source
		// lines must come back as one logical entry.
		entry := strings.TrimSpace(wsRunRe.ReplaceAllString(block, " "))
		for _, rule := range discardRules {
			if rule.drop(entry, opts) {
				continue blocks
			}
		}
		entries = append(entries, entry)
	}
	return entries
}
