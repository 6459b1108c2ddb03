package export

import (
	"fmt"
	"io"
	"strings"
)

const failureRule = 80

// WriteFailureReport writes the plain-text report of entries that did not
// get a genuine structured result. Stubs for these entries are still
// present in the main output; the report exists so they can be reprocessed
// or entered by hand.
func WriteFailureReport(w io.Writer, failed []string) error {
	rule := strings.Repeat("=", failureRule)
	sep := strings.Repeat("-", failureRule)

	var b strings.Builder
	b.WriteString(rule + "\n")
	b.WriteString("FAILED BIBLIOGRAPHY ENTRIES\n")
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "Total failed entries: %d\n", len(failed))
	b.WriteString("These entries could not be structured and were added as stub records.\n")
	b.WriteString("Consider re-processing them individually or adding them to Zotero by hand.\n")
	b.WriteString(rule + "\n\n")

	for i, entry := range failed {
		fmt.Fprintf(&b, "%d. %s\n\n", i+1, entry)
		b.WriteString(sep + "\n\n")
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("write failure report: %w", err)
	}
	return nil
}
