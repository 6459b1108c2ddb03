// Package export serializes structured citation items to the formats
// Zotero can import, plus the plain-text failure report.
package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/bibworks/bibzot/internal/citation"
)

// WriteCSLJSON writes items as a CSL-JSON array.
func WriteCSLJSON(w io.Writer, items []citation.Item) error {
	if items == nil {
		items = []citation.Item{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(items); err != nil {
		return fmt.Errorf("encode CSL-JSON: %w", err)
	}
	return nil
}
