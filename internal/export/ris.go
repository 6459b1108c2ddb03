package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/bibworks/bibzot/internal/citation"
)

// risTypeTags maps CSL item types to RIS TY tags. Unmapped types fall
// back to GEN.
var risTypeTags = map[string]string{
	"book":              "BOOK",
	"chapter":           "CHAP",
	"article-journal":   "JOUR",
	"article-magazine":  "MGZN",
	"article-newspaper": "NEWS",
	"thesis":            "THES",
	"report":            "RPRT",
	"manuscript":        "MANU",
	"pamphlet":          "PAMP",
}

const risDefaultTag = "GEN"

func risLine(b *strings.Builder, tag, value string) {
	fmt.Fprintf(b, "%s  - %s\n", tag, value)
}

// RISRecord renders one item as an RIS record terminated by ER.
func RISRecord(item citation.Item) string {
	ty, ok := risTypeTags[item.Type]
	if !ok {
		ty = risDefaultTag
	}

	var b strings.Builder
	risLine(&b, "TY", ty)

	for _, n := range item.Author {
		if name := n.String(); name != "" {
			risLine(&b, "AU", name)
		}
	}
	for _, n := range item.Editor {
		if name := n.String(); name != "" {
			risLine(&b, "ED", name)
		}
	}

	if item.Title != "" {
		risLine(&b, "TI", item.Title)
	}
	if item.ContainerTitle != "" {
		risLine(&b, "JO", item.ContainerTitle)
	}
	if item.Publisher != "" {
		risLine(&b, "PB", item.Publisher)
	}
	if item.PublisherPlace != "" {
		risLine(&b, "CY", item.PublisherPlace)
	}
	if year, ok := item.Year(); ok {
		risLine(&b, "PY", fmt.Sprintf("%d", year))
	}
	if item.Volume != "" {
		risLine(&b, "VL", string(item.Volume))
	}
	if item.Issue != "" {
		risLine(&b, "IS", string(item.Issue))
	}
	if item.Page != "" {
		risLine(&b, "SP", string(item.Page))
	}
	if item.Language != "" {
		risLine(&b, "LA", item.Language)
	}
	if item.Note != "" {
		risLine(&b, "N1", item.Note)
	}

	risLine(&b, "ER", "")
	return b.String()
}

// WriteRIS writes all items as consecutive RIS records.
func WriteRIS(w io.Writer, items []citation.Item) error {
	for _, item := range items {
		if _, err := io.WriteString(w, RISRecord(item)); err != nil {
			return fmt.Errorf("write RIS record: %w", err)
		}
	}
	return nil
}
