// Package source loads raw bibliography text from web pages, local
// files, or inline text.
package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Input names one bibliography source. Exactly one field should be set;
// when several are set the first of URL, Path, Text wins.
type Input struct {
	URL  string // web page containing a bibliography section
	Path string // local .txt, .docx or .pdf file
	Text string // inline raw text
}

// Load dispatches to the loader matching the input and returns the raw
// bibliography text.
func Load(ctx context.Context, in Input) (string, error) {
	switch {
	case in.URL != "":
		return FetchBibliography(ctx, in.URL)
	case in.Path != "":
		return LoadFile(in.Path)
	case in.Text != "":
		return in.Text, nil
	default:
		return "", fmt.Errorf("no input source given")
	}
}

// LoadFile reads bibliography text from a local file, chosen by
// extension.
func LoadFile(path string) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".txt", ".text", "":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", path, err)
		}
		return string(data), nil
	case ".docx":
		return extractDocx(path)
	case ".pdf":
		return extractPDF(path)
	default:
		return "", fmt.Errorf("unsupported file type %q (want .txt, .docx or .pdf)", ext)
	}
}
