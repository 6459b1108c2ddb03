package source

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// extractPDF pulls plain text from every page of a PDF, pages separated
// by blank lines so downstream splitting sees block boundaries.
func extractPDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()

	var pages []string
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("extract pdf page %d: %w", i, err)
		}
		if text = strings.TrimSpace(text); text != "" {
			pages = append(pages, text)
		}
	}
	if len(pages) == 0 {
		return "", fmt.Errorf("pdf %s contains no extractable text", path)
	}
	return strings.Join(pages, "\n\n"), nil
}

// docx paragraph structure, the minimal subset of WordprocessingML
// needed to recover paragraph text.
type docxDocument struct {
	Body struct {
		Paragraphs []docxParagraph `xml:"p"`
	} `xml:"body"`
}

type docxParagraph struct {
	Runs []struct {
		Text []string `xml:"t"`
	} `xml:"r"`
}

// extractDocx reads the main document part of a .docx archive and joins
// its paragraphs with blank lines.
func extractDocx(path string) (string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("open docx %s: %w", path, err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("open docx document part: %w", err)
		}
		defer rc.Close()

		var doc docxDocument
		if err := xml.NewDecoder(rc).Decode(&doc); err != nil {
			return "", fmt.Errorf("parse docx %s: %w", path, err)
		}

		var paragraphs []string
		for _, p := range doc.Body.Paragraphs {
			var sb strings.Builder
			for _, run := range p.Runs {
				for _, t := range run.Text {
					sb.WriteString(t)
				}
			}
			if text := strings.TrimSpace(sb.String()); text != "" {
				paragraphs = append(paragraphs, text)
			}
		}
		if len(paragraphs) == 0 {
			return "", fmt.Errorf("docx %s contains no text", path)
		}
		return strings.Join(paragraphs, "\n\n"), nil
	}
	return "", fmt.Errorf("docx %s has no word/document.xml", path)
}
