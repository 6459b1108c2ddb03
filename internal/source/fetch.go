package source

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const fetchTimeout = 30 * time.Second

var httpClient = &http.Client{Timeout: fetchTimeout}

// headingRe matches a standalone "Bibliography" line in flattened page
// text, used when the page carries no usable heading structure.
var headingRe = regexp.MustCompile(`(?im)^\s*Bibliography\s*$`)

// FetchBibliography downloads a web page and returns the text of its
// bibliography section. The section starts at an h1-h3 heading titled
// "Bibliography" and runs until the next major heading; pages without
// such structure fall back to slicing the flattened page text.
func FetchBibliography(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "bibzot/1.0")

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", url, err)
	}
	return ExtractBibliography(doc)
}

// ExtractBibliography pulls the bibliography section out of a parsed
// HTML document.
func ExtractBibliography(doc *goquery.Document) (string, error) {
	if text := sectionAfterHeading(doc); text != "" {
		return text, nil
	}
	if text := sliceFlattenedText(doc); text != "" {
		return text, nil
	}
	return "", fmt.Errorf("no bibliography section found")
}

// sectionAfterHeading collects the sibling blocks between a
// "Bibliography" heading and the next major heading.
func sectionAfterHeading(doc *goquery.Document) string {
	var blocks []string
	doc.Find("h1, h2, h3").EachWithBreak(func(_ int, heading *goquery.Selection) bool {
		if !isBibliographyHeading(heading.Text()) {
			return true
		}
		for n := heading.Next(); n.Length() > 0; n = n.Next() {
			name := goquery.NodeName(n)
			if name == "h1" || name == "h2" {
				break
			}
			if text := strings.TrimSpace(n.Text()); text != "" {
				blocks = append(blocks, text)
			}
		}
		return false
	})
	return strings.Join(blocks, "\n\n")
}

// sliceFlattenedText falls back to the page's flattened text, from the
// standalone "Bibliography" line to the end.
func sliceFlattenedText(doc *goquery.Document) string {
	body := doc.Find("body").Text()
	loc := headingRe.FindStringIndex(body)
	if loc == nil {
		return ""
	}
	return strings.TrimSpace(body[loc[1]:])
}

func isBibliographyHeading(text string) bool {
	return strings.EqualFold(strings.TrimSpace(text), "bibliography")
}
