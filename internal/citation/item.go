// Package citation defines the CSL-JSON item model shared by the
// structuring pipeline and the output serializers.
package citation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// TypeManuscript is the fallback item type used for stub records.
const TypeManuscript = "manuscript"

// Name is a CSL name object.
type Name struct {
	Family string `json:"family,omitempty"`
	Given  string `json:"given,omitempty"`
}

// String renders the name in "Family, Given" form, omitting empty parts.
func (n Name) String() string {
	parts := make([]string, 0, 2)
	if n.Family != "" {
		parts = append(parts, n.Family)
	}
	if n.Given != "" {
		parts = append(parts, n.Given)
	}
	return strings.Join(parts, ", ")
}

// Date is a CSL date object. Only date-parts is used.
type Date struct {
	DateParts [][]Year `json:"date-parts,omitempty"`
}

// Year is a single date-part component. Models sometimes return years as
// JSON strings ("1940") instead of numbers, so unmarshalling accepts both.
type Year int

// UnmarshalJSON implements json.Unmarshaler.
func (y *Year) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		*y = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid date-part %q: %w", s, err)
	}
	*y = Year(n)
	return nil
}

// Flex is a string field that also accepts JSON numbers. CSL expects
// volume, issue and page as strings but models frequently emit numbers.
type Flex string

// UnmarshalJSON implements json.Unmarshaler.
func (f *Flex) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = Flex(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected string or number: %w", err)
	}
	*f = Flex(n.String())
	return nil
}

// Item is one structured citation record. All fields are optional and
// omitted from serialized output when unknown.
type Item struct {
	Type           string `json:"type,omitempty"`
	Title          string `json:"title,omitempty"`
	Author         []Name `json:"author,omitempty"`
	Editor         []Name `json:"editor,omitempty"`
	Issued         *Date  `json:"issued,omitempty"`
	Publisher      string `json:"publisher,omitempty"`
	PublisherPlace string `json:"publisher-place,omitempty"`
	ContainerTitle string `json:"container-title,omitempty"`
	Volume         Flex   `json:"volume,omitempty"`
	Issue          Flex   `json:"issue,omitempty"`
	Page           Flex   `json:"page,omitempty"`
	Language       string `json:"language,omitempty"`
	Note           string `json:"note,omitempty"`
}

// Year returns the first year from issued.date-parts, if any.
func (i Item) Year() (int, bool) {
	if i.Issued == nil || len(i.Issued.DateParts) == 0 || len(i.Issued.DateParts[0]) == 0 {
		return 0, false
	}
	y := int(i.Issued.DateParts[0][0])
	if y == 0 {
		return 0, false
	}
	return y, true
}

// Stub builds a minimal item that preserves the raw citation text so the
// record can still be imported and refined by hand later.
func Stub(rawEntry, note string) Item {
	return Item{
		Type:  TypeManuscript,
		Title: rawEntry,
		Note:  note,
	}
}
