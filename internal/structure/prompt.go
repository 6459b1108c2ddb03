package structure

import (
	"bytes"
	_ "embed"
	"text/template"
)

//go:embed system.tmpl
var systemPrompt string

//go:embed user.tmpl
var userPromptTmpl string

var userTemplate = template.Must(template.New("user").Parse(userPromptTmpl))

// SystemPrompt returns the system prompt for citation structuring.
func SystemPrompt() string {
	return systemPrompt
}

// UserPrompt builds the user prompt for one batch of entries.
func UserPrompt(entries []string) string {
	var buf bytes.Buffer
	data := struct{ Entries []string }{Entries: entries}
	if err := userTemplate.Execute(&buf, data); err != nil {
		return userPromptTmpl
	}
	return buf.String()
}
