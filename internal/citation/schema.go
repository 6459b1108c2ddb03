package citation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// itemsSchema describes the array of CSL items the structuring backend is
// expected to return. It is deliberately loose: every field is optional,
// unknown fields are allowed, and numeric-vs-string slack matches what the
// Item types tolerate. Its job is to catch structurally wrong responses
// (strings instead of objects, objects instead of arrays) before the
// reconciler trusts positional alignment.
const itemsSchema = `{
  "type": "array",
  "items": {
    "type": "object",
    "properties": {
      "type": {"type": "string"},
      "title": {"type": "string"},
      "author": {"$ref": "#/$defs/names"},
      "editor": {"$ref": "#/$defs/names"},
      "issued": {
        "type": "object",
        "properties": {
          "date-parts": {
            "type": "array",
            "items": {
              "type": "array",
              "items": {"type": ["integer", "string"]}
            }
          }
        }
      },
      "publisher": {"type": "string"},
      "publisher-place": {"type": "string"},
      "container-title": {"type": "string"},
      "volume": {"type": ["string", "number"]},
      "issue": {"type": ["string", "number"]},
      "page": {"type": ["string", "number"]},
      "language": {"type": "string"},
      "note": {"type": "string"}
    }
  },
  "$defs": {
    "names": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "family": {"type": "string"},
          "given": {"type": "string"}
        }
      }
    }
  }
}`

var compiledItemsSchema = mustCompileItemsSchema()

func mustCompileItemsSchema() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("items.json", strings.NewReader(itemsSchema)); err != nil {
		panic(fmt.Sprintf("citation: add items schema: %v", err))
	}
	return compiler.MustCompile("items.json")
}

// ValidateItems checks that raw is a JSON array of plausible CSL items.
// A validation error means the backend response has the wrong shape and
// retrying with identical input will not help.
func ValidateItems(raw json.RawMessage) error {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("decode items for validation: %w", err)
	}
	if err := compiledItemsSchema.Validate(doc); err != nil {
		return fmt.Errorf("items do not match CSL schema: %w", err)
	}
	return nil
}
