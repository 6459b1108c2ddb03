package providers

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// itemsKeys are the conventional top-level keys checked, in order, when
// locating the items array in a backend response.
var itemsKeys = []string{"items", "output", "bibliography", "entries", "data", "results"}

// ParseJSON extracts a JSON document from model output. Well-behaved
// backends return bare JSON; the recovery path handles markdown code
// fences and minor syntax damage (trailing commas, single quotes) via
// jsonrepair.
func ParseJSON(content string) (json.RawMessage, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("empty response content")
	}

	candidates := []string{content}
	if stripped := stripCodeFences(content); stripped != "" && stripped != content {
		candidates = append(candidates, stripped)
	}

	for _, candidate := range candidates {
		var parsed any
		if err := json.Unmarshal([]byte(candidate), &parsed); err == nil {
			return json.RawMessage(candidate), nil
		}
	}

	// Last resort: structural repair of the most promising candidate.
	repaired, err := jsonrepair.JSONRepair(candidates[len(candidates)-1])
	if err != nil {
		return nil, fmt.Errorf("response is not valid JSON: %w", err)
	}
	var parsed any
	if err := json.Unmarshal([]byte(repaired), &parsed); err != nil {
		return nil, fmt.Errorf("repaired response is still not valid JSON: %w", err)
	}
	return json.RawMessage(repaired), nil
}

func stripCodeFences(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return ""
	}
	lines := strings.Split(trimmed, "\n")
	if len(lines) < 2 {
		return ""
	}
	lines = lines[1:]
	if len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// ExtractItems locates the array of structured objects in a parsed
// response. A top-level array is used as-is; otherwise the conventional
// keys are tried in order, then any array-valued field as a fallback.
// Failure wraps ErrBadResponseShape, which the retry policy treats as
// unrecoverable.
func ExtractItems(raw json.RawMessage) ([]json.RawMessage, error) {
	var topArray []json.RawMessage
	if err := json.Unmarshal(raw, &topArray); err == nil {
		return topArray, nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, fmt.Errorf("%w: response is neither array nor object", ErrBadResponseShape)
	}

	for _, key := range itemsKeys {
		if items, ok := arrayField(obj, key); ok {
			return items, nil
		}
	}

	// The response may be wrapped in a single unconventional key; scan
	// fields in sorted order so the choice is deterministic.
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if items, ok := arrayField(obj, key); ok && len(items) > 0 {
			return items, nil
		}
	}

	return nil, fmt.Errorf("%w: no array-valued field (keys: %s)", ErrBadResponseShape, strings.Join(keys, ", "))
}

func arrayField(obj map[string]json.RawMessage, key string) ([]json.RawMessage, bool) {
	raw, ok := obj[key]
	if !ok {
		return nil, false
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}
	return items, true
}
