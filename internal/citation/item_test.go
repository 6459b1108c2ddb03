package citation

import (
	"encoding/json"
	"testing"
)

func TestItemUnmarshalTolerance(t *testing.T) {
	t.Run("string year in date-parts", func(t *testing.T) {
		var item Item
		raw := `{"type": "book", "title": "T", "issued": {"date-parts": [["1940"]]}}`
		if err := json.Unmarshal([]byte(raw), &item); err != nil {
			t.Fatalf("unmarshal failed: %v", err)
		}
		year, ok := item.Year()
		if !ok || year != 1940 {
			t.Errorf("expected year 1940, got %d (ok=%v)", year, ok)
		}
	})

	t.Run("numeric volume and page", func(t *testing.T) {
		var item Item
		raw := `{"volume": 12, "issue": "3", "page": 45}`
		if err := json.Unmarshal([]byte(raw), &item); err != nil {
			t.Fatalf("unmarshal failed: %v", err)
		}
		if item.Volume != "12" || item.Issue != "3" || item.Page != "45" {
			t.Errorf("unexpected values: volume=%q issue=%q page=%q", item.Volume, item.Issue, item.Page)
		}
	})

	t.Run("unknown fields ignored", func(t *testing.T) {
		var item Item
		raw := `{"title": "T", "id": "item-1", "abstract": "whatever"}`
		if err := json.Unmarshal([]byte(raw), &item); err != nil {
			t.Fatalf("unmarshal failed: %v", err)
		}
		if item.Title != "T" {
			t.Errorf("expected title T, got %q", item.Title)
		}
	})

	t.Run("null date-part", func(t *testing.T) {
		var item Item
		raw := `{"issued": {"date-parts": [[null]]}}`
		if err := json.Unmarshal([]byte(raw), &item); err != nil {
			t.Fatalf("unmarshal failed: %v", err)
		}
		if _, ok := item.Year(); ok {
			t.Error("zero year should not count as a year")
		}
	})
}

func TestItemYear(t *testing.T) {
	t.Run("no issued", func(t *testing.T) {
		if _, ok := (Item{}).Year(); ok {
			t.Error("expected no year")
		}
	})

	t.Run("empty date-parts", func(t *testing.T) {
		item := Item{Issued: &Date{}}
		if _, ok := item.Year(); ok {
			t.Error("expected no year")
		}
	})

	t.Run("year and month", func(t *testing.T) {
		item := Item{Issued: &Date{DateParts: [][]Year{{1907, 5}}}}
		year, ok := item.Year()
		if !ok || year != 1907 {
			t.Errorf("expected 1907, got %d", year)
		}
	})
}

func TestNameString(t *testing.T) {
	tests := []struct {
		name Name
		want string
	}{
		{Name{Family: "Smith", Given: "John"}, "Smith, John"},
		{Name{Family: "Anonymous"}, "Anonymous"},
		{Name{Given: "Madonna"}, "Madonna"},
		{Name{}, ""},
	}
	for _, tt := range tests {
		if got := tt.name.String(); got != tt.want {
			t.Errorf("Name%+v.String() = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestStub(t *testing.T) {
	stub := Stub("Smith, John. 1950. Lost entry.", "structuring failed; raw citation placed in title")
	if stub.Type != TypeManuscript {
		t.Errorf("expected manuscript type, got %q", stub.Type)
	}
	if stub.Title != "Smith, John. 1950. Lost entry." {
		t.Errorf("raw entry must be preserved verbatim in title, got %q", stub.Title)
	}
	if stub.Note == "" {
		t.Error("expected an explanatory note")
	}
	if stub.Issued != nil || len(stub.Author) != 0 {
		t.Error("stub must not invent bibliographic detail")
	}
}

func TestValidateItems(t *testing.T) {
	t.Run("valid items", func(t *testing.T) {
		raw := json.RawMessage(`[
			{"type": "book", "title": "T", "author": [{"family": "Smith", "given": "J."}],
			 "issued": {"date-parts": [[1950]]}, "volume": "2", "page": 10}
		]`)
		if err := ValidateItems(raw); err != nil {
			t.Errorf("expected valid, got %v", err)
		}
	})

	t.Run("empty array", func(t *testing.T) {
		if err := ValidateItems(json.RawMessage(`[]`)); err != nil {
			t.Errorf("empty array should validate: %v", err)
		}
	})

	t.Run("array of strings rejected", func(t *testing.T) {
		if err := ValidateItems(json.RawMessage(`["Smith, John. 1950."]`)); err == nil {
			t.Error("expected validation error for string elements")
		}
	})

	t.Run("object rejected", func(t *testing.T) {
		if err := ValidateItems(json.RawMessage(`{"items": []}`)); err == nil {
			t.Error("expected validation error for non-array document")
		}
	})

	t.Run("author as string rejected", func(t *testing.T) {
		raw := json.RawMessage(`[{"title": "T", "author": "Smith, John"}]`)
		if err := ValidateItems(raw); err == nil {
			t.Error("expected validation error for non-array author")
		}
	})
}
