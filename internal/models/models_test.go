package models

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSourceResultDecodesModelOutput(t *testing.T) {
	raw := `{
		"Book Title": "Dune",
		"Book Author": "Frank Herbert",
		"Genre": "Science Fiction",
		"Protagonists": ["Paul Atreides", "Jessica"],
		"Professions": [["Heir", "Emperor"], "Concubine"],
		"ISCO": [[0, "1111"], [9]],
		"Love Interest": "Chani",
		"Love Interest Profession": ["Fremen warrior"],
		"Love Interest's ISCO": ["0"]
	}`

	var got SourceResult
	if err := json.Unmarshal([]byte(raw), &got); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	chani := "Chani"
	want := SourceResult{
		Genre:                   "Science Fiction",
		Protagonists:            []string{"Paul Atreides", "Jessica"},
		Professions:             []Careers{{"Heir", "Emperor"}, {"Concubine"}},
		Codes:                   []Codes{{CodeUnknown, "1111"}, {CodeUncertain}},
		LoveInterest:            &chani,
		LoveInterestProfessions: []string{"Fremen warrior"},
		LoveInterestCodes:       []Code{CodeUnknown},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("SourceResult mismatch (-want +got):\n%s", diff)
	}
}

func TestSourceResultDecodesLooseShapes(t *testing.T) {
	carpenter := "Jo"
	tests := []struct {
		name     string
		input    string
		expected SourceResult
	}{
		{
			name:  "bare love interest profession",
			input: `{"Love Interest": "Jo", "Love Interest Profession": "Carpenter", "Love Interest's ISCO": 7115}`,
			expected: SourceResult{
				LoveInterest:            &carpenter,
				LoveInterestProfessions: Careers{"Carpenter"},
				LoveInterestCodes:       Codes{"7115"},
			},
		},
		{
			name:     "none for love interest fields",
			input:    `{"Love Interest Profession": "None", "Love Interest's ISCO": "None"}`,
			expected: SourceResult{},
		},
		{
			name:     "flat ISCO list",
			input:    `{"ISCO": [0, 2221]}`,
			expected: SourceResult{Codes: []Codes{{CodeUnknown}, {"2221"}}},
		},
		{
			name:     "mixed ISCO nesting",
			input:    `{"ISCO": [[2221, "9"], 2634, null]}`,
			expected: SourceResult{Codes: []Codes{{"2221", CodeUncertain}, {"2634"}, nil}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got SourceResult
			if err := json.Unmarshal([]byte(tt.input), &got); err != nil {
				t.Fatalf("Unmarshal failed: %v", err)
			}
			if diff := cmp.Diff(tt.expected, got); diff != "" {
				t.Errorf("SourceResult mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCodesUnmarshalRejectsObjects(t *testing.T) {
	var c Codes
	if err := json.Unmarshal([]byte(`{"code": 1}`), &c); err == nil {
		t.Error("Expected error for object, got nil")
	}
}

func TestCodeCounts(t *testing.T) {
	r := SourceResult{
		Codes:             []Codes{{CodeUnknown, "2221"}, {CodeUncertain, CodeUnknown}},
		LoveInterestCodes: Codes{CodeUncertain},
	}
	unknown, uncertain := r.CodeCounts()
	if unknown != 2 || uncertain != 2 {
		t.Errorf("Expected 2 unknown and 2 uncertain, got %d and %d", unknown, uncertain)
	}
}

func TestCodeUnmarshal(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Code
		wantErr  bool
	}{
		{name: "integer", input: `2221`, expected: "2221"},
		{name: "string", input: `" 2634 "`, expected: "2634"},
		{name: "null", input: `null`, expected: ""},
		{name: "float", input: `2.5`, expected: "2.5"},
		{name: "object", input: `{}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Code
			err := json.Unmarshal([]byte(tt.input), &c)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error for %s, got nil", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if c != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, c)
			}
		})
	}
}

func TestCodeSentinels(t *testing.T) {
	if !Code("0").IsUnknown() {
		t.Error("Expected 0 to be unknown")
	}
	if !Code("9").IsUncertain() {
		t.Error("Expected 9 to be uncertain")
	}
	if Code("2221").IsUnknown() || Code("2221").IsUncertain() {
		t.Error("Expected 2221 to be a real code")
	}
}

func TestIsBlankString(t *testing.T) {
	tests := []struct {
		value    string
		expected bool
	}{
		{"", true},
		{"Unknown", true},
		{"  unknown ", true},
		{"None", true},
		{"null", true},
		{"N/A", true},
		{"Space Opera", false},
		{"0", false},
	}

	for _, tt := range tests {
		if got := IsBlankString(tt.value); got != tt.expected {
			t.Errorf("IsBlankString(%q) = %v, expected %v", tt.value, got, tt.expected)
		}
	}
}

func TestIsBlankOptionalAndList(t *testing.T) {
	unknown := "Unknown"
	name := "Chani"

	if !IsBlankOptional(nil) {
		t.Error("Expected nil to be blank")
	}
	if !IsBlankOptional(&unknown) {
		t.Error("Expected Unknown to be blank")
	}
	if IsBlankOptional(&name) {
		t.Error("Expected a name not to be blank")
	}
	if !IsBlankList([]string{}) || !IsBlankList[Code](nil) {
		t.Error("Expected empty lists to be blank")
	}
	if IsBlankList([]string{"None"}) {
		t.Error("Expected a list with entries not to be blank")
	}
}

func TestKeyString(t *testing.T) {
	q := BookQuery{Title: "Dune", Author: "Frank Herbert"}
	if got := q.Key().String(); got != "Dune by Frank Herbert" {
		t.Errorf("Expected 'Dune by Frank Herbert', got %s", got)
	}
}
