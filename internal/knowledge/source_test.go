package knowledge

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/fiction-occupations/enricher/internal/enrichment"
	"github.com/fiction-occupations/enricher/internal/models"
	"github.com/fiction-occupations/enricher/internal/providers"
	"github.com/google/go-cmp/cmp"
)

type stubProvider struct {
	response string
	err      error
	configs  []providers.Config
}

func (s *stubProvider) Name() string { return "openai" }

func (s *stubProvider) Generate(_ context.Context, config providers.Config) (string, error) {
	s.configs = append(s.configs, config)
	return s.response, s.err
}

func TestParseResult(t *testing.T) {
	tests := []struct {
		name      string
		response  string
		wantGenre string
		wantErr   bool
	}{
		{
			name:      "plain JSON",
			response:  `{"Genre":"Thriller","Protagonists":["Jack"]}`,
			wantGenre: "Thriller",
		},
		{
			name:      "fenced JSON",
			response:  "```json\n{\"Genre\":\"Romance\"}\n```",
			wantGenre: "Romance",
		},
		{
			name:      "trailing commas",
			response:  `{"Genre": "Horror", "Protagonists": ["Carrie",],}`,
			wantGenre: "Horror",
		},
		{
			name:      "bare love interest profession",
			response:  `{"Genre":"Romance","Love Interest":"Jo","Love Interest Profession":"Carpenter","Love Interest's ISCO":"None"}`,
			wantGenre: "Romance",
		},
		{
			name:      "flat ISCO list",
			response:  `{"Genre":"Drama","Protagonists":["Ann","Bo"],"ISCO":[0, 2221]}`,
			wantGenre: "Drama",
		},
		{name: "empty", response: "  ", wantErr: true},
		{name: "prose", response: "I am not sure about this book.", wantErr: true},
		{name: "wrong shape", response: `{"Genre":["a","b"]}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseResult(tt.response)
			if tt.wantErr {
				if !errors.Is(err, enrichment.ErrMalformedResponse) {
					t.Fatalf("Expected ErrMalformedResponse, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if result.Genre != tt.wantGenre {
				t.Errorf("Expected genre %q, got %q", tt.wantGenre, result.Genre)
			}
		})
	}
}

func TestParseResultNormalizesLooseShapes(t *testing.T) {
	result, err := ParseResult(`{"Protagonists":["Ann","Bo"],"Professions":["Nurse",["Clerk","Judge"]],"ISCO":[2221,[4110,2612]],"Love Interest Profession":"Carpenter","Love Interest's ISCO":7115,}`)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	want := models.SourceResult{
		Protagonists:            []string{"Ann", "Bo"},
		Professions:             []models.Careers{{"Nurse"}, {"Clerk", "Judge"}},
		Codes:                   []models.Codes{{"2221"}, {"4110", "2612"}},
		LoveInterestProfessions: models.Careers{"Carpenter"},
		LoveInterestCodes:       models.Codes{"7115"},
	}
	if diff := cmp.Diff(want, *result); diff != "" {
		t.Errorf("SourceResult mismatch (-want +got):\n%s", diff)
	}
}

func TestQueryDirectRecallPrompt(t *testing.T) {
	stub := &stubProvider{response: `{"Genre":"Science Fiction","Protagonists":["Paul"]}`}
	source := NewSource(stub, "", providers.DefaultTemperature)

	result, err := source.Query(context.Background(), "Dune", "Frank Herbert", enrichment.Grounding{})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if result.Genre != "Science Fiction" {
		t.Errorf("Unexpected genre %q", result.Genre)
	}

	if len(stub.configs) != 1 {
		t.Fatalf("Expected one call, got %d", len(stub.configs))
	}
	cfg := stub.configs[0]
	if !cfg.JSON {
		t.Error("Expected JSON output to be requested")
	}
	if cfg.Temperature != providers.DefaultTemperature {
		t.Errorf("Expected temperature %v, got %v", providers.DefaultTemperature, cfg.Temperature)
	}
	if cfg.Model != source.Model() || cfg.Model == "" {
		t.Errorf("Expected default model, got %q", cfg.Model)
	}
	if !strings.Contains(cfg.Prompt, `"Dune" by Frank Herbert`) {
		t.Error("Expected prompt to name the book")
	}
	for _, section := range []string{"Web search results", "plot summary of the book", "promotional description"} {
		if strings.Contains(cfg.Prompt, section) {
			t.Errorf("Direct recall prompt should not contain %q", section)
		}
	}
}

func TestQueryGroundedPrompt(t *testing.T) {
	stub := &stubProvider{response: `{"Genre":"Science Fiction"}`}
	source := NewSource(stub, "gpt-4o-mini", 0.2)

	_, err := source.Query(context.Background(), "Dune", "Frank Herbert", enrichment.Grounding{
		Snippets:    []string{"Paul Atreides is the heir", "Jessica is a Bene Gesserit"},
		Summary:     "A desert planet.",
		Description: "A landmark of science fiction.",
	})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}

	prompt := stub.configs[0].Prompt
	for _, want := range []string{
		"Paul Atreides is the heir\nJessica is a Bene Gesserit",
		"A desert planet.",
		"A landmark of science fiction.",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("Expected prompt to contain %q", want)
		}
	}
	if stub.configs[0].Model != "gpt-4o-mini" {
		t.Errorf("Expected explicit model, got %q", stub.configs[0].Model)
	}
}

func TestQueryPropagatesErrors(t *testing.T) {
	source := NewSource(&stubProvider{err: errors.New("timeout")}, "m", 0.3)
	if _, err := source.Query(context.Background(), "T", "A", enrichment.Grounding{}); err == nil {
		t.Error("Expected provider error to propagate")
	}

	source = NewSource(&stubProvider{response: "not json"}, "m", 0.3)
	_, err := source.Query(context.Background(), "T", "A", enrichment.Grounding{})
	if !errors.Is(err, enrichment.ErrMalformedResponse) {
		t.Errorf("Expected ErrMalformedResponse, got %v", err)
	}
}
