// Package knowledge answers book questions with an LLM provider.
package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/fiction-occupations/enricher/internal/enrichment"
	"github.com/fiction-occupations/enricher/internal/models"
	"github.com/fiction-occupations/enricher/internal/providers"
	"github.com/titanous/json5"
)

// Source is a KnowledgeSource backed by an LLM provider.
type Source struct {
	provider    providers.Provider
	model       string
	temperature float64
}

// NewSource returns a Source. An empty model selects the provider default.
func NewSource(provider providers.Provider, model string, temperature float64) *Source {
	if model == "" {
		model = providers.DefaultModel(provider.Name())
	}
	return &Source{
		provider:    provider,
		model:       model,
		temperature: temperature,
	}
}

// Model returns the model name used for queries.
func (s *Source) Model() string {
	return s.model
}

// Query asks the model about a book and parses its answer.
func (s *Source) Query(ctx context.Context, title, author string, g enrichment.Grounding) (*models.SourceResult, error) {
	raw, err := s.provider.Generate(ctx, providers.Config{
		Model:       s.model,
		Temperature: s.temperature,
		Prompt:      buildPrompt(title, author, g),
		JSON:        true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", s.provider.Name(), err)
	}

	result, err := ParseResult(raw)
	if err != nil {
		slog.Debug("Unparseable model output", "title", title, "author", author, "output", raw)
		return nil, err
	}
	return result, nil
}

// ParseResult decodes a model answer into a SourceResult. Markdown code
// fences are stripped; near-JSON such as trailing commas is
// accepted through a JSON5 round trip.
func ParseResult(response string) (*models.SourceResult, error) {
	response = stripFences(response)
	if response == "" {
		return nil, fmt.Errorf("%w: empty response", enrichment.ErrMalformedResponse)
	}

	var result models.SourceResult
	err := json.Unmarshal([]byte(response), &result)
	if err == nil {
		return &result, nil
	}

	var loose map[string]any
	if err5 := json5.Unmarshal([]byte(response), &loose); err5 != nil {
		return nil, fmt.Errorf("%w: %v", enrichment.ErrMalformedResponse, err)
	}
	normalized, err := json.Marshal(loose)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", enrichment.ErrMalformedResponse, err)
	}
	result = models.SourceResult{}
	if err := json.Unmarshal(normalized, &result); err != nil {
		return nil, fmt.Errorf("%w: %v", enrichment.ErrMalformedResponse, err)
	}

	slog.Debug("Recovered model output with JSON5 parser")
	return &result, nil
}

func stripFences(response string) string {
	response = strings.TrimSpace(response)
	response = strings.TrimPrefix(response, "```json")
	response = strings.TrimPrefix(response, "```")
	response = strings.TrimSuffix(response, "```")
	return strings.TrimSpace(response)
}
