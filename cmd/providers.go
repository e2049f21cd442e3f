package cmd

import (
	"fmt"

	"github.com/fiction-occupations/enricher/internal/gemini"
	"github.com/fiction-occupations/enricher/internal/ollama"
	"github.com/fiction-occupations/enricher/internal/openai"
	"github.com/fiction-occupations/enricher/internal/providers"
)

// newProvider returns the LLM provider registered under name.
func newProvider(name string) (providers.Provider, error) {
	switch name {
	case "openai":
		return openai.New(), nil
	case "gemini":
		return gemini.New(), nil
	case "ollama":
		return ollama.New(), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s (supported: openai, gemini, ollama)", name)
	}
}
