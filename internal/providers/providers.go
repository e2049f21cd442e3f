package providers

import (
	"context"
	"os"
)

// DefaultTemperature keeps answers close to deterministic across reruns.
const DefaultTemperature = 0.3

// Config represents the configuration for a single LLM call
type Config struct {
	Model       string
	Temperature float64
	Prompt      string
	// JSON asks the provider to constrain output to a JSON object.
	JSON bool
}

// Provider defines the interface for an LLM provider
type Provider interface {
	Name() string
	Generate(ctx context.Context, config Config) (string, error)
}

// DefaultModel returns the model to use for a provider when none was given,
// honouring the provider's *_MODEL environment variable.
func DefaultModel(provider string) string {
	switch provider {
	case "openai":
		return envOr("OPENAI_MODEL", "gpt-4o")
	case "gemini":
		return envOr("GEMINI_MODEL", "gemini-1.5-flash")
	case "ollama":
		return envOr("OLLAMA_MODEL", "mistral-small3.2:24b")
	default:
		return ""
	}
}

// DefaultProvider reads ENRICHER_PROVIDER, falling back to openai.
func DefaultProvider() string {
	return envOr("ENRICHER_PROVIDER", "openai")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
