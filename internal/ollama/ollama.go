package ollama

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fiction-occupations/enricher/internal/providers"
	"github.com/go-resty/resty/v2"
)

// Ollama is a provider for a local or remote Ollama server
type Ollama struct {
	http *resty.Client
}

// New returns a new Ollama provider using OLLAMA_URL or OLLAMA_HOST
func New() *Ollama {
	ollamaURL := os.Getenv("OLLAMA_URL")
	if ollamaURL == "" {
		ollamaURL = os.Getenv("OLLAMA_HOST")
	}
	if ollamaURL == "" {
		ollamaURL = "http://localhost:11434"
	}
	return NewWithBaseURL(ollamaURL)
}

// NewWithBaseURL returns a provider for the Ollama server at baseURL
func NewWithBaseURL(baseURL string) *Ollama {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(5*time.Minute).
		SetHeader("Content-Type", "application/json")

	return &Ollama{http: client}
}

func (o *Ollama) Name() string {
	return "ollama"
}

type generateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Format  string         `json:"format,omitempty"`
	Options map[string]any `json:"options"`
}

// Generate calls /api/generate without streaming
func (o *Ollama) Generate(ctx context.Context, config providers.Config) (string, error) {
	body := generateRequest{
		Model:  config.Model,
		Prompt: config.Prompt,
		Options: map[string]any{
			"temperature": config.Temperature,
		},
	}
	if config.JSON {
		body.Format = "json"
	}

	var response struct {
		Response string `json:"response"`
	}
	resp, err := o.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&response).
		Post("/api/generate")
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}

	if resp.IsError() {
		return "", fmt.Errorf("ollama API returned status %d: %s", resp.StatusCode(), resp.String())
	}

	return response.Response, nil
}
