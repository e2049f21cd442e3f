package openai

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fiction-occupations/enricher/internal/providers"
	"github.com/go-resty/resty/v2"
)

const defaultBaseURL = "https://api.openai.com"

// OpenAI is a provider for the OpenAI chat completions API
type OpenAI struct {
	apiKey string
	http   *resty.Client
}

// New returns a new OpenAI provider reading OPENAI_API_KEY
func New() *OpenAI {
	return NewWithBaseURL(defaultBaseURL, os.Getenv("OPENAI_API_KEY"))
}

// NewWithBaseURL returns a provider talking to an OpenAI-compatible endpoint
func NewWithBaseURL(baseURL, apiKey string) *OpenAI {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(2*time.Minute).
		SetHeader("Content-Type", "application/json")

	return &OpenAI{apiKey: apiKey, http: client}
}

func (o *OpenAI) Name() string {
	return "openai"
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	Temperature    float64           `json:"temperature"`
	ResponseFormat map[string]string `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Generate sends the prompt as a single user message
func (o *OpenAI) Generate(ctx context.Context, config providers.Config) (string, error) {
	if o.apiKey == "" {
		return "", fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}

	body := chatRequest{
		Model:       config.Model,
		Messages:    []chatMessage{{Role: "user", Content: config.Prompt}},
		Temperature: config.Temperature,
	}
	if config.JSON {
		body.ResponseFormat = map[string]string{"type": "json_object"}
	}

	var response chatResponse
	resp, err := o.http.R().
		SetContext(ctx).
		SetAuthToken(o.apiKey).
		SetBody(body).
		SetResult(&response).
		Post("/v1/chat/completions")
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}

	if resp.IsError() {
		return "", fmt.Errorf("received non-200 status code: %d - %s", resp.StatusCode(), resp.String())
	}

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no choices returned from OpenAI")
	}

	return response.Choices[0].Message.Content, nil
}
