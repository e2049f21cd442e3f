package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fiction-occupations/enricher/internal/providers"
)

func TestGenerate(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"response":"{\"Genre\":\"Romance\"}","done":true}`))
	}))
	defer srv.Close()

	o := NewWithBaseURL(srv.URL)
	out, err := o.Generate(context.Background(), providers.Config{
		Model:       "mistral",
		Temperature: 0.1,
		Prompt:      "p",
		JSON:        true,
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if out != `{"Genre":"Romance"}` {
		t.Errorf("Unexpected response %q", out)
	}
	if captured["format"] != "json" {
		t.Errorf("Expected json format, got %v", captured["format"])
	}
	if captured["stream"] != false {
		t.Errorf("Expected stream=false, got %v", captured["stream"])
	}
	opts, _ := captured["options"].(map[string]any)
	if opts["temperature"] != 0.1 {
		t.Errorf("Expected temperature 0.1, got %v", opts["temperature"])
	}
}

func TestGenerateErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewWithBaseURL(srv.URL).Generate(context.Background(), providers.Config{Model: "missing"})
	if err == nil {
		t.Fatal("Expected error for 404, got nil")
	}
}
