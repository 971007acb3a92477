package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOllamaComplete(t *testing.T) {
	var gotReq ollamaChatReq
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(ollamaChatResp{
			Message: ollamaMsg{Role: "assistant", Content: `{"next_question": "hi"}`},
		})
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "llama3:latest")
	out, err := p.Complete(context.Background(), []Message{
		{Role: "user", Content: "hello"},
	}, Options{MaxTokens: 100, Temperature: 0.7, JSONOutput: true})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if out != `{"next_question": "hi"}` {
		t.Fatalf("unexpected completion: %q", out)
	}

	if gotReq.Format != "json" {
		t.Fatalf("JSONOutput must request format=json, got %q", gotReq.Format)
	}
	if gotReq.Stream {
		t.Fatalf("completion must not stream")
	}
	if gotReq.Options["num_predict"] != float64(100) {
		t.Fatalf("max tokens not forwarded: %v", gotReq.Options)
	}
}

func TestOllamaComplete_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "llama3:latest")
	if _, err := p.Complete(context.Background(), nil, Options{}); err == nil {
		t.Fatalf("expected an error on 500")
	}
}

func TestOllamaComplete_ErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ollamaChatResp{Error: "model not loaded"})
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "llama3:latest")
	_, err := p.Complete(context.Background(), nil, Options{})
	if err == nil || err.Error() != "model not loaded" {
		t.Fatalf("expected provider error to surface, got %v", err)
	}
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	reg.Register("Ollama", func(ctx context.Context, model string) (Provider, error) {
		return NewOllamaProvider("http://localhost:11434", model), nil
	})

	if _, err := reg.Get(context.Background(), "ollama", "llama3:latest"); err != nil {
		t.Fatalf("lookup should be case-insensitive: %v", err)
	}
	if _, err := reg.Get(context.Background(), "missing", ""); !errors.Is(err, ErrUnknownProvider) {
		t.Fatalf("expected ErrUnknownProvider, got %v", err)
	}
}

func TestConfigured(t *testing.T) {
	if NewOllamaProvider("http://localhost:11434", "llama3:latest").Configured() != true {
		t.Fatalf("ollama provider with model should be configured")
	}
	if (&OllamaProvider{BaseURL: "http://localhost:11434"}).Configured() {
		t.Fatalf("missing model must report unconfigured")
	}
	if NewOpenAIProvider("", "", "gpt-4o").Configured() {
		t.Fatalf("missing api key must report unconfigured")
	}
	if !NewOpenAIProvider("sk-test", "", "gpt-4o").Configured() {
		t.Fatalf("key and model present should be configured")
	}
}
