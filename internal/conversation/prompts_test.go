package conversation

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadSystemPrompt_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prompt.txt")
	if err := os.WriteFile(path, []byte("  interview instructions  \n"), 0o644); err != nil {
		t.Fatalf("write prompt: %v", err)
	}

	got, err := LoadSystemPrompt(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != "interview instructions" {
		t.Fatalf("unexpected prompt: %q", got)
	}
}

func TestLoadSystemPrompt_MissingFileFallsBack(t *testing.T) {
	got, err := LoadSystemPrompt(filepath.Join(t.TempDir(), "missing.txt"))
	if err == nil {
		t.Fatalf("expected an error for a missing file")
	}
	if got != fallbackSystemPrompt {
		t.Fatalf("expected built-in fallback prompt")
	}
}

func TestLoadSystemPrompt_EmptyFileFallsBack(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prompt.txt")
	if err := os.WriteFile(path, []byte("   \n"), 0o644); err != nil {
		t.Fatalf("write prompt: %v", err)
	}

	got, err := LoadSystemPrompt(path)
	if err == nil {
		t.Fatalf("expected an error for an empty file")
	}
	if got != fallbackSystemPrompt {
		t.Fatalf("expected built-in fallback prompt")
	}
}

func TestUserPromptEnvelope_KeepsRawMessage(t *testing.T) {
	env := userPromptEnvelope("I have 5 years of Go experience")
	if !strings.Contains(env, "I have 5 years of Go experience") {
		t.Fatalf("envelope must contain the raw message")
	}
	if !strings.Contains(env, `"completed"`) {
		t.Fatalf("envelope must spell out the response contract")
	}
}

func TestJobSearchPrompt_SerializesSummary(t *testing.T) {
	p := jobSearchPrompt(Summary{Skills: "Go, SQL", Level: "senior"})
	if !strings.Contains(p, `"skills":"Go, SQL"`) {
		t.Fatalf("summary not serialized into prompt: %s", p)
	}
}
