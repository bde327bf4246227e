package ai

import (
	"errors"
	"strings"
	"testing"

	genai "github.com/google/generative-ai-go/genai"
)

// TestSanitizeScrubsCredential verifies the API key never leaks through error
// text, neither verbatim nor inside a query string.
func TestSanitizeScrubsCredential(t *testing.T) {
	client := &GeminiClient{apiKey: "AIzaSecret123"}

	err := client.sanitize(errors.New("googleapi: 400 calling https://api.example/v1?key=AIzaSecret123&alt=json"))
	if strings.Contains(err.Error(), "AIzaSecret123") {
		t.Fatalf("credential leaked: %v", err)
	}
	if !strings.Contains(err.Error(), "key=[redacted]") {
		t.Fatalf("expected query redaction, got %v", err)
	}

	err = client.sanitize(errors.New("bad token AIzaSecret123 rejected"))
	if !strings.Contains(err.Error(), "[redacted]") {
		t.Fatalf("expected redaction, got %v", err)
	}
}

// TestCollectText verifies candidate extraction and the empty cases.
func TestCollectText(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{
				Parts: []genai.Part{genai.Text("hello "), genai.Text("world")},
			},
		}},
	}

	text, err := collectText(resp)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if text != "hello world" {
		t.Fatalf("unexpected text: %q", text)
	}

	if _, err := collectText(&genai.GenerateContentResponse{}); err == nil {
		t.Fatal("expected error for missing candidates")
	}

	empty := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{}}},
	}
	if _, err := collectText(empty); err == nil {
		t.Fatal("expected error for empty content")
	}
}
