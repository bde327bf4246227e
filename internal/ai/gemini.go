package ai

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

var keyQueryPattern = regexp.MustCompile(`key=[^&\s]+`)

// GeminiClient calls the Gemini API through the official SDK. It is the only
// holder of the upstream credential; every error leaving it is scrubbed so
// the key cannot surface in responses or logs.
type GeminiClient struct {
	client    *genai.Client
	apiKey    string
	model     string
	maxTokens int32
}

// NewGeminiClient creates a Gemini-backed generator for the given model.
func NewGeminiClient(ctx context.Context, apiKey, model string, maxTokens int) (*GeminiClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("gemini api key is missing")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &GeminiClient{
		client:    client,
		apiKey:    apiKey,
		model:     model,
		maxTokens: int32(maxTokens),
	}, nil
}

// Generate sends a text prompt and returns the concatenated response text.
func (c *GeminiClient) Generate(ctx context.Context, prompt string, schema *genai.Schema) (string, error) {
	model := c.newModel(schema)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", c.sanitize(err)
	}

	return collectText(resp)
}

// GenerateVision sends an inline image part alongside a text instruction.
func (c *GeminiClient) GenerateVision(ctx context.Context, prompt string, image []byte, format string, schema *genai.Schema) (string, error) {
	model := c.newModel(schema)

	resp, err := model.GenerateContent(ctx, genai.ImageData(format, image), genai.Text(prompt))
	if err != nil {
		return "", c.sanitize(err)
	}

	return collectText(resp)
}

// Close releases the underlying API connection.
func (c *GeminiClient) Close() error {
	return c.client.Close()
}

// newModel builds a fresh model value per call so schema configuration on
// concurrent requests never races.
func (c *GeminiClient) newModel(schema *genai.Schema) *genai.GenerativeModel {
	model := c.client.GenerativeModel(c.model)
	model.SetTemperature(0.2)
	if c.maxTokens > 0 {
		model.SetMaxOutputTokens(c.maxTokens)
	}
	if schema != nil {
		model.ResponseMIMEType = "application/json"
		model.ResponseSchema = schema
	}
	return model
}

func (c *GeminiClient) sanitize(err error) error {
	message := strings.ReplaceAll(err.Error(), c.apiKey, "[redacted]")
	message = keyQueryPattern.ReplaceAllString(message, "key=[redacted]")
	return errors.New(message)
}

func collectText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("gemini response missing candidates")
	}

	var builder strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			builder.WriteString(string(text))
		}
	}

	if builder.Len() == 0 {
		return "", errors.New("gemini response missing content")
	}

	return builder.String(), nil
}
