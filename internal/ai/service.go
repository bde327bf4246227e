package ai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"example.com/chronos/backend/internal/ratelimit"
)

// History windows embedded in prompts. Bounded so a long-lived tracker never
// pushes a request past model context or body-size limits.
const (
	forecastRecordWindow  = 20
	forecastReceiptWindow = 10
	healthRecordWindow    = 50
	healthReceiptWindow   = 50
)

const defaultUpstreamTimeout = 30 * time.Second

// Service is the AI gateway: it validates a typed request, gates it through
// the rate limiter, builds the prompt, invokes the model, and parses the
// result. Each request is stateless end-to-end except for the limiter's
// counters.
type Service struct {
	generator Generator
	limiter   *ratelimit.Limiter
	timeout   time.Duration
}

// NewService wires the gateway to a completion model and a rate limiter.
func NewService(generator Generator, limiter *ratelimit.Limiter, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = defaultUpstreamTimeout
	}

	return &Service{
		generator: generator,
		limiter:   limiter,
		timeout:   timeout,
	}
}

// SmartCommand parses a free-text instruction into a structured action.
// Validation runs before the limiter, so an empty command costs no quota.
func (s *Service) SmartCommand(ctx context.Context, identity, command string, clients []Client) (SmartCommandResult, error) {
	if strings.TrimSpace(command) == "" {
		return SmartCommandResult{}, invalidInput("command is required")
	}

	if !s.limiter.Allow(identity) {
		return SmartCommandResult{}, ErrRateLimited
	}

	names := make([]string, 0, len(clients))
	for _, client := range clients {
		if strings.TrimSpace(client.Name) != "" {
			names = append(names, client.Name)
		}
	}
	clientNames := "Default Client"
	if len(names) > 0 {
		clientNames = strings.Join(names, ", ")
	}

	prompt := fmt.Sprintf(`You are an AI assistant for Chronos, a work tracker.
Available clients: %s.
Available actions: 'work' (log time), 'expense' (log money), 'sync' (sync pending), 'report' (summary), 'fix' (polish notes).
Command: %q`, clientNames, command)

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	content, err := s.generator.Generate(callCtx, prompt, smartCommandSchema)
	if err != nil {
		return SmartCommandResult{}, upstream("smart command", err)
	}

	var result SmartCommandResult
	if err := parseJSON(content, &result); err != nil {
		return SmartCommandResult{}, upstream("smart command", err)
	}

	result.Type = normalizeCommandType(result.Type)
	return result, nil
}

// Forecast returns the model's narrative revenue outlook for one client. The
// prose is the artifact; no schema is imposed.
func (s *Service) Forecast(ctx context.Context, identity string, records []WorkRecord, receipts []ReceiptRecord, client *Client) (string, error) {
	if client == nil || strings.TrimSpace(client.Name) == "" {
		return "", invalidInput("client data is required")
	}

	if !s.limiter.Allow(identity) {
		return "", ErrRateLimited
	}

	data, err := json.Marshal(map[string]any{
		"records":  lastN(records, forecastRecordWindow),
		"receipts": lastN(receipts, forecastReceiptWindow),
	})
	if err != nil {
		return "", invalidInput("records are not serializable")
	}

	prompt := fmt.Sprintf(
		"You are a CFO. Based on this work/expense data for client %s, predict the total revenue for the end of this month. Identify the biggest 'profit killer' and give 1 strategic move to increase margins. Data: %s",
		client.Name, data,
	)

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	forecast, err := s.generator.Generate(callCtx, prompt, nil)
	if err != nil {
		return "", upstream("forecast", err)
	}
	if strings.TrimSpace(forecast) == "" {
		return "", upstream("forecast", errors.New("empty forecast"))
	}

	return forecast, nil
}

// ClientHealth scores every client on profitability, stability, and growth.
// Scores are schema-constrained to numbers but not clamped to 0-100.
func (s *Service) ClientHealth(ctx context.Context, identity string, records []WorkRecord, receipts []ReceiptRecord, clients []Client) ([]ClientHealth, error) {
	if len(clients) == 0 {
		return nil, invalidInput("clients data is required")
	}

	if !s.limiter.Allow(identity) {
		return nil, ErrRateLimited
	}

	clientData, _ := json.Marshal(clients)
	recordData, _ := json.Marshal(lastN(records, healthRecordWindow))
	receiptData, _ := json.Marshal(lastN(receipts, healthReceiptWindow))

	prompt := fmt.Sprintf(
		"Analyze the profitability of these clients. Compare hours worked vs expenses incurred. Return a JSON array of health metrics (0-100) for each. Clients: %s Records: %s Expenses: %s",
		clientData, recordData, receiptData,
	)

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	content, err := s.generator.Generate(callCtx, prompt, clientHealthSchema)
	if err != nil {
		return nil, upstream("client health", err)
	}

	var result []ClientHealth
	if err := parseJSONArray(content, &result); err != nil {
		return nil, upstream("client health", err)
	}

	return result, nil
}

// ParseReceipt extracts vendor, amount, and date from a receipt photo. Any
// data-URL prefix is stripped before the remainder is decoded as base64.
func (s *Service) ParseReceipt(ctx context.Context, identity, image string) (ReceiptParseResult, error) {
	if strings.TrimSpace(image) == "" {
		return ReceiptParseResult{}, invalidInput("base64 image is required")
	}

	if !s.limiter.Allow(identity) {
		return ReceiptParseResult{}, ErrRateLimited
	}

	payload, format := splitDataURL(image)
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return ReceiptParseResult{}, upstream("parse receipt", fmt.Errorf("decode image: %w", err))
	}

	prompt := "Extract details into JSON: total amount, vendor, date (YYYY-MM-DD), category, and 'isTaxDeductible' (boolean)."

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	content, err := s.generator.GenerateVision(callCtx, prompt, raw, format, receiptSchema)
	if err != nil {
		return ReceiptParseResult{}, upstream("parse receipt", err)
	}

	var result ReceiptParseResult
	if err := parseJSON(content, &result); err != nil {
		return ReceiptParseResult{}, upstream("parse receipt", err)
	}

	return result, nil
}

func normalizeCommandType(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case CommandTypeWork:
		return CommandTypeWork
	case CommandTypeExpense:
		return CommandTypeExpense
	case CommandTypeSync:
		return CommandTypeSync
	case CommandTypeReport:
		return CommandTypeReport
	case CommandTypeFix:
		return CommandTypeFix
	default:
		return CommandTypeUnknown
	}
}

// splitDataURL separates an optional "data:image/...;base64," prefix from the
// payload and reports the image format, defaulting to jpeg.
func splitDataURL(image string) (payload, format string) {
	payload = image
	format = "jpeg"

	if idx := strings.Index(image, ","); idx >= 0 {
		prefix := image[:idx]
		payload = image[idx+1:]

		if rest, ok := strings.CutPrefix(prefix, "data:image/"); ok {
			if semi := strings.Index(rest, ";"); semi > 0 {
				format = rest[:semi]
			}
		}
	}

	return payload, format
}

func lastN[T any](values []T, n int) []T {
	if len(values) <= n {
		return values
	}
	return values[len(values)-n:]
}

func parseJSON(input string, target any) error {
	payload := extractJSON(input, "{", "}")
	if payload == "" {
		return errors.New("ai response does not contain json")
	}

	return json.Unmarshal([]byte(payload), target)
}

func parseJSONArray(input string, target any) error {
	payload := extractJSON(input, "[", "]")
	if payload == "" {
		return errors.New("ai response does not contain a json array")
	}

	return json.Unmarshal([]byte(payload), target)
}

// extractJSON trims markdown code fences and surrounding prose that slip
// through despite the response MIME type.
func extractJSON(input, opening, closing string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return ""
	}

	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```")
		trimmed = strings.TrimPrefix(strings.TrimSpace(trimmed), "json")
		trimmed = strings.TrimSpace(trimmed)
		if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
			trimmed = trimmed[:idx]
		}
		trimmed = strings.TrimSpace(trimmed)
	}

	start := strings.Index(trimmed, opening)
	end := strings.LastIndex(trimmed, closing)
	if start == -1 || end == -1 || end <= start {
		return ""
	}

	return trimmed[start : end+1]
}
