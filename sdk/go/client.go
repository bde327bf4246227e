// Package chronossdk is the caller-side proxy for the Chronos AI API. It
// hides the deployment topology (a conventional server with one path per
// action, or a single-endpoint function) behind one call shape per action.
package chronossdk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Mode selects the physical transport. It is resolved once from the
// deployment context, never from request content.
type Mode int

const (
	// ModeServer targets the conventional deployment: POST /api/ai/<action>.
	ModeServer Mode = iota
	// ModeFunction targets the single-endpoint deployment: POST /ai with an
	// action discriminant in the body.
	ModeFunction
)

// ErrEmptyInput rejects a request client-side before any network call.
var ErrEmptyInput = errors.New("chronossdk: empty input")

// ResolveMode picks the transport from the host the app is served on,
// matching the function-platform naming convention.
func ResolveMode(hostname string) Mode {
	if strings.Contains(hostname, "netlify") || strings.HasSuffix(hostname, ".app") {
		return ModeFunction
	}
	return ModeServer
}

// Client is the Chronos AI proxy client.
type Client struct {
	BaseURL    string
	Mode       Mode
	HTTPClient *http.Client
	Timeout    time.Duration
}

// New creates a client with sane defaults.
func New(baseURL string, mode Mode) *Client {
	return &Client{
		BaseURL: baseURL,
		Mode:    mode,
		Timeout: 60 * time.Second,
	}
}

// API model types (partial, mirroring the server contract).

type ClientProfile struct {
	ID         string  `json:"id,omitempty"`
	Name       string  `json:"name"`
	HourlyRate float64 `json:"hourlyRate,omitempty"`
	Currency   string  `json:"currency,omitempty"`
}

type WorkRecord struct {
	ID              string  `json:"id,omitempty"`
	ClientID        string  `json:"clientId,omitempty"`
	Date            string  `json:"date"`
	StartTime       string  `json:"startTime,omitempty"`
	EndTime         string  `json:"endTime,omitempty"`
	DurationMinutes float64 `json:"durationMinutes"`
	Category        string  `json:"category,omitempty"`
	Notes           string  `json:"notes,omitempty"`
}

type ReceiptRecord struct {
	ID              string  `json:"id,omitempty"`
	ClientID        string  `json:"clientId,omitempty"`
	Date            string  `json:"date"`
	Vendor          string  `json:"vendor"`
	Amount          float64 `json:"amount"`
	Category        string  `json:"category,omitempty"`
	Notes           string  `json:"notes,omitempty"`
	IsTaxDeductible bool    `json:"isTaxDeductible,omitempty"`
}

type SmartCommandResult struct {
	Type            string  `json:"type"`
	ClientName      string  `json:"clientName,omitempty"`
	Amount          float64 `json:"amount,omitempty"`
	DurationMinutes float64 `json:"durationMinutes,omitempty"`
	Notes           string  `json:"notes,omitempty"`
	Category        string  `json:"category,omitempty"`
	Message         string  `json:"message,omitempty"`
}

type ClientHealth struct {
	ClientID       string  `json:"clientId"`
	Name           string  `json:"name"`
	Profitability  float64 `json:"profitability"`
	Stability      float64 `json:"stability"`
	Growth         float64 `json:"growth"`
	Recommendation string  `json:"recommendation"`
}

type ReceiptParseResult struct {
	Amount          float64 `json:"amount"`
	Vendor          string  `json:"vendor"`
	Date            string  `json:"date"`
	Category        string  `json:"category,omitempty"`
	IsTaxDeductible bool    `json:"isTaxDeductible,omitempty"`
}

// APIError wraps non-2xx responses with the best-available server message.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// ParseSmartCommand parses a natural-language command into a structured
// action. An unrecognized action tag is treated as "unknown".
func (c *Client) ParseSmartCommand(ctx context.Context, command string, clients []ClientProfile) (SmartCommandResult, error) {
	if strings.TrimSpace(command) == "" {
		return SmartCommandResult{}, ErrEmptyInput
	}

	body := map[string]any{"command": command, "clients": clients}
	var result SmartCommandResult
	if err := c.call(ctx, "smart-command", body, &result); err != nil {
		return SmartCommandResult{}, err
	}

	if !knownCommandType(result.Type) {
		result.Type = "unknown"
	}
	return result, nil
}

// GetStrategicForecast returns the model's narrative revenue outlook.
func (c *Client) GetStrategicForecast(ctx context.Context, records []WorkRecord, receipts []ReceiptRecord, client *ClientProfile) (string, error) {
	if client == nil || strings.TrimSpace(client.Name) == "" {
		return "", ErrEmptyInput
	}

	body := map[string]any{"records": records, "receipts": receipts, "client": client}
	var result struct {
		Forecast string `json:"forecast"`
	}
	if err := c.call(ctx, "forecast", body, &result); err != nil {
		return "", err
	}

	return result.Forecast, nil
}

// AnalyzeClientHealth scores the given clients. Score fields decode strictly
// as numbers; a misbehaving upstream that emits strings fails the decode
// instead of being coerced silently.
func (c *Client) AnalyzeClientHealth(ctx context.Context, records []WorkRecord, receipts []ReceiptRecord, clients []ClientProfile) ([]ClientHealth, error) {
	if len(clients) == 0 {
		return nil, ErrEmptyInput
	}

	body := map[string]any{"records": records, "receipts": receipts, "clients": clients}
	var result []ClientHealth
	if err := c.call(ctx, "client-health", body, &result); err != nil {
		return nil, err
	}

	return result, nil
}

// ParseReceipt extracts expense data from a base64-encoded receipt image.
// A failed scan is a normal outcome: on any error the result is nil, never
// a propagated failure.
func (c *Client) ParseReceipt(ctx context.Context, base64Image string) *ReceiptParseResult {
	if strings.TrimSpace(base64Image) == "" {
		return nil
	}

	body := map[string]any{"image": base64Image}
	var result ReceiptParseResult
	if err := c.call(ctx, "parse-receipt", body, &result); err != nil {
		return nil
	}

	return &result
}

// CheckAIHealth reports backend reachability without invoking any billed AI
// action. In function mode the endpoint is always considered available.
func (c *Client) CheckAIHealth(ctx context.Context) bool {
	if c.Mode == ModeFunction {
		return true
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base()+"/api/health", nil)
	if err != nil {
		return false
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	var health struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return false
	}

	return health.Status == "ok"
}

func (c *Client) call(ctx context.Context, action string, payload map[string]any, out any) error {
	url := c.base() + "/api/ai/" + action
	body := any(payload)
	if c.Mode == ModeFunction {
		url = c.base() + "/ai"
		body = map[string]any{"action": action, "payload": payload}
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(resp),
		}
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// errorMessage prefers the server-supplied message over a generic status.
func errorMessage(resp *http.Response) string {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	return fmt.Sprintf("API error: %d", resp.StatusCode)
}

func knownCommandType(value string) bool {
	switch value {
	case "work", "expense", "sync", "report", "fix", "unknown":
		return true
	default:
		return false
	}
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.Timeout}
	}
	return c.HTTPClient
}

func (c *Client) base() string {
	return strings.TrimRight(c.BaseURL, "/")
}
