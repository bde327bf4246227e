package chronossdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// Delivery is best-effort and fire-and-forget: a completed HTTP exchange
// counts as sent (the Apps Script endpoint accepts opaque posts), network
// failures are retried with a fixed delay up to a small ceiling.
const (
	maxSyncRetries = 3
	syncRetryDelay = time.Second
	syncBatchSize  = 50
)

var scriptURLPattern = regexp.MustCompile(`^https://script\.google\.com/macros/s/[a-zA-Z0-9_-]+/exec$`)

type SyncResult struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp,omitempty"`
}

// SheetsClient pushes work and receipt records to a user-supplied Google
// Apps Script web app. Outbound posts are paced so batch syncs cannot hammer
// the endpoint.
type SheetsClient struct {
	HTTPClient *http.Client

	pacer *rate.Limiter
	sleep func(time.Duration)
}

// NewSheetsClient creates a sync client with default pacing.
func NewSheetsClient() *SheetsClient {
	return &SheetsClient{
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		pacer:      rate.NewLimiter(rate.Every(200*time.Millisecond), 1),
		sleep:      time.Sleep,
	}
}

// ValidateSheetURL reports whether url is a proper Apps Script web app URL.
func ValidateSheetURL(url string) bool {
	return scriptURLPattern.MatchString(url)
}

// TestConnection sends a marker row without touching real records.
func (s *SheetsClient) TestConnection(ctx context.Context, webAppURL, clientName string) SyncResult {
	if !ValidateSheetURL(webAppURL) {
		return SyncResult{Success: false, Message: "Invalid URL format. Must be https://script.google.com/macros/s/.../exec"}
	}

	if clientName == "" {
		clientName = "Test Client"
	}

	payload := map[string]any{
		"syncType":   "test",
		"clientName": clientName,
		"syncId":     uuid.NewString(),
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
	}

	if err := s.post(ctx, webAppURL, payload); err != nil {
		return SyncResult{Success: false, Message: fmt.Sprintf("Connection failed: %v", err)}
	}

	return SyncResult{
		Success:   true,
		Message:   "Request sent successfully. Check your sheet for confirmation.",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// SyncRecord pushes a single work record.
func (s *SheetsClient) SyncRecord(ctx context.Context, record WorkRecord, webAppURL string) SyncResult {
	if !ValidateSheetURL(webAppURL) {
		return SyncResult{Success: false, Message: "Invalid Google Script URL"}
	}

	payload := workSyncPayload{
		WorkRecord: record,
		SyncType:   "work",
		SyncID:     uuid.NewString(),
		SyncedAt:   time.Now().UTC().Format(time.RFC3339),
	}

	if err := s.post(ctx, webAppURL, payload); err != nil {
		return SyncResult{Success: false, Message: err.Error()}
	}

	return SyncResult{Success: true, Message: "Record synced", Timestamp: payload.SyncedAt}
}

// SyncReceipt pushes a single receipt record.
func (s *SheetsClient) SyncReceipt(ctx context.Context, receipt ReceiptRecord, webAppURL string) SyncResult {
	if !ValidateSheetURL(webAppURL) {
		return SyncResult{Success: false, Message: "Invalid Google Script URL"}
	}

	payload := receiptSyncPayload{
		ReceiptRecord: receipt,
		SyncType:      "receipt",
		SyncID:        uuid.NewString(),
		SyncedAt:      time.Now().UTC().Format(time.RFC3339),
	}

	if err := s.post(ctx, webAppURL, payload); err != nil {
		return SyncResult{Success: false, Message: err.Error()}
	}

	return SyncResult{Success: true, Message: "Receipt synced", Timestamp: payload.SyncedAt}
}

// SyncBatch pushes many work records in chunks to keep payloads small.
func (s *SheetsClient) SyncBatch(ctx context.Context, records []WorkRecord, webAppURL string) SyncResult {
	if !ValidateSheetURL(webAppURL) {
		return SyncResult{Success: false, Message: "Invalid Google Script URL"}
	}

	if len(records) == 0 {
		return SyncResult{Success: true, Message: "No records to sync"}
	}

	return s.postBatches(ctx, webAppURL, records)
}

func (s *SheetsClient) postBatches(ctx context.Context, url string, records []WorkRecord) SyncResult {
	batches := 0
	for start := 0; start < len(records); start += syncBatchSize {
		end := min(start+syncBatchSize, len(records))

		payload := map[string]any{
			"syncType": "batch",
			"syncId":   uuid.NewString(),
			"records":  records[start:end],
		}
		if err := s.post(ctx, url, payload); err != nil {
			return SyncResult{Success: false, Message: err.Error()}
		}
		batches++
	}

	return SyncResult{
		Success:   true,
		Message:   fmt.Sprintf("%d records synced in %d batch(es)", len(records), batches),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

type workSyncPayload struct {
	WorkRecord
	SyncType string `json:"syncType"`
	SyncID   string `json:"syncId"`
	SyncedAt string `json:"syncedAt"`
}

type receiptSyncPayload struct {
	ReceiptRecord
	SyncType string `json:"syncType"`
	SyncID   string `json:"syncId"`
	SyncedAt string `json:"syncedAt"`
}

func (s *SheetsClient) post(ctx context.Context, url string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	if err := s.pacer.Wait(ctx); err != nil {
		return err
	}

	var lastErr error
	for attempt := 0; attempt <= maxSyncRetries; attempt++ {
		if attempt > 0 {
			s.sleep(syncRetryDelay)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := s.HTTPClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		return nil
	}

	return lastErr
}
