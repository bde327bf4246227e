package chronossdk

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func newTestSheetsClient() *SheetsClient {
	return &SheetsClient{
		HTTPClient: &http.Client{Timeout: time.Second},
		pacer:      rate.NewLimiter(rate.Inf, 1),
		sleep:      func(time.Duration) {},
	}
}

// TestValidateSheetURL verifies the Apps Script URL pattern.
func TestValidateSheetURL(t *testing.T) {
	valid := []string{
		"https://script.google.com/macros/s/AKfycbxyz123_-/exec",
		"https://script.google.com/macros/s/A/exec",
	}
	for _, url := range valid {
		if !ValidateSheetURL(url) {
			t.Fatalf("expected valid: %s", url)
		}
	}

	invalid := []string{
		"",
		"http://script.google.com/macros/s/abc/exec",
		"https://script.google.com/macros/s//exec",
		"https://script.google.com/macros/s/abc/exec/extra",
		"https://example.com/macros/s/abc/exec",
		"https://script.google.com/macros/s/abc$def/exec",
	}
	for _, url := range invalid {
		if ValidateSheetURL(url) {
			t.Fatalf("expected invalid: %s", url)
		}
	}
}

// TestTestConnectionInvalidURL verifies the validation message without any
// network call.
func TestTestConnectionInvalidURL(t *testing.T) {
	client := newTestSheetsClient()

	result := client.TestConnection(context.Background(), "https://example.com/exec", "Acme")
	if result.Success {
		t.Fatal("expected failure for an invalid URL")
	}
	if !strings.Contains(result.Message, "Invalid URL format") {
		t.Fatalf("unexpected message: %q", result.Message)
	}
}

// TestSyncRecordPayload verifies the sync envelope fields.
func TestSyncRecordPayload(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
	}))
	defer srv.Close()

	client := newTestSheetsClient()
	record := WorkRecord{ID: "r1", Date: "2025-06-01", DurationMinutes: 90}

	// post() only cares about the URL it is given; route through the test
	// server directly.
	payload := workSyncPayload{
		WorkRecord: record,
		SyncType:   "work",
		SyncID:     "sync-1",
		SyncedAt:   time.Now().UTC().Format(time.RFC3339),
	}
	if err := client.post(context.Background(), srv.URL, payload); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if gotBody["syncType"] != "work" {
		t.Fatalf("unexpected syncType: %v", gotBody["syncType"])
	}
	if gotBody["syncId"] != "sync-1" {
		t.Fatalf("unexpected syncId: %v", gotBody["syncId"])
	}
	if gotBody["durationMinutes"] != float64(90) {
		t.Fatalf("unexpected record fields: %v", gotBody)
	}
}

// TestPostAcceptsAnyStatus verifies a completed exchange counts as sent even
// when the endpoint answers with an error status.
func TestPostAcceptsAnyStatus(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := newTestSheetsClient()
	if err := client.post(context.Background(), srv.URL, map[string]any{"syncType": "test"}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected a single attempt, got %d", calls)
	}
}

// TestPostRetriesTransportErrors verifies the fixed-delay retry ceiling.
func TestPostRetriesTransportErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // every request now fails at the transport level

	sleeps := 0
	client := newTestSheetsClient()
	client.sleep = func(d time.Duration) {
		if d != syncRetryDelay {
			t.Fatalf("unexpected delay: %v", d)
		}
		sleeps++
	}

	if err := client.post(context.Background(), srv.URL, map[string]any{"syncType": "test"}); err == nil {
		t.Fatal("expected an error after exhausting retries")
	}
	if sleeps != maxSyncRetries {
		t.Fatalf("expected %d retries, got %d", maxSyncRetries, sleeps)
	}
}

// TestSyncBatchEmpty verifies the no-op result for an empty record set.
func TestSyncBatchEmpty(t *testing.T) {
	client := newTestSheetsClient()

	result := client.SyncBatch(context.Background(), nil, "https://script.google.com/macros/s/abc/exec")
	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
	if result.Message != "No records to sync" {
		t.Fatalf("unexpected message: %q", result.Message)
	}
}

// TestSyncBatchChunks verifies large sets are split into bounded posts.
func TestSyncBatchChunks(t *testing.T) {
	var sizes []int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Records []WorkRecord `json:"records"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		sizes = append(sizes, len(body.Records))
	}))
	defer srv.Close()

	client := newTestSheetsClient()
	records := make([]WorkRecord, syncBatchSize+10)

	result := client.postBatches(context.Background(), srv.URL, records)
	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}

	if len(sizes) != 2 || sizes[0] != syncBatchSize || sizes[1] != 10 {
		t.Fatalf("unexpected chunk sizes: %v", sizes)
	}
}
