package notify_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/teamsuite/workflow-core/internal/adapters/clients/notify"
	"github.com/teamsuite/workflow-core/internal/platform/config"
	"github.com/teamsuite/workflow-core/internal/ports"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func testClientConfig(baseURL string) *config.ClientConfig {
	return &config.ClientConfig{
		BaseURL: baseURL,
		Timeout: 5 * time.Second,
		Retry: config.RetryConfig{
			MaxAttempts:     1,
			InitialInterval: 10 * time.Millisecond,
			MaxInterval:     100 * time.Millisecond,
			Multiplier:      2.0,
		},
		CircuitBreaker: config.CircuitBreakerConfig{
			MaxFailures:   3,
			Timeout:       time.Second,
			HalfOpenLimit: 1,
		},
	}
}

func TestNotify_PostsWireFormat(t *testing.T) {
	t.Parallel()

	var got struct {
		UserID  int64          `json:"user_id"`
		Kind    string         `json:"kind"`
		Payload map[string]any `json:"payload"`
	}
	var gotPath, gotContentType string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	client := notify.New(testClientConfig(srv.URL), nil, testLogger())

	err := client.Notify(context.Background(), 42, ports.KindIssueAssigned, map[string]any{
		"issue_key": "HRM-7",
	})
	if err != nil {
		t.Fatalf("Notify() = %v", err)
	}

	if gotPath != "/v1/notifications" {
		t.Errorf("path = %q, want /v1/notifications", gotPath)
	}
	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", gotContentType)
	}
	if got.UserID != 42 {
		t.Errorf("user_id = %d, want 42", got.UserID)
	}
	if got.Kind != string(ports.KindIssueAssigned) {
		t.Errorf("kind = %q, want %q", got.Kind, ports.KindIssueAssigned)
	}
	if got.Payload["issue_key"] != "HRM-7" {
		t.Errorf("payload = %v, want issue_key HRM-7", got.Payload)
	}
}

func TestNotify_DispatcherRejection(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	client := notify.New(testClientConfig(srv.URL), nil, testLogger())

	err := client.Notify(context.Background(), 7, ports.KindSprintStarted, nil)
	if err == nil {
		t.Fatal("Notify() = nil, want error for 422 response")
	}
}

func TestNotify_ServerErrorsRetried(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	cfg := testClientConfig(srv.URL)
	cfg.Retry.MaxAttempts = 3
	client := notify.New(cfg, nil, testLogger())

	if err := client.Notify(context.Background(), 7, ports.KindSprintEnding, nil); err != nil {
		t.Fatalf("Notify() = %v, want success after retry", err)
	}
	if calls.Load() != 2 {
		t.Errorf("dispatcher calls = %d, want 2 (one retry)", calls.Load())
	}
}
