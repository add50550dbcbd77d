package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/teamsuite/workflow-core/internal/adapters/http/handlers"
	"github.com/teamsuite/workflow-core/internal/ports"
)

// fakeRegistry returns canned check results.
type fakeRegistry struct {
	results map[string]error
}

func (f *fakeRegistry) Register(_ ports.HealthChecker) {}

func (f *fakeRegistry) CheckAll(_ context.Context) map[string]error {
	return f.results
}

func TestHealthHandler_Liveness(t *testing.T) {
	t.Parallel()

	h := handlers.NewHealthHandler(&fakeRegistry{})

	rec := httptest.NewRecorder()
	h.Liveness(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %q, want %q", body["status"], "ok")
	}
}

func TestHealthHandler_ReadinessAllHealthy(t *testing.T) {
	t.Parallel()

	h := handlers.NewHealthHandler(&fakeRegistry{results: map[string]error{
		"memory":     nil,
		"notify-api": nil,
	}})

	rec := httptest.NewRecorder()
	h.Readiness(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Status != "ready" {
		t.Errorf("status = %q, want %q", body.Status, "ready")
	}
	if body.Checks["memory"] != "ok" || body.Checks["notify-api"] != "ok" {
		t.Errorf("checks = %v, want all ok", body.Checks)
	}
}

func TestHealthHandler_ReadinessFailingCheck(t *testing.T) {
	t.Parallel()

	h := handlers.NewHealthHandler(&fakeRegistry{results: map[string]error{
		"memory":     nil,
		"notify-api": errors.New("connection refused"),
	}})

	rec := httptest.NewRecorder()
	h.Readiness(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}

	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Status != "not_ready" {
		t.Errorf("status = %q, want %q", body.Status, "not_ready")
	}
	if body.Checks["notify-api"] != "connection refused" {
		t.Errorf("failing check = %q, want the error message", body.Checks["notify-api"])
	}
	if body.Checks["memory"] != "ok" {
		t.Errorf("healthy check = %q, want ok", body.Checks["memory"])
	}
}
