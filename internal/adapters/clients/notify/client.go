// Package notify implements the Notifier port against the external
// notification dispatcher's HTTP API. Delivery guarantees (retries past the
// client's own retry budget, email/push fan-out, batching) belong to the
// dispatcher; this client only hands events over.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/teamsuite/workflow-core/internal/platform/config"
	"github.com/teamsuite/workflow-core/internal/platform/httpclient"
	"github.com/teamsuite/workflow-core/internal/platform/telemetry"
	"github.com/teamsuite/workflow-core/internal/ports"
)

// Compile-time check that Client implements the Notifier port.
var _ ports.Notifier = (*Client)(nil)

// notification is the dispatcher's wire format.
type notification struct {
	UserID  int64          `json:"user_id"`
	Kind    string         `json:"kind"`
	Payload map[string]any `json:"payload,omitempty"`
}

// Client delivers notifications over HTTP through the instrumented client
// (circuit breaker, rate limit, retry, tracing).
type Client struct {
	http *httpclient.Client
}

// New creates a notification client for the dispatcher at cfg.BaseURL.
func New(cfg *config.ClientConfig, metrics *telemetry.Metrics, logger *slog.Logger) *Client {
	return &Client{
		http: httpclient.New(cfg, "notify-api", metrics, logger),
	}
}

// HTTPClient exposes the underlying instrumented client, mainly so the
// health registry can observe the circuit breaker state.
func (c *Client) HTTPClient() *httpclient.Client {
	return c.http
}

// Notify posts a single notification event to the dispatcher.
func (c *Client) Notify(ctx context.Context, userID int64, kind ports.NotificationKind, payload map[string]any) error {
	body, err := json.Marshal(notification{
		UserID:  userID,
		Kind:    string(kind),
		Payload: payload,
	})
	if err != nil {
		return fmt.Errorf("encoding notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.http.BaseURL()+"/v1/notifications", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(ctx, req)
	if resp != nil {
		defer func() {
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()
		}()
	}
	if err != nil {
		return fmt.Errorf("delivering %s notification to user %d: %w", kind, userID, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("delivering %s notification to user %d: dispatcher returned %d", kind, userID, resp.StatusCode)
	}
	return nil
}
