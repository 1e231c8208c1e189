// Package alert dispatches watchdog notifications to an external webhook.
// Delivery is best-effort with bounded retries: an unreachable webhook must
// never block or fail the pipeline that raised the alert.
package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"gaia/internal/config"
	"gaia/internal/model"
)

// Notification is the webhook payload.
type Notification struct {
	Level   model.AlertLevel `json:"level"`
	Message string           `json:"message"`
	SceneID string           `json:"scene_id,omitempty"`
	JobID   string           `json:"job_id,omitempty"`
	SentAt  time.Time        `json:"sent_at"`
}

// Notifier delivers notifications. Implementations must be safe for
// concurrent use.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// WebhookNotifier posts JSON notifications to a configured URL with
// exponential backoff. A zero-value URL disables it.
type WebhookNotifier struct {
	url        string
	client     *http.Client
	maxElapsed time.Duration
}

// NewWebhook builds a notifier from config. When no webhook URL is
// configured the notifier is disabled: Notify logs the drop and returns nil.
func NewWebhook(cfg config.AlertConfig) *WebhookNotifier {
	if cfg.WebhookURL == "" {
		logJSON(map[string]any{
			"component": "alert",
			"event":     "webhook_disabled",
			"msg":       "no webhook url configured, alerts will be dropped",
		})
	}
	return &WebhookNotifier{
		url: cfg.WebhookURL,
		client: &http.Client{
			Timeout:   cfg.RequestTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		maxElapsed: cfg.MaxRetryElapsed,
	}
}

var _ Notifier = (*WebhookNotifier)(nil)

// Notify posts the notification, retrying transient failures with
// exponential backoff until maxElapsed is exhausted.
func (w *WebhookNotifier) Notify(ctx context.Context, n Notification) error {
	if w.url == "" {
		return nil
	}
	if n.SentAt.IsZero() {
		n.SentAt = time.Now().UTC()
	}

	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	operation := func() (struct{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
		if err != nil {
			return struct{}{}, backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := w.client.Do(req)
		if err != nil {
			return struct{}{}, err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			return struct{}{}, fmt.Errorf("webhook returned %d", resp.StatusCode)
		}
		if resp.StatusCode >= 400 {
			// Client errors will not heal on retry.
			return struct{}{}, backoff.Permanent(fmt.Errorf("webhook returned %d", resp.StatusCode))
		}
		return struct{}{}, nil
	}

	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = 500 * time.Millisecond

	_, err = backoff.Retry(ctx, operation,
		backoff.WithBackOff(expo),
		backoff.WithMaxElapsedTime(w.maxElapsed),
	)
	if err != nil {
		logJSON(map[string]any{
			"component": "alert",
			"event":     "webhook_delivery_failed",
			"level":     "error",
			"alert":     string(n.Level),
			"error":     err.Error(),
		})
		return fmt.Errorf("deliver alert: %w", err)
	}

	logJSON(map[string]any{
		"component": "alert",
		"event":     "webhook_delivered",
		"alert":     string(n.Level),
		"scene_id":  n.SceneID,
		"job_id":    n.JobID,
	})
	return nil
}

func logJSON(data map[string]any) {
	data["ts"] = time.Now().UTC().Format(time.RFC3339Nano)
	if _, ok := data["level"]; !ok {
		data["level"] = "info"
	}
	b, err := json.Marshal(data)
	if err != nil {
		log.Printf("failed to marshal alert log: %v", err)
		return
	}
	log.SetFlags(0)
	log.Println(string(b))
}
