package alert

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"gaia/internal/config"
	"gaia/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(url string) config.AlertConfig {
	return config.AlertConfig{
		WebhookURL:      url,
		RequestTimeout:  2 * time.Second,
		MaxRetryElapsed: 3 * time.Second,
	}
}

func TestWebhookNotifier_Delivers(t *testing.T) {
	var got Notification
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewWebhook(testConfig(srv.URL))
	err := n.Notify(context.Background(), Notification{
		Level:   model.AlertHigh,
		Message: "mean NDVI dropped below 0.2",
		SceneID: "scene-1",
	})

	assert.NoError(t, err)
	assert.Equal(t, model.AlertHigh, got.Level)
	assert.Equal(t, "scene-1", got.SceneID)
	assert.False(t, got.SentAt.IsZero())
}

func TestWebhookNotifier_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewWebhook(testConfig(srv.URL))
	err := n.Notify(context.Background(), Notification{Level: model.AlertHigh, Message: "x"})

	assert.NoError(t, err)
	assert.GreaterOrEqual(t, calls.Load(), int32(3))
}

func TestWebhookNotifier_ClientErrorIsPermanent(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	n := NewWebhook(testConfig(srv.URL))
	err := n.Notify(context.Background(), Notification{Level: model.AlertMedium, Message: "x"})

	assert.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestWebhookNotifier_DisabledWithoutURL(t *testing.T) {
	n := NewWebhook(testConfig(""))
	assert.NoError(t, n.Notify(context.Background(), Notification{Level: model.AlertHigh, Message: "x"}))
}
