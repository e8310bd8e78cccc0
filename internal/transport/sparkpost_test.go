package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/engage/internal/config"
)

func sparkPostConfig(baseURL string) config.SparkPostConfig {
	return config.SparkPostConfig{
		APIKey:         "test-key",
		BaseURL:        baseURL,
		FromEmail:      "no-reply@example.com",
		FromName:       "Engage",
		TimeoutSeconds: 5,
		Enabled:        true,
	}
}

func TestSparkPostSend(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/transmissions", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results":{"id":"tx-1"}}`))
	}))
	defer ts.Close()

	sender := NewSparkPostSender(sparkPostConfig(ts.URL))
	res, err := sender.Send(context.Background(), &Message{
		To:      "user@example.com",
		Subject: "hello",
		HTML:    "<p>hi</p>",
	})

	require.NoError(t, err)
	assert.Equal(t, "tx-1", res.MessageID)
	assert.Equal(t, "test-key", gotAuth)

	content := gotBody["content"].(map[string]any)
	assert.Equal(t, "hello", content["subject"])
	recipients := gotBody["recipients"].([]any)
	require.Len(t, recipients, 1)
}

func TestSparkPostSendErrorStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"errors":[{"message":"bad key"}]}`, http.StatusUnauthorized)
	}))
	defer ts.Close()

	sender := NewSparkPostSender(sparkPostConfig(ts.URL))
	_, err := sender.Send(context.Background(), &Message{To: "user@example.com"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}

func TestFromConfigSelection(t *testing.T) {
	cfg := &config.Config{}
	_, err := FromConfig(context.Background(), cfg)
	assert.ErrorIs(t, err, ErrNoTransport)

	cfg.SMTP.Enabled = true
	send, err := FromConfig(context.Background(), cfg)
	require.NoError(t, err)
	assert.NotNil(t, send)

	cfg.SparkPost.Enabled = true
	send, err = FromConfig(context.Background(), cfg)
	require.NoError(t, err)
	assert.NotNil(t, send, "sparkpost takes priority when several are enabled")
}
