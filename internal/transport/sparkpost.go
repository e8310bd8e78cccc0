package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/ignite/engage/internal/config"
)

// SparkPostSender dispatches through the SparkPost transmissions API.
type SparkPostSender struct {
	apiKey    string
	baseURL   string
	fromEmail string
	fromName  string
	client    *http.Client
}

// NewSparkPostSender creates a SparkPost transport from config.
func NewSparkPostSender(cfg config.SparkPostConfig) *SparkPostSender {
	return &SparkPostSender{
		apiKey:    cfg.APIKey,
		baseURL:   cfg.BaseURL,
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
		client:    &http.Client{Timeout: cfg.Timeout()},
	}
}

// Send implements Func.
func (s *SparkPostSender) Send(ctx context.Context, msg *Message) (*Result, error) {
	transmission := map[string]any{
		"recipients": []map[string]any{
			{"address": map[string]string{"email": msg.To}},
		},
		"content": map[string]any{
			"from": map[string]string{
				"email": s.fromEmail,
				"name":  s.fromName,
			},
			"subject": msg.Subject,
			"html":    msg.HTML,
		},
	}

	body, err := json.Marshal(transmission)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.baseURL+"/transmissions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sparkpost send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("sparkpost send: status %d: %s", resp.StatusCode, raw)
	}

	var parsed struct {
		Results struct {
			ID string `json:"id"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		// delivery succeeded even if the response body is odd
		return &Result{}, nil
	}
	return &Result{MessageID: parsed.Results.ID}, nil
}
