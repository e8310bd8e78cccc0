package tracking

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/ignite/engage/internal/pkg/logger"
	"github.com/ignite/engage/internal/pkg/metrics"
	"github.com/ignite/engage/internal/templates"
	"github.com/ignite/engage/internal/transport"
)

// SendResult is the outcome of one tracked send.
type SendResult struct {
	Success    bool   `json:"success"`
	TrackingID string `json:"trackingId,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Engine is the send pipeline: render a template, instrument the HTML
// with tracking, dispatch through the transport, and record the send.
// A record is only written after the transport accepts the message, so
// the store never holds sends that were never dispatched.
type Engine struct {
	store    *Store
	renderer *templates.Renderer
	baseURL  string
	send     transport.Func
}

// NewEngine wires the send pipeline. send may be nil for deployments
// that only serve tracking endpoints; SendEmail then fails cleanly.
func NewEngine(store *Store, renderer *templates.Renderer, baseURL string, send transport.Func) *Engine {
	return &Engine{store: store, renderer: renderer, baseURL: baseURL, send: send}
}

// Store exposes the underlying event store for analytics and admin
// operations.
func (e *Engine) Store() *Store {
	return e.store
}

// Renderer exposes the template renderer for the management API.
func (e *Engine) Renderer() *templates.Renderer {
	return e.renderer
}

// SendEmail renders templateName for recipient, instruments the result
// and dispatches it. The send is recorded only on transport success.
func (e *Engine) SendEmail(ctx context.Context, templateName, recipient string, data map[string]string) *SendResult {
	if e.send == nil {
		return &SendResult{Error: "no email transport configured"}
	}

	out, err := e.renderer.Render(templateName, recipient, data)
	if err != nil {
		return &SendResult{Error: err.Error()}
	}

	html := e.InjectTracking(out.HTML, out.MessageID)

	result, err := e.send(ctx, &transport.Message{
		To:      recipient,
		Subject: out.Subject,
		HTML:    html,
	})
	if err != nil {
		logger.Error("email dispatch failed", "template", templateName, "to", recipient, "error", err)
		return &SendResult{Error: err.Error()}
	}

	e.store.RecordSend(ctx, SendFields{
		TrackingID: out.MessageID,
		Template:   templateName,
		Recipient:  recipient,
		Subject:    out.Subject,
	})
	metrics.EmailsSent.WithLabelValues(templateName).Inc()
	logger.Info("email sent", "template", templateName, "to", recipient,
		"tracking_id", out.MessageID, "provider_id", result.MessageID)

	return &SendResult{Success: true, TrackingID: out.MessageID}
}

// TrackOpen records an open event. Returns false for unknown ids.
func (e *Engine) TrackOpen(ctx context.Context, trackingID, userAgent, ipAddress string) bool {
	ok := e.store.RecordOpen(ctx, trackingID, userAgent, ipAddress)
	if ok {
		metrics.OpensRecorded.Inc()
	}
	return ok
}

// TrackClick records a click event. Returns false for unknown ids.
func (e *Engine) TrackClick(ctx context.Context, trackingID, clickedURL, userAgent, ipAddress string) bool {
	ok := e.store.RecordClick(ctx, trackingID, clickedURL, userAgent, ipAddress)
	if ok {
		metrics.ClicksRecorded.Inc()
	}
	return ok
}

var hrefPattern = regexp.MustCompile(`href="(https?://[^"]*)"`)

// InjectTracking rewrites outbound links through the click redirect and
// makes sure the HTML carries an open pixel. Links already pointing at
// the tracking endpoints are left alone.
func (e *Engine) InjectTracking(html, trackingID string) string {
	html = hrefPattern.ReplaceAllStringFunc(html, func(match string) string {
		target := hrefPattern.FindStringSubmatch(match)[1]
		if strings.Contains(target, "/track/") || strings.Contains(target, "/click/") {
			return match
		}
		return fmt.Sprintf(`href="%s/click/%s?url=%s"`,
			e.baseURL, trackingID, url.QueryEscape(target))
	})

	pixelURL := fmt.Sprintf("%s/track/%s", e.baseURL, trackingID)
	if !strings.Contains(html, pixelURL) {
		pixel := fmt.Sprintf(`<img src="%s" width="1" height="1" alt="" style="display:none;">`, pixelURL)
		if idx := strings.LastIndex(html, "</body>"); idx >= 0 {
			html = html[:idx] + pixel + html[idx:]
		} else {
			html += pixel
		}
	}
	return html
}
