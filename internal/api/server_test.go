package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/engage/internal/config"
	"github.com/ignite/engage/internal/templates"
	"github.com/ignite/engage/internal/tracking"
	"github.com/ignite/engage/internal/transport"
)

const testBaseURL = "http://track.test"

type envelope struct {
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data"`
	Timestamp string          `json:"timestamp"`
}

func newTestServer(t *testing.T, send transport.Func) (*Server, *tracking.Store) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "engagement.json")
	store := tracking.NewStore(tracking.NewFileBackend(path))
	store.Load(context.Background())

	renderer := templates.NewRenderer(templates.NewMemSource(), testBaseURL, tracking.NewTrackingID)
	engine := tracking.NewEngine(store, renderer, testBaseURL, send)

	cfg := &config.Config{}
	cfg.CORS.AllowedOrigins = []string{"*"}
	return NewServer(cfg, engine), store
}

func seedRecord(t *testing.T, store *tracking.Store, id, template string) {
	t.Helper()
	store.RecordSend(context.Background(), tracking.SendFields{
		TrackingID: id, Template: template, Recipient: "user@example.com", Subject: "s",
	})
}

func doRequest(t *testing.T, s *Server, method, target string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rr := httptest.NewRecorder()
	s.Router().ServeHTTP(rr, req)
	return rr
}

func TestPixelKnownID(t *testing.T) {
	s, store := newTestServer(t, nil)
	seedRecord(t, store, "id-1", "welcome")

	rr := doRequest(t, s, http.MethodGet, "/track/id-1", nil)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "image/png", rr.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache, no-store, must-revalidate", rr.Header().Get("Cache-Control"))
	assert.Equal(t, "no-cache", rr.Header().Get("Pragma"))
	assert.Equal(t, "0", rr.Header().Get("Expires"))
	assert.Equal(t, pixelPNG, rr.Body.Bytes())

	rec := store.Get("id-1")
	require.NotNil(t, rec)
	assert.True(t, rec.Opened)
}

func TestPixelUnknownID(t *testing.T) {
	s, store := newTestServer(t, nil)

	rr := doRequest(t, s, http.MethodGet, "/track/nope", nil)

	assert.Equal(t, http.StatusOK, rr.Code, "unknown ids still get the pixel")
	assert.Equal(t, pixelPNG, rr.Body.Bytes())
	assert.Equal(t, 0, store.Len())
}

func TestClickMissingURL(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rr := doRequest(t, s, http.MethodGet, "/click/id-1", nil)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "Missing URL parameter", body["error"])
}

func TestClickRedirects(t *testing.T) {
	s, store := newTestServer(t, nil)
	seedRecord(t, store, "id-1", "welcome")

	rr := doRequest(t, s, http.MethodGet, "/click/id-1?url=https%3A%2F%2Fexample.com%2Foffer", nil)

	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "https://example.com/offer", rr.Header().Get("Location"))

	rec := store.Get("id-1")
	require.Len(t, rec.Clicks, 1)
	assert.Equal(t, "https://example.com/offer", rec.Clicks[0].URL)
}

func TestClickUnknownIDStillRedirects(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rr := doRequest(t, s, http.MethodGet, "/click/nope?url=https%3A%2F%2Fexample.com", nil)

	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "https://example.com", rr.Header().Get("Location"))
}

func TestAnalyticsOverview(t *testing.T) {
	s, store := newTestServer(t, nil)
	seedRecord(t, store, "id-1", "welcome")
	seedRecord(t, store, "id-2", "welcome")
	store.RecordOpen(context.Background(), "id-1", "ua", "ip")

	rr := doRequest(t, s, http.MethodGet, "/analytics?action=overview", nil)

	require.Equal(t, http.StatusOK, rr.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	assert.True(t, env.Success)
	assert.NotEmpty(t, env.Timestamp)

	var summary tracking.Summary
	require.NoError(t, json.Unmarshal(env.Data, &summary))
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 1, summary.Opened)
	assert.Equal(t, 50.0, summary.OpenRate)
}

func TestAnalyticsUnknownAction(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rr := doRequest(t, s, http.MethodGet, "/analytics?action=bogus", nil)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "overview")
	assert.Contains(t, rr.Body.String(), "export")
}

func TestAnalyticsTracking(t *testing.T) {
	s, store := newTestServer(t, nil)
	seedRecord(t, store, "id-1", "welcome")

	rr := doRequest(t, s, http.MethodGet, "/analytics?action=tracking&trackingId=id-1", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	var rec tracking.EmailRecord
	require.NoError(t, json.Unmarshal(env.Data, &rec))
	assert.Equal(t, "id-1", rec.ID)

	rr = doRequest(t, s, http.MethodGet, "/analytics?action=tracking&trackingId=nope", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAnalyticsTemplates(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rr := doRequest(t, s, http.MethodGet, "/analytics?action=templates", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	var names []string
	require.NoError(t, json.Unmarshal(env.Data, &names))
	assert.Contains(t, names, "welcome")
	assert.Contains(t, names, "newsletter")
}

func TestExportImportEndpoints(t *testing.T) {
	s, store := newTestServer(t, nil)
	seedRecord(t, store, "id-1", "welcome")
	store.RecordClick(context.Background(), "id-1", "https://example.com", "ua", "ip")

	rr := doRequest(t, s, http.MethodGet, "/analytics?action=export", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))

	other, otherStore := newTestServer(t, nil)
	rr = doRequest(t, other, http.MethodPost, "/analytics/import", env.Data)
	require.Equal(t, http.StatusOK, rr.Code)

	rec := otherStore.Get("id-1")
	require.NotNil(t, rec)
	require.Len(t, rec.Clicks, 1)
}

func TestImportRejectsMalformed(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rr := doRequest(t, s, http.MethodPost, "/analytics/import", []byte(`{"version":"1.0"}`))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = doRequest(t, s, http.MethodPost, "/analytics/import", []byte(`not json`))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestTemplateCreateAndPreview(t *testing.T) {
	s, _ := newTestServer(t, nil)

	create := []byte(`{"action":"create","templateName":"greeting","content":"hi {{name}}"}`)
	rr := doRequest(t, s, http.MethodPost, "/templates", create)
	require.Equal(t, http.StatusOK, rr.Code)

	preview := []byte(`{"action":"preview","templateName":"greeting","sampleData":{"name":"Jo"}}`)
	rr = doRequest(t, s, http.MethodPost, "/templates", preview)
	require.Equal(t, http.StatusOK, rr.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	var data map[string]string
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "hi Jo", data["html"])
}

func TestTemplatePreviewNotFound(t *testing.T) {
	s, _ := newTestServer(t, nil)

	body := []byte(`{"action":"preview","templateName":"nope"}`)
	rr := doRequest(t, s, http.MethodPost, "/templates", body)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestTemplateDelete(t *testing.T) {
	s, _ := newTestServer(t, nil)

	create := []byte(`{"action":"create","templateName":"greeting","content":"x"}`)
	require.Equal(t, http.StatusOK, doRequest(t, s, http.MethodPost, "/templates", create).Code)

	del := []byte(`{"templateName":"greeting"}`)
	assert.Equal(t, http.StatusOK, doRequest(t, s, http.MethodDelete, "/templates", del).Code)

	builtin := []byte(`{"templateName":"welcome"}`)
	rr := doRequest(t, s, http.MethodDelete, "/templates", builtin)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "built-in")
}

func TestSendEndpoint(t *testing.T) {
	sent := false
	s, store := newTestServer(t, func(ctx context.Context, msg *transport.Message) (*transport.Result, error) {
		sent = true
		return &transport.Result{MessageID: "provider-1"}, nil
	})

	body := []byte(`{"template":"welcome","to":"user@example.com","data":{"name":"Jo"}}`)
	rr := doRequest(t, s, http.MethodPost, "/send", body)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, sent)

	var res tracking.SendResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	assert.True(t, res.Success)
	assert.NotEmpty(t, res.TrackingID)
	assert.NotNil(t, store.Get(res.TrackingID))
}

func TestSendEndpointValidation(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rr := doRequest(t, s, http.MethodPost, "/send", []byte(`{"template":"welcome"}`))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHealth(t *testing.T) {
	s, store := newTestServer(t, nil)
	seedRecord(t, store, "id-1", "welcome")

	rr := doRequest(t, s, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, float64(1), body["records"])
}
