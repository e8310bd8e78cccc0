package tracking

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/engage/internal/templates"
	"github.com/ignite/engage/internal/transport"
)

const testBaseURL = "http://track.test"

func newTestEngine(t *testing.T, send transport.Func) *Engine {
	t.Helper()
	store, _ := newTestStore(t)
	renderer := templates.NewRenderer(templates.NewMemSource(), testBaseURL, NewTrackingID)
	return NewEngine(store, renderer, testBaseURL, send)
}

func TestSendEmailRecordsOnSuccess(t *testing.T) {
	var sent *transport.Message
	engine := newTestEngine(t, func(ctx context.Context, msg *transport.Message) (*transport.Result, error) {
		sent = msg
		return &transport.Result{MessageID: "provider-1"}, nil
	})

	res := engine.SendEmail(context.Background(), "welcome", "user@example.com", map[string]string{"name": "Jo"})

	require.True(t, res.Success)
	require.NotEmpty(t, res.TrackingID)
	require.NotNil(t, sent)
	assert.Equal(t, "user@example.com", sent.To)
	assert.Equal(t, "Welcome aboard!", sent.Subject)
	assert.Contains(t, sent.HTML, "Jo")
	assert.Contains(t, sent.HTML, testBaseURL+"/track/"+res.TrackingID)

	rec := engine.Store().Get(res.TrackingID)
	require.NotNil(t, rec)
	assert.Equal(t, "welcome", rec.Template)
	assert.Equal(t, StatusSent, rec.Status)
}

func TestSendEmailTransportFailure(t *testing.T) {
	engine := newTestEngine(t, func(ctx context.Context, msg *transport.Message) (*transport.Result, error) {
		return nil, errors.New("relay refused")
	})

	res := engine.SendEmail(context.Background(), "welcome", "user@example.com", nil)

	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "relay refused")
	assert.Equal(t, 0, engine.Store().Len(), "failed dispatch records nothing")
}

func TestSendEmailUnknownTemplate(t *testing.T) {
	engine := newTestEngine(t, func(ctx context.Context, msg *transport.Message) (*transport.Result, error) {
		t.Fatal("transport must not be called")
		return nil, nil
	})

	res := engine.SendEmail(context.Background(), "no-such-template", "user@example.com", nil)
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "template not found")
}

func TestSendEmailNoTransport(t *testing.T) {
	engine := newTestEngine(t, nil)
	res := engine.SendEmail(context.Background(), "welcome", "user@example.com", nil)
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "no email transport")
}

func TestInjectTrackingWrapsLinks(t *testing.T) {
	engine := newTestEngine(t, nil)
	html := `<html><body><a href="https://example.com/offer?id=7">Offer</a></body></html>`

	out := engine.InjectTracking(html, "tid-1")

	assert.Contains(t, out, `href="http://track.test/click/tid-1?url=https%3A%2F%2Fexample.com%2Foffer%3Fid%3D7"`)
	assert.NotContains(t, out, `href="https://example.com/offer?id=7"`)
}

func TestInjectTrackingSkipsTrackingLinks(t *testing.T) {
	engine := newTestEngine(t, nil)
	html := `<body><img src="http://track.test/track/tid-1">` +
		`<a href="http://track.test/click/tid-1?url=x">already wrapped</a></body>`

	out := engine.InjectTracking(html, "tid-1")

	assert.Equal(t, 1, strings.Count(out, "/track/tid-1"), "pixel not duplicated")
	assert.Equal(t, 1, strings.Count(out, "/click/tid-1"), "wrapped link left alone")
}

func TestInjectTrackingAddsPixel(t *testing.T) {
	engine := newTestEngine(t, nil)

	withBody := engine.InjectTracking("<html><body><p>hi</p></body></html>", "tid-2")
	assert.Contains(t, withBody, `<img src="http://track.test/track/tid-2"`)
	assert.Less(t, strings.Index(withBody, "/track/tid-2"), strings.Index(withBody, "</body>"),
		"pixel inserted before the closing body tag")

	noBody := engine.InjectTracking("<p>hi</p>", "tid-3")
	assert.Contains(t, noBody, `/track/tid-3`)
}
