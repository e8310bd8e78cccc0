package templates

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testIDFunc(templateName, recipient string) string {
	return fmt.Sprintf("tid-%s-%s", templateName, recipient)
}

func newTestRenderer() *Renderer {
	return NewRenderer(NewMemSource(), "http://track.test", testIDFunc)
}

func TestRenderUnknownTemplate(t *testing.T) {
	_, err := newTestRenderer().Render("nope", "a@b.c", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTemplateNotFound)
}

func TestRenderInjectsTrackingFields(t *testing.T) {
	out, err := newTestRenderer().Render("welcome", "a@b.c", map[string]string{"name": "Jo"})
	require.NoError(t, err)

	assert.Equal(t, "tid-welcome-a@b.c", out.MessageID)
	assert.Equal(t, "http://track.test/track/tid-welcome-a@b.c", out.TrackingURL)
	assert.Equal(t, "Welcome aboard!", out.Subject)
	assert.Contains(t, out.HTML, "Welcome, Jo!")
	assert.Contains(t, out.HTML, out.TrackingURL)
	assert.Contains(t, out.HTML, "ref tid-welcome-a@b.c")
	assert.NotContains(t, out.HTML, "{{message_id}}")
	assert.NotContains(t, out.HTML, "{{timestamp}}")
}

func TestOverlayShadowsBuiltin(t *testing.T) {
	r := newTestRenderer()
	require.NoError(t, r.Create("welcome", "custom {{name}}"))

	out, err := r.Render("welcome", "a@b.c", map[string]string{"name": "Jo"})
	require.NoError(t, err)
	assert.Equal(t, "custom Jo", out.HTML)
	assert.Equal(t, "Welcome aboard!", out.Subject, "subject still resolved by name")
}

func TestDefaultSubjectFallback(t *testing.T) {
	r := newTestRenderer()
	assert.Equal(t, "Reset your password", r.DefaultSubject("password_reset"))
	assert.Equal(t, "A message for you", r.DefaultSubject("anything-else"))
}

func TestListMergesSorted(t *testing.T) {
	r := newTestRenderer()
	require.NoError(t, r.Create("aaa_custom", "x"))
	require.NoError(t, r.Create("welcome", "shadowed"))

	names := r.List()
	assert.Contains(t, names, "aaa_custom")
	assert.Contains(t, names, "welcome")
	assert.Equal(t, 1, countOf(names, "welcome"), "shadowed name listed once")
	assert.True(t, sortedStrings(names))
}

func TestDeleteBuiltinRefused(t *testing.T) {
	r := newTestRenderer()
	assert.False(t, r.Delete("welcome"))

	require.NoError(t, r.Create("custom", "x"))
	assert.True(t, r.Delete("custom"))
	assert.False(t, r.Delete("custom"), "second delete finds nothing")
}

func TestDirSource(t *testing.T) {
	dir := t.TempDir()
	src := NewDirSource(dir)

	require.NoError(t, src.Put("greeting", "hello {{name}}"))
	content, ok := src.Get("greeting")
	require.True(t, ok)
	assert.Equal(t, "hello {{name}}", content)

	assert.Equal(t, []string{"greeting"}, src.List())
	assert.True(t, src.Delete("greeting"))
	assert.False(t, src.Delete("greeting"))
}

func TestDirSourceSanitizesNames(t *testing.T) {
	dir := t.TempDir()
	src := NewDirSource(dir)

	require.NoError(t, src.Put("../escape", "x"))
	_, ok := src.Get("escape")
	assert.True(t, ok, "path separators stripped to the base name")
}

func countOf(names []string, want string) int {
	n := 0
	for _, name := range names {
		if name == want {
			n++
		}
	}
	return n
}

func sortedStrings(names []string) bool {
	for i := 1; i < len(names); i++ {
		if strings.Compare(names[i-1], names[i]) > 0 {
			return false
		}
	}
	return true
}
