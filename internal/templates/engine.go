// Package templates resolves named email templates and renders them with
// literal placeholder substitution. Substitution is deliberately not a
// full template language: `{{key}}` occurrences are replaced by the
// string value for key, and unknown placeholders are left untouched so a
// rendered document never loses content.
package templates

import "strings"

// Template is a compiled template. Compilation keeps the source
// verbatim; the type exists to give substitution a documented, testable
// seam.
type Template struct {
	source string
}

// Compile wraps template source for rendering.
func Compile(source string) *Template {
	return &Template{source: source}
}

// Render substitutes every `{{key}}` with data[key]. After the key loop,
// `{{message_id}}` is substituted once more explicitly: another value
// (such as tracking_url) may itself have carried the placeholder into the
// output, and the message id must always be fully resolved.
func (t *Template) Render(data map[string]string) string {
	out := t.source
	for key, val := range data {
		out = strings.ReplaceAll(out, "{{"+key+"}}", val)
	}
	out = strings.ReplaceAll(out, "{{message_id}}", data["message_id"])
	return out
}
