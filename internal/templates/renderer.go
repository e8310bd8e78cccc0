package templates

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// ErrTemplateNotFound is returned when a template name resolves to
// neither the custom overlay nor the built-in set. Unlike tracking
// lookups, a missing template is a hard error: failing to render means
// no email was sent.
var ErrTemplateNotFound = errors.New("template not found")

// IDFunc mints a tracking id for one outbound message.
type IDFunc func(templateName, recipient string) string

// RenderOutput is the result of rendering one message.
type RenderOutput struct {
	HTML        string
	Subject     string
	MessageID   string
	TrackingURL string
}

// Renderer resolves named templates and renders them with the injected
// tracking fields. The custom overlay shadows built-ins of the same name.
type Renderer struct {
	source  Source
	baseURL string
	newID   IDFunc
}

// NewRenderer creates a renderer. baseURL is the tracking service root
// used to build pixel URLs; newID supplies tracking ids (injected so the
// package stays free of the store's dependencies).
func NewRenderer(source Source, baseURL string, newID IDFunc) *Renderer {
	return &Renderer{source: source, baseURL: baseURL, newID: newID}
}

// Resolve returns the raw template content for name, overlay first.
func (r *Renderer) Resolve(name string) (string, error) {
	if content, ok := r.source.Get(name); ok {
		return content, nil
	}
	if content, ok := builtinTemplates[name]; ok {
		return content, nil
	}
	return "", fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
}

// Render resolves name and substitutes the caller data merged with the
// injected fields: timestamp (render time), message_id (fresh tracking
// id) and tracking_url (pixel URL embedding the id).
func (r *Renderer) Render(name, recipient string, data map[string]string) (*RenderOutput, error) {
	source, err := r.Resolve(name)
	if err != nil {
		return nil, err
	}

	id := r.newID(name, recipient)

	merged := make(map[string]string, len(data)+3)
	for k, v := range data {
		merged[k] = v
	}
	merged["timestamp"] = time.Now().UTC().Format(time.RFC3339)
	merged["message_id"] = id
	merged["tracking_url"] = fmt.Sprintf("%s/track/%s", r.baseURL, id)

	return &RenderOutput{
		HTML:        Compile(source).Render(merged),
		Subject:     r.DefaultSubject(name),
		MessageID:   id,
		TrackingURL: merged["tracking_url"],
	}, nil
}

// DefaultSubject maps a template name to its subject line, falling back
// to a generic subject for unrecognized names. Never fails.
func (r *Renderer) DefaultSubject(name string) string {
	if subject, ok := defaultSubjects[name]; ok {
		return subject
	}
	return genericSubject
}

// List returns all resolvable template names, built-ins and overlay
// merged, sorted.
func (r *Renderer) List() []string {
	seen := make(map[string]bool)
	var names []string
	for name := range builtinTemplates {
		seen[name] = true
		names = append(names, name)
	}
	for _, name := range r.source.List() {
		if !seen[name] {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// IsBuiltin reports whether name is one of the built-in templates.
func (r *Renderer) IsBuiltin(name string) bool {
	_, ok := builtinTemplates[name]
	return ok
}

// Create adds a custom template. An existing custom template of the same
// name is overwritten; a built-in of the same name becomes shadowed.
func (r *Renderer) Create(name, content string) error {
	if name == "" {
		return errors.New("template name required")
	}
	return r.source.Put(name, content)
}

// Update overwrites a custom template (same operation as Create; kept
// separate for the management API's vocabulary).
func (r *Renderer) Update(name, content string) error {
	return r.Create(name, content)
}

// Delete removes a custom template. Deleting a built-in is refused and
// returns false rather than an error, so callers can tell "nothing to
// delete" from a hard fault.
func (r *Renderer) Delete(name string) bool {
	return r.source.Delete(name)
}
