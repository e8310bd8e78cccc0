package api

import (
	"errors"
	"net/http"

	"github.com/ignite/engage/internal/pkg/httputil"
	"github.com/ignite/engage/internal/templates"
)

type templateRequest struct {
	Action       string            `json:"action"`
	TemplateName string            `json:"templateName"`
	Content      string            `json:"content,omitempty"`
	SampleData   map[string]string `json:"sampleData,omitempty"`
}

// handleTemplateAction creates, updates or previews a template.
func (s *Server) handleTemplateAction(w http.ResponseWriter, r *http.Request) {
	var req templateRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	if req.TemplateName == "" {
		httputil.BadRequest(w, "Missing templateName")
		return
	}

	renderer := s.engine.Renderer()

	switch req.Action {
	case "create", "update":
		if req.Content == "" {
			httputil.BadRequest(w, "Missing content")
			return
		}
		if err := renderer.Create(req.TemplateName, req.Content); err != nil {
			httputil.InternalError(w, err)
			return
		}
		httputil.OK(w, map[string]string{"templateName": req.TemplateName})

	case "preview":
		out, err := renderer.Render(req.TemplateName, "preview@example.com", req.SampleData)
		if err != nil {
			if errors.Is(err, templates.ErrTemplateNotFound) {
				httputil.NotFound(w, "Template not found")
				return
			}
			httputil.InternalError(w, err)
			return
		}
		httputil.OK(w, map[string]string{
			"templateName": req.TemplateName,
			"subject":      out.Subject,
			"html":         out.HTML,
		})

	default:
		httputil.BadRequest(w, "Invalid action. Valid actions: create, update, preview")
	}
}

// handleTemplateDelete removes a custom template. Built-ins cannot be
// deleted and report 400.
func (s *Server) handleTemplateDelete(w http.ResponseWriter, r *http.Request) {
	var req templateRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	if req.TemplateName == "" {
		httputil.BadRequest(w, "Missing templateName")
		return
	}

	if !s.engine.Renderer().Delete(req.TemplateName) {
		if s.engine.Renderer().IsBuiltin(req.TemplateName) {
			httputil.BadRequest(w, "Cannot delete built-in template")
			return
		}
		httputil.NotFound(w, "Template not found")
		return
	}
	httputil.OK(w, map[string]string{"templateName": req.TemplateName})
}
