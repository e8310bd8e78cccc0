package api

import (
	"net/http"

	"github.com/ignite/engage/internal/pkg/httputil"
	"github.com/ignite/engage/internal/tracking"
)

// handleAnalytics serves the query surface. The action parameter selects
// the report; filter parameters narrow it.
func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := tracking.Filter{
		DateFrom:  q.Get("dateFrom"),
		DateTo:    q.Get("dateTo"),
		Template:  q.Get("template"),
		Recipient: q.Get("recipient"),
	}

	switch q.Get("action") {
	case "overview":
		httputil.OK(w, s.aggregator.Overview(filter))

	case "template":
		name := q.Get("template")
		if name == "" {
			httputil.BadRequest(w, "Missing template parameter")
			return
		}
		httputil.OK(w, s.aggregator.TemplateAnalytics(name, filter))

	case "templates":
		httputil.OK(w, s.engine.Renderer().List())

	case "tracking":
		id := q.Get("trackingId")
		if id == "" {
			httputil.BadRequest(w, "Missing trackingId parameter")
			return
		}
		rec := s.engine.Store().Get(id)
		if rec == nil {
			httputil.NotFound(w, "Tracking ID not found")
			return
		}
		httputil.OK(w, rec)

	case "export":
		httputil.OK(w, s.engine.Store().Export())

	default:
		httputil.BadRequest(w, "Invalid action. Valid actions: overview, template, templates, tracking, export")
	}
}

// handleImport replaces the store state with an exported payload.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	var payload tracking.ExportPayload
	if !httputil.Decode(w, r, &payload) {
		return
	}

	if !s.engine.Store().Import(r.Context(), &payload) {
		httputil.BadRequest(w, "Invalid import payload")
		return
	}
	httputil.OK(w, map[string]int{"imported": s.engine.Store().Len()})
}
