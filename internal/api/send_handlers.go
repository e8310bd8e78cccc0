package api

import (
	"net/http"

	"github.com/ignite/engage/internal/pkg/httputil"
)

type sendRequest struct {
	Template string            `json:"template"`
	To       string            `json:"to"`
	Data     map[string]string `json:"data,omitempty"`
}

// handleSend renders and dispatches one tracked email.
func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	if req.Template == "" || req.To == "" {
		httputil.BadRequest(w, "Missing template or to")
		return
	}

	result := s.engine.SendEmail(r.Context(), req.Template, req.To, req.Data)
	if !result.Success {
		httputil.JSON(w, http.StatusBadGateway, result)
		return
	}
	httputil.JSON(w, http.StatusOK, result)
}
