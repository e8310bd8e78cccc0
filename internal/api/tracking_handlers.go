package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/engage/internal/pkg/httputil"
	"github.com/ignite/engage/internal/pkg/logger"
)

// pixelPNG is a 1x1 fully transparent PNG. Served for every pixel fetch
// regardless of whether the tracking id matched, so an email client can
// never distinguish a tracked message from an untracked one.
var pixelPNG = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a,
	0x00, 0x00, 0x00, 0x0d, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4,
	0x89, 0x00, 0x00, 0x00, 0x0d, 0x49, 0x44, 0x41,
	0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00,
	0x00, 0x00, 0x00, 0x49, 0x45, 0x4e, 0x44, 0xae,
	0x42, 0x60, 0x82,
}

func setNoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")
}

// handlePixel records an open and serves the tracking pixel. The
// response is identical for known and unknown ids.
func (s *Server) handlePixel(w http.ResponseWriter, r *http.Request) {
	trackingID := chi.URLParam(r, "trackingID")

	if !s.engine.TrackOpen(r.Context(), trackingID, r.UserAgent(), realIP(r)) {
		logger.Debug("open for unknown tracking id", "tracking_id", trackingID)
	}

	setNoCache(w)
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(pixelPNG)
}

// handleClick records a click and redirects to the target. The redirect
// happens whether or not the id matched; only a missing url parameter is
// an error.
func (s *Server) handleClick(w http.ResponseWriter, r *http.Request) {
	trackingID := chi.URLParam(r, "trackingID")

	target := r.URL.Query().Get("url")
	if target == "" {
		httputil.BadRequest(w, "Missing URL parameter")
		return
	}

	if !s.engine.TrackClick(r.Context(), trackingID, target, r.UserAgent(), realIP(r)) {
		logger.Debug("click for unknown tracking id", "tracking_id", trackingID)
	}

	setNoCache(w)
	http.Redirect(w, r, target, http.StatusFound)
}
