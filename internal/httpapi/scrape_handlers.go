package httpapi

import (
	"context"
	"net/http"
	"sync/atomic"

	"leadhunt-engine/internal/scrape/types"
)

type ScrapeHandler struct {
	ScrapeStatus *atomic.Value // types.ScrapeStatus
	Scraper      Scraper
	BaseCtx      context.Context
}

func (h ScrapeHandler) Status(w http.ResponseWriter, r *http.Request) {
	st, _ := h.ScrapeStatus.Load().(types.ScrapeStatus)
	if h.Scraper != nil {
		st.Running = st.Running || h.Scraper.Running()
	}
	writeJSON(w, st)
}

// Run starts a poll in the background. The run outlives the request, so it
// is tied to BaseCtx rather than r.Context().
func (h ScrapeHandler) Run(w http.ResponseWriter, r *http.Request) {
	if h.Scraper == nil {
		WriteError(w, r, http.StatusServiceUnavailable, "scraper_unavailable", "no scraper configured")
		return
	}
	ctx := h.BaseCtx
	if ctx == nil {
		ctx = context.Background()
	}
	if !h.Scraper.Trigger(ctx) {
		WriteJSON(w, http.StatusConflict, map[string]any{"ok": false, "msg": "already running"})
		return
	}
	WriteJSON(w, http.StatusAccepted, map[string]any{"ok": true})
}
