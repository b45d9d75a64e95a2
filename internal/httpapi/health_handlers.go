package httpapi

import "net/http"

type HealthHandler struct {
	Scraper Scraper
}

func (h HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	running := false
	if h.Scraper != nil {
		running = h.Scraper.Running()
	}
	writeJSON(w, map[string]any{
		"ok":      true,
		"running": running,
	})
}
