package httpapi

import (
	"database/sql"
	"net/http"
	"strconv"
	"strings"

	"leadhunt-engine/internal/store"
)

type PostingsHandler struct {
	DB *sql.DB
}

var (
	postingSorts   = map[string]bool{"": true, "score": true, "date": true, "company": true, "role": true}
	postingWindows = map[string]bool{"": true, "24h": true, "7d": true, "30d": true, "all": true}
)

// List serves GET /postings?sort=&window=&company=&limit=
func (h PostingsHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.DB == nil {
		WriteError(w, r, http.StatusServiceUnavailable, "store_disabled", "store.enabled is off")
		return
	}

	q := r.URL.Query()
	opts := store.ListPostingsOpts{
		Sort:    strings.ToLower(strings.TrimSpace(q.Get("sort"))),
		Window:  strings.ToLower(strings.TrimSpace(q.Get("window"))),
		Company: strings.TrimSpace(q.Get("company")),
	}
	if !postingSorts[opts.Sort] {
		WriteError(w, r, http.StatusBadRequest, "bad_request", "sort must be one of score, date, company, role")
		return
	}
	if !postingWindows[opts.Window] {
		WriteError(w, r, http.StatusBadRequest, "bad_request", "window must be one of 24h, 7d, 30d, all")
		return
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			WriteError(w, r, http.StatusBadRequest, "bad_request", "limit must be a non-negative integer")
			return
		}
		opts.Limit = n
	}

	items, err := store.ListPostings(r.Context(), h.DB, opts)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, items)
}
