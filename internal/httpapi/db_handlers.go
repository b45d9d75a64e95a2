package httpapi

import (
	"database/sql"
	"net/http"

	"leadhunt-engine/internal/store"
)

type DBHandler struct {
	DB *sql.DB
}

// Checkpoint folds the WAL back into the main file. Loopback callers only.
func (h DBHandler) Checkpoint(w http.ResponseWriter, r *http.Request) {
	if !isLoopback(r) {
		WriteError(w, r, http.StatusForbidden, "forbidden", "forbidden")
		return
	}
	if h.DB == nil {
		WriteError(w, r, http.StatusServiceUnavailable, "store_disabled", "store.enabled is off")
		return
	}
	if err := store.Checkpoint(r.Context(), h.DB); err != nil {
		writeErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
