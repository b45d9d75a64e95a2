package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"leadhunt-engine/internal/ledger"
	"leadhunt-engine/internal/poll"
	"leadhunt-engine/internal/secrets"
)

// APIError is the envelope every non-2xx JSON response uses.
type APIError struct {
	Error struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"request_id,omitempty"`
	} `json:"error"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	var e APIError
	e.Error.Code = code
	e.Error.Message = message
	e.Error.RequestID = RequestIDFrom(r.Context())
	WriteJSON(w, status, e)
}

// writeErr maps pipeline errors onto status codes. Unknown errors are 500s and
// are logged with the request id.
func writeErr(w http.ResponseWriter, r *http.Request, err error) {
	var missing *secrets.MissingError
	switch {
	case errors.As(err, &missing):
		WriteError(w, r, http.StatusBadRequest, "missing_credential", err.Error())
	case errors.Is(err, poll.ErrRunning):
		WriteError(w, r, http.StatusConflict, "already_running", err.Error())
	case errors.Is(err, ledger.ErrLocked):
		WriteError(w, r, http.StatusConflict, "ledger_locked", err.Error())
	default:
		log.Printf("level=error msg=\"handler\" request_id=%s path=%s err=%v", RequestIDFrom(r.Context()), r.URL.Path, err)
		WriteError(w, r, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
