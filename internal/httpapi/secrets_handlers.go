package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync/atomic"

	"leadhunt-engine/internal/config"
	"leadhunt-engine/internal/secrets"
)

// imapSecret is the path name for the IMAP password, which is keyed by
// account rather than stored under a fixed name.
const imapSecret = "imap"

type SecretsHandler struct {
	CfgVal *atomic.Value // stores config.Config
}

type setSecretReq struct {
	Value string `json:"value"`
}

// name pulls {name} out of /api/secrets/{name}.
func (h SecretsHandler) name(w http.ResponseWriter, r *http.Request) (string, bool) {
	name := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/secrets/"), "/")
	if name == imapSecret || secrets.IsKnown(name) {
		return name, true
	}
	WriteError(w, r, http.StatusNotFound, "unknown_secret", "unknown secret "+strings.TrimSpace(name))
	return "", false
}

func (h SecretsHandler) imapAccount() string {
	cfg, _ := h.CfgVal.Load().(config.Config)
	return secrets.IMAPKeyringAccount(cfg.Email.Username, cfg.Email.IMAPHost)
}

func (h SecretsHandler) Set(w http.ResponseWriter, r *http.Request) {
	name, ok := h.name(w, r)
	if !ok {
		return
	}
	var req setSecretReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	if strings.TrimSpace(req.Value) == "" {
		WriteError(w, r, http.StatusBadRequest, "bad_request", "value is required")
		return
	}

	var err error
	if name == imapSecret {
		err = secrets.SetIMAPPassword(h.imapAccount(), req.Value)
	} else {
		err = secrets.Set(name, req.Value)
	}
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, "store_failed", "failed to store secret: "+err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h SecretsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	name, ok := h.name(w, r)
	if !ok {
		return
	}
	var err error
	if name == imapSecret {
		err = secrets.DeleteIMAPPassword(h.imapAccount())
	} else {
		err = secrets.Delete(name)
	}
	if err != nil {
		writeErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
