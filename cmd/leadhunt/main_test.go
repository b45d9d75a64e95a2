package main

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigFlagsLoad(t *testing.T) {
	dir := t.TempDir()
	keywords := filepath.Join(dir, "keywords.txt")
	require.NoError(t, os.WriteFile(keywords, []byte("Golang\nplatform, SRE\n"), 0o644))

	good := filepath.Join(dir, "config.yml")
	require.NoError(t, os.WriteFile(good, []byte(
		"input:\n  keywords: [go]\n  keywords_file: "+keywords+"\nsearch:\n  provider: DuckDuckGo\n"), 0o644))

	cfg, err := configFlags{path: good, envFile: filepath.Join(dir, "missing.env")}.load()
	require.NoError(t, err)
	assert.Equal(t, "duckduckgo", cfg.Search.Provider)
	assert.Equal(t, []string{"go", "golang", "platform", "sre"}, cfg.Input.Keywords)

	bad := filepath.Join(dir, "bad.yml")
	require.NoError(t, os.WriteFile(bad, []byte("filters:\n  window_days: 0\n"), 0o644))
	_, err = configFlags{path: bad}.load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "filters.window_days")
}

func TestShutdownHandler(t *testing.T) {
	tests := []struct {
		name   string
		method string
		remote string
		token  string
		want   int
		stops  bool
	}{
		{"ok", http.MethodPost, "127.0.0.1:4000", "s3cret", http.StatusOK, true},
		{"wrong token", http.MethodPost, "127.0.0.1:4000", "nope", http.StatusUnauthorized, false},
		{"remote caller", http.MethodPost, "10.0.0.8:4000", "s3cret", http.StatusForbidden, false},
		{"get", http.MethodGet, "127.0.0.1:4000", "s3cret", http.StatusMethodNotAllowed, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			stopped := make(chan struct{}, 1)
			h := shutdownHandler("s3cret", func() { stopped <- struct{}{} })

			req := httptest.NewRequest(tc.method, "/shutdown", nil)
			req.RemoteAddr = tc.remote
			req.Header.Set("X-Shutdown-Token", tc.token)
			rec := httptest.NewRecorder()
			h(rec, req)

			assert.Equal(t, tc.want, rec.Code)
			if tc.stops {
				<-stopped
			} else {
				assert.Empty(t, stopped)
			}
		})
	}
}
