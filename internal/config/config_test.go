package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
input:
  keywords: ["Data Engineering", "snowflake"]
filters:
  window_days: 14
search:
  provider: duckduckgo
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 14, cfg.Filters.WindowDays)
	assert.Equal(t, "duckduckgo", cfg.Search.Provider)
	assert.Equal(t, 50, cfg.Search.NumResults)
	assert.Equal(t, "output/linkedin_jobs.csv", cfg.Output.LedgerCSV)
	assert.Equal(t, []string{"Data Engineering", "snowflake"}, cfg.Input.Keywords)
}

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Output.Text, cfg.Output.Text)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("LEADHUNT_DATA_DIR", "/tmp/lh")
	t.Setenv("LEADHUNT_WINDOW_DAYS", "7")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/lh", cfg.App.DataDir)
	assert.Equal(t, 7, cfg.Filters.WindowDays)
	assert.Equal(t, filepath.Join("/tmp/lh", "leadhunt.db"), cfg.StorePath())

	t.Setenv("LEADHUNT_WINDOW_DAYS", "soon")
	_, err = Load("")
	assert.Error(t, err)
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("LEADHUNT_TEST_TOKEN=abc\n"), 0o644))
	t.Setenv("LEADHUNT_TEST_TOKEN", "")
	require.NoError(t, os.Unsetenv("LEADHUNT_TEST_TOKEN"))

	require.NoError(t, LoadEnv(path, filepath.Join(t.TempDir(), "missing.env")))
	assert.Equal(t, "abc", os.Getenv("LEADHUNT_TEST_TOKEN"))
}

func TestNormalizeAndValidate(t *testing.T) {
	cfg := Default()
	cfg.Input.Keywords = []string{" Data ", "data", "", "Go, Rust"}
	cfg.Output.TextMode = ""
	out, vr := NormalizeAndValidate(cfg)
	assert.True(t, vr.OK(), vr.Errors)
	assert.Equal(t, []string{"data", "go", "rust"}, out.Input.Keywords)
	assert.Equal(t, "overwrite", out.Output.TextMode)

	bad := Default()
	bad.Search.Provider = "bing"
	bad.Filters.WindowDays = 0
	bad.Output.TextMode = "merge"
	bad.Email.Enabled = true
	bad.Notify.Telegram.Enabled = true
	bad.App.Port = 0
	_, vr = NormalizeAndValidate(bad)
	assert.False(t, vr.OK())
	joined := ""
	for _, e := range vr.Errors {
		joined += e + "\n"
	}
	for _, want := range []string{"search.provider", "filters.window_days", "output.text_mode", "email.imap_host", "notify.telegram.chat_id", "app.port"} {
		assert.Contains(t, joined, want)
	}
}

func TestNoKeywordsWarns(t *testing.T) {
	_, vr := NormalizeAndValidate(Default())
	assert.True(t, vr.OK())
	assert.NotEmpty(t, vr.Warnings)
}

func TestSaveAtomicKeepsBackup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "config.yml")
	cfg := Default()
	require.NoError(t, SaveAtomic(path, cfg))

	cfg.Filters.WindowDays = 10
	require.NoError(t, SaveAtomic(path, cfg))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 10, got.Filters.WindowDays)
	_, err = os.Stat(path + ".bak")
	assert.NoError(t, err)

	cfg.Scoring.TitleRules = []Rule{{Tag: "", Any: nil}}
	assert.Error(t, SaveAtomic(path, cfg))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"config.yml", "config.yml.bak"}, names)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"defaults", func(*Config) {}, ""},
		{"provider case is ignored", func(c *Config) { c.Search.Provider = " DuckDuckGo " }, ""},
		{"unknown provider", func(c *Config) { c.Search.Provider = "bing" }, "search.provider"},
		{"no ledger", func(c *Config) { c.Output.LedgerCSV = " " }, "output.ledger_csv"},
		{"no window", func(c *Config) { c.Filters.WindowDays = 0 }, "filters.window_days"},
		{"blank rule term", func(c *Config) {
			c.Scoring.KeywordRules = []Rule{{Tag: "go", Weight: 1, Any: []string{"golang", " "}}}
		}, "scoring.keyword_rules[0].any"},
		{"blank penalty term", func(c *Config) {
			c.Scoring.Penalties = []Penalty{{Reason: "intern", Weight: -1, Any: []string{""}}}
		}, "scoring.penalties[0].any"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := Validate(cfg)
			if tt.want == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)

			path := filepath.Join(t.TempDir(), "config.yml")
			assert.Error(t, SaveAtomic(path, cfg))
			_, statErr := os.Stat(path)
			assert.True(t, os.IsNotExist(statErr), "invalid config must not be written")
		})
	}
}

func TestEnsureUserConfig(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	p, err := EnsureUserConfig(dir, "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config.yml"), p)

	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.App.DataDir)

	// existing file is left alone
	require.NoError(t, os.WriteFile(p, []byte("filters:\n  window_days: 3\n"), 0o644))
	p2, err := EnsureUserConfig(dir, "")
	require.NoError(t, err)
	cfg, err = Load(p2)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Filters.WindowDays)
}

func TestOverlayLists(t *testing.T) {
	dir := t.TempDir()
	kw := filepath.Join(dir, "keywords.txt")
	roster := filepath.Join(dir, "roster.txt")
	require.NoError(t, os.WriteFile(kw, []byte("# keywords\nSnowflake\nDevOps\n"), 0o644))
	require.NoError(t, os.WriteFile(roster, []byte("Acme\n\nGlobex\n"), 0o644))

	cfg := Default()
	cfg.Input.Keywords = []string{"devops"}
	cfg.Input.KeywordsFile = kw
	cfg.Slack.RosterFile = roster
	require.NoError(t, OverlayLists(&cfg))
	assert.Equal(t, []string{"devops", "snowflake"}, cfg.Input.Keywords)
	assert.Equal(t, []string{"Acme", "Globex"}, cfg.Slack.Roster)

	cfg.Input.KeywordsFile = filepath.Join(dir, "missing.txt")
	assert.Error(t, OverlayLists(&cfg))
}
