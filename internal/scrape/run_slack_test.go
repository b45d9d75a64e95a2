package scrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadhunt-engine/internal/config"
	"leadhunt-engine/internal/scrape/slack"
)

type seenSet map[string]bool

func (s seenSet) Seen(id string) bool { return s[id] }

func slackConfig(t *testing.T, base string) config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Slack.APIBase = base
	cfg.Slack.Channel = "h1bjobs"
	cfg.Slack.DaysBack = 7
	cfg.Slack.DumpText = filepath.Join(dir, "slack_jobs.txt")
	cfg.Slack.ParsedOutput = filepath.Join(dir, "slack_parsed.txt")
	cfg.Slack.Roster = []string{"Acme", "Globex"}
	return cfg
}

func TestFetchAndParseSlack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/conversations.list":
			_, _ = w.Write([]byte(`{"ok":true,"channels":[{"id":"C9","name":"h1bjobs"}]}`))
		case "/conversations.history":
			_, _ = w.Write([]byte(`{"ok":true,"has_more":false,"messages":[
				{"ts":"1700000100.000200","text":"Acme is hiring https://www.linkedin.com/jobs/view/4012345678"},
				{"ts":"1700000000.000100","text":"lunch?"}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	cfg := slackConfig(t, srv.URL)
	c := slack.New(cfg.Slack.APIBase, "xoxb-test", time.Second, nil)

	exp, jsonPath, err := FetchSlack(context.Background(), cfg, c, time.Now())
	require.NoError(t, err)
	assert.Len(t, exp.Messages, 2)
	assert.Equal(t, slack.RawJSONPath(cfg.Slack.DumpText), jsonPath)

	dump, err := os.ReadFile(cfg.Slack.DumpText)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(dump), "=== Messages from #h1bjobs (Last 7 days) ==="))

	jobs, err := ParseSlack(cfg, nil)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "Acme", jobs[0].Company)
	assert.Equal(t, "4012345678", jobs[0].ListingID)

	out, err := os.ReadFile(cfg.Slack.ParsedOutput)
	require.NoError(t, err)
	assert.Contains(t, string(out), "Total jobs: 1")
	assert.Contains(t, string(out), "4012345678, https://www.linkedin.com/jobs/view/4012345678")

	cfg.Slack.UseLedger = true
	jobs, err = ParseSlack(cfg, seenSet{"4012345678": true})
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestParseSlackNeedsRoster(t *testing.T) {
	cfg := slackConfig(t, "")
	cfg.Slack.Roster = nil
	_, err := ParseSlack(cfg, nil)
	assert.ErrorIs(t, err, ErrEmptyRoster)
}

func TestFetchSlackUnknownChannel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true,"channels":[{"id":"C1","name":"general"}]}`))
	}))
	defer srv.Close()

	cfg := slackConfig(t, srv.URL)
	c := slack.New(cfg.Slack.APIBase, "xoxb-test", time.Second, nil)
	_, _, err := FetchSlack(context.Background(), cfg, c, time.Now())
	assert.ErrorIs(t, err, slack.ErrChannelNotFound)

	_, err = os.Stat(slack.RawJSONPath(cfg.Slack.DumpText))
	assert.True(t, os.IsNotExist(err))
}
