package scrape

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"leadhunt-engine/internal/config"
	"leadhunt-engine/internal/report"
	"leadhunt-engine/internal/resolve"
	"leadhunt-engine/internal/scrape/slack"
	"leadhunt-engine/internal/scrape/util"
	"leadhunt-engine/internal/secrets"
)

var ErrEmptyRoster = errors.New("slack roster is empty")

// NewSlackClient needs SLACK_BOT_TOKEN.
func NewSlackClient(cfg config.Config, lim *util.HostLimiter) (*slack.Client, error) {
	token, err := secrets.Lookup(secrets.SlackBotToken)
	if err != nil {
		return nil, err
	}
	timeout := time.Duration(cfg.Slack.TimeoutSeconds) * time.Second
	return slack.New(cfg.Slack.APIBase, token, timeout, lim), nil
}

// FetchSlack reads the last slack.days_back days of the configured channel and
// writes the text dump plus its raw JSON twin. It returns the export and the JSON path.
func FetchSlack(ctx context.Context, cfg config.Config, c *slack.Client, now time.Time) (slack.Export, string, error) {
	id, err := c.ChannelID(ctx, cfg.Slack.Channel)
	if err != nil {
		return slack.Export{}, "", fmt.Errorf("channel %s: %w", cfg.Slack.Channel, err)
	}

	exp := slack.Export{
		Channel:     cfg.Slack.Channel,
		DaysBack:    cfg.Slack.DaysBack,
		RetrievedAt: now,
		Messages:    c.History(ctx, id, now.AddDate(0, 0, -cfg.Slack.DaysBack)),
	}
	jsonPath, err := exp.Write(cfg.Slack.DumpText)
	if err != nil {
		return exp, "", err
	}
	log.Printf("[slack] export channel=%s messages=%d json=%s", exp.Channel, len(exp.Messages), jsonPath)
	return exp, jsonPath, nil
}

// ParseSlack matches the raw export against the roster and overwrites
// slack.parsed_output. seen is consulted only with slack.use_ledger.
func ParseSlack(cfg config.Config, seen slack.Seener) ([]slack.Job, error) {
	roster := resolve.NewRoster(cfg.Slack.Roster)
	if roster.Len() == 0 {
		return nil, ErrEmptyRoster
	}

	msgs, err := slack.LoadMessages(slack.RawJSONPath(cfg.Slack.DumpText))
	if err != nil {
		return nil, err
	}

	opts := slack.ParseOptions{}
	if cfg.Slack.KeywordFilter {
		opts.Keywords = cfg.Input.Keywords
	}
	if cfg.Slack.UseLedger && seen != nil {
		opts.Ledger = seen
	}

	jobs := slack.ParseJobs(msgs, roster, opts)
	if err := report.WriteLines(cfg.Slack.ParsedOutput, slack.ParsedLines(jobs)); err != nil {
		return jobs, err
	}
	log.Printf("[slack] parsed messages=%d roster=%d jobs=%d out=%s", len(msgs), roster.Len(), len(jobs), cfg.Slack.ParsedOutput)
	return jobs, nil
}
