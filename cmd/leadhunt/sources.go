package main

import (
	"context"
	"flag"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pterm/pterm"
	"github.com/tidwall/gjson"

	"leadhunt-engine/internal/ledger"
	"leadhunt-engine/internal/poll"
	"leadhunt-engine/internal/scrape"
	"leadhunt-engine/internal/scrape/slack"
	"leadhunt-engine/internal/scrape/util"
)

func cmdSlackFetch(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("slack-fetch", flag.ExitOnError)
	var cf configFlags
	cf.register(fs)
	days := fs.Int("days", 0, "days of history (overrides slack.days_back)")
	_ = fs.Parse(args)

	cfg, err := cf.load()
	if err != nil {
		return err
	}
	if *days > 0 {
		cfg.Slack.DaysBack = *days
	}

	c, err := scrape.NewSlackClient(cfg, util.NewHostLimiter(1, 1))
	if err != nil {
		return err
	}
	exp, jsonPath, err := scrape.FetchSlack(ctx, cfg, c, time.Now())
	if err != nil {
		return err
	}

	pterm.Success.Printf("#%s: %s messages -> %s\n", exp.Channel, count(len(exp.Messages)), jsonPath)
	if n := len(exp.Messages); n > 0 {
		if ts, ok := slack.ParseTS(gjson.GetBytes(exp.Messages[n-1], "ts").String()); ok {
			pterm.Info.Printf("oldest message %s\n", humanize.Time(ts))
		}
	}
	return nil
}

func cmdSlackParse(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("slack-parse", flag.ExitOnError)
	var cf configFlags
	cf.register(fs)
	_ = fs.Parse(args)

	cfg, err := cf.load()
	if err != nil {
		return err
	}

	var seen slack.Seener
	if cfg.Slack.UseLedger {
		led, err := ledger.Open(cfg.Output.LedgerCSV)
		if err != nil {
			return err
		}
		defer led.Close()
		seen = led
	}

	jobs, err := scrape.ParseSlack(cfg, seen)
	if err != nil {
		return err
	}
	rows := pterm.TableData{{"Company", "Title", "Listing"}}
	for _, j := range jobs {
		rows = append(rows, []string{j.Company, j.Title, j.URL})
	}
	if len(jobs) > 0 {
		_ = pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
	}
	pterm.Success.Printf("%s jobs -> %s\n", count(len(jobs)), cfg.Slack.ParsedOutput)
	return nil
}

func cmdEmail(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("email", flag.ExitOnError)
	var cf configFlags
	cf.register(fs)
	_ = fs.Parse(args)

	cfg, err := cf.load()
	if err != nil {
		return err
	}
	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	start := time.Now()
	res, err := poll.EmailOnce(ctx, cfg, scrape.Deps{DB: db.SQL()})
	printRunSummary(res, time.Since(start))
	return err
}
