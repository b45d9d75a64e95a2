package main

import (
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pterm/pterm"

	"leadhunt-engine/internal/scrape"
)

func count(n int) string { return humanize.Comma(int64(n)) }

func printRunSummary(res scrape.Result, took time.Duration) {
	pterm.DefaultSection.Println("Run summary")
	_ = pterm.DefaultTable.WithHasHeader().WithData(pterm.TableData{
		{"Run", "Inputs", "Companies", "Checked", "Added", "Took"},
		{res.RunID, count(res.Inputs), count(res.Companies), count(res.Checked), count(len(res.Added)), took.Round(time.Millisecond).String()},
	}).Render()

	if len(res.Skipped) > 0 {
		reasons := make([]string, 0, len(res.Skipped))
		for k := range res.Skipped {
			reasons = append(reasons, k)
		}
		sort.Strings(reasons)
		rows := pterm.TableData{{"Skipped", "Count"}}
		for _, k := range reasons {
			rows = append(rows, []string{k, count(res.Skipped[k])})
		}
		_ = pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
	}

	if len(res.Added) == 0 {
		pterm.Info.Println("no new postings")
		return
	}
	rows := pterm.TableData{{"Company", "Role", "Posted", "Listing"}}
	for _, rec := range res.Added {
		rows = append(rows, []string{rec.Company, rec.Role, rec.Recency(), rec.URL})
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
	pterm.Success.Printf("%s new postings\n", count(len(res.Added)))
}
