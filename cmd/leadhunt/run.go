package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/pterm/pterm"

	"leadhunt-engine/internal/identity"
	"leadhunt-engine/internal/report"
	"leadhunt-engine/internal/scrape"
	"leadhunt-engine/internal/scrape/types"
	"leadhunt-engine/internal/scrape/util"
)

func cmdRun(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	var cf configFlags
	cf.register(fs)
	companies := fs.String("companies", "", "input file (overrides input.companies_file)")
	window := fs.Int("window", 0, "freshness window in days (overrides filters.window_days)")
	noProgress := fs.Bool("no-progress", false, "hide the progress bar")
	_ = fs.Parse(args)

	cfg, err := cf.load()
	if err != nil {
		return err
	}
	if *companies != "" {
		cfg.Input.CompaniesFile = *companies
	}
	if *window > 0 {
		cfg.Filters.WindowDays = *window
	}

	inputs, err := identity.ReadInputFile(cfg.Input.CompaniesFile, cfg.Input.ResolveNames)
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		log.Printf("[run] no inputs in %s", cfg.Input.CompaniesFile)
		return nil
	}

	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	deps := scrape.Deps{DB: db.SQL()}
	var bar *pb.ProgressBar
	if !*noProgress {
		bar = pb.New(len(inputs))
		deps.Progress = func(done, _ int) { bar.SetCurrent(int64(done)) }
	}

	r, closeLedger, err := scrape.Build(cfg, deps)
	if err != nil {
		return err
	}
	defer closeLedger()

	if bar != nil {
		bar.Start()
	}
	start := time.Now()
	res, err := r.Run(ctx, inputs)
	if bar != nil {
		bar.Finish()
	}
	printRunSummary(res, time.Since(start))
	return err
}

func cmdResolve(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("resolve", flag.ExitOnError)
	var cf configFlags
	cf.register(fs)
	_ = fs.Parse(args)
	if fs.NArg() == 0 {
		return errors.New(`usage: leadhunt resolve "Company Name" ...`)
	}

	cfg, err := cf.load()
	if err != nil {
		return err
	}
	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	lim := util.NewHostLimiter(2, 2)
	search, err := scrape.NewSearcher(cfg, lim)
	if err != nil {
		return err
	}
	res := scrape.NewResolver(cfg, search, lim, db.SQL())

	rows := pterm.TableData{{"Input", "Company", "Slug", "URL"}}
	for _, name := range fs.Args() {
		id, ok := res.Resolve(ctx, name)
		if !ok {
			rows = append(rows, []string{name, pterm.Red("not found"), "", ""})
			continue
		}
		rows = append(rows, []string{name, id.DisplayName, id.Slug, id.CanonicalURL})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
}

func cmdNews(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("news", flag.ExitOnError)
	var cf configFlags
	cf.register(fs)
	_ = fs.Parse(args)
	if fs.NArg() == 0 {
		return errors.New(`usage: leadhunt news "Company Name" ...`)
	}

	cfg, err := cf.load()
	if err != nil {
		return err
	}
	search, err := scrape.NewSearcher(cfg, util.NewHostLimiter(2, 2))
	if err != nil {
		return err
	}
	ns, ok := search.(types.NewsSearcher)
	if !ok {
		return fmt.Errorf("search provider %s has no news endpoint", search.Name())
	}

	for _, company := range fs.Args() {
		pterm.DefaultSection.Println(company)
		items := ns.News(ctx, company)
		if len(items) == 0 {
			pterm.Info.Println("no news")
			continue
		}
		for _, n := range items {
			fmt.Println(report.NewsLine(n.Title, n.SourceURL))
		}
	}
	return nil
}
