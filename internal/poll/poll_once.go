package poll

import (
	"context"
	"fmt"
	"log"
	"time"

	"leadhunt-engine/internal/config"
	"leadhunt-engine/internal/identity"
	"leadhunt-engine/internal/scrape"
	"leadhunt-engine/internal/scrape/email"
)

// Summary is what one poll did.
type Summary struct {
	RunID      string
	Companies  int
	Added      int
	EmailAdded int
}

// PollOnce runs the company pipeline over the input file and then, when enabled,
// the mailbox. Setup failures (input file, credentials, ledger lock) stop the
// poll before anything is fetched. A mailbox failure is returned alongside
// whatever the company pipeline already recorded.
func PollOnce(ctx context.Context, cfg config.Config, deps scrape.Deps) (Summary, error) {
	inputs, err := identity.ReadInputFile(cfg.Input.CompaniesFile, cfg.Input.ResolveNames)
	if err != nil {
		return Summary{}, fmt.Errorf("read inputs: %w", err)
	}

	r, closeLedger, err := scrape.Build(cfg, deps)
	if err != nil {
		return Summary{}, err
	}
	defer func() {
		if err := closeLedger(); err != nil {
			log.Printf("[poll] ledger unlock err=%v", err)
		}
	}()

	res, err := r.Run(ctx, inputs)
	sum := Summary{RunID: res.RunID, Companies: res.Companies, Added: len(res.Added)}
	if err != nil {
		return sum, err
	}

	if !cfg.Email.Enabled {
		return sum, nil
	}
	n, err := pollEmail(ctx, cfg, r)
	sum.EmailAdded = n
	if err != nil {
		return sum, fmt.Errorf("email: %w", err)
	}
	return sum, nil
}

// EmailOnce reads the mailbox without touching the company pipeline.
func EmailOnce(ctx context.Context, cfg config.Config, deps scrape.Deps) (scrape.Result, error) {
	settings, err := scrape.EmailSettings(cfg, time.Now())
	if err != nil {
		return scrape.Result{}, err
	}
	r, closeLedger, err := scrape.BuildEmail(cfg, deps)
	if err != nil {
		return scrape.Result{}, err
	}
	defer func() {
		if err := closeLedger(); err != nil {
			log.Printf("[poll] ledger unlock err=%v", err)
		}
	}()

	inbox, err := email.Open(ctx, settings)
	if err != nil {
		return scrape.Result{}, err
	}
	defer inbox.Close()
	return r.RunEmail(ctx, inbox)
}

func pollEmail(ctx context.Context, cfg config.Config, r *scrape.Runner) (int, error) {
	settings, err := scrape.EmailSettings(cfg, time.Now())
	if err != nil {
		return 0, err
	}
	inbox, err := email.Open(ctx, settings)
	if err != nil {
		return 0, err
	}
	defer inbox.Close()

	res, err := r.RunEmail(ctx, inbox)
	return len(res.Added), err
}
