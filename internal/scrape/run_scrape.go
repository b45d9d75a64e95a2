package scrape

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"leadhunt-engine/internal/domain"
	"leadhunt-engine/internal/events"
	"leadhunt-engine/internal/filter"
	"leadhunt-engine/internal/identity"
	"leadhunt-engine/internal/report"
	"leadhunt-engine/internal/scrape/util"
)

type listingLink struct {
	id   string
	link string
}

// Run processes every input (LinkedIn URL, or company name with input.resolve_names)
// in order and writes the text report and company map when they have content.
func (r *Runner) Run(ctx context.Context, inputs []string) (Result, error) {
	if r.Search == nil {
		return Result{}, errors.New("run: no search backend")
	}
	if r.Ledger == nil {
		return Result{}, errors.New("run: no ledger")
	}

	res := Result{RunID: uuid.NewString(), Inputs: len(inputs)}
	r.Hub.Emit(res.RunID, events.RunStarted, map[string]any{"inputs": len(inputs)})
	log.Printf("[scrape] run start run_id=%s inputs=%d source=%s ledger=%d", res.RunID, len(inputs), r.source(), r.Ledger.Len())

	for i, input := range inputs {
		if r.Pace != nil {
			if err := r.Pace.Wait(ctx); err != nil {
				return r.stop(res, err)
			}
		}
		if err := ctx.Err(); err != nil {
			return r.stop(res, err)
		}

		if id, ok := r.identify(ctx, input); ok {
			if err := r.runCompany(ctx, &res, input, id); err != nil {
				return r.stop(res, err)
			}
		} else {
			res.skip("unparsed_input")
		}

		if r.Progress != nil {
			r.Progress(i+1, len(inputs))
		}
	}

	if err := r.writeOutputs(res); err != nil {
		return res, err
	}

	r.Hub.Emit(res.RunID, events.RunFinished, map[string]any{
		"companies": res.Companies,
		"checked":   res.Checked,
		"added":     len(res.Added),
	})
	log.Printf("[scrape] run done run_id=%s companies=%d checked=%d added=%d", res.RunID, res.Companies, res.Checked, len(res.Added))
	return res, nil
}

// stop ends a run early. Records already in the ledger still get their report
// lines, or the next run would skip them without them ever being reported.
func (r *Runner) stop(res Result, cause error) (Result, error) {
	log.Printf("[scrape] run stopped run_id=%s companies=%d added=%d err=%v", res.RunID, res.Companies, len(res.Added), cause)
	if err := r.writeOutputs(res); err != nil {
		return res, errors.Join(cause, err)
	}
	return res, cause
}

// identify turns one input line into an identity. URLs are parsed; plain names go
// through the resolver when name inputs are enabled.
func (r *Runner) identify(ctx context.Context, input string) (domain.Identity, bool) {
	if util.LooksLikeURL(input) || util.IsLinkedInURL(input) {
		id, ok := identity.Parse(input)
		if !ok {
			log.Printf("[scrape] skipped reason=unparsed_url input=%q", input)
			return domain.Identity{}, false
		}
		if r.Cfg.Resolve.ScrapeDisplayName && r.Pages != nil && strings.Contains(strings.ToLower(input), "/company/") {
			if name, ok := r.Pages.PageName(ctx, id.CanonicalURL); ok {
				id.DisplayName = name
			}
		}
		return id, true
	}

	if !r.Cfg.Input.ResolveNames || r.Resolver == nil {
		log.Printf("[scrape] skipped reason=name_input_disabled input=%q", input)
		return domain.Identity{}, false
	}
	id, ok := r.Resolver.Resolve(ctx, input)
	if !ok {
		log.Printf("[scrape] skipped reason=unresolved_name input=%q", input)
	}
	return id, ok
}

func (r *Runner) runCompany(ctx context.Context, res *Result, input string, id domain.Identity) error {
	name := strings.TrimSpace(id.DisplayName)
	if name == "" {
		name = "Unknown"
	}
	res.Companies++
	res.Lines = append(res.Lines, "", report.CompanyHeader(name))
	res.MapLines = append(res.MapLines, report.CompanyMapLine(input, id))

	query := identity.BuildQuery(r.Cfg.Search.SiteToken, name, id.Slug)
	links := listingLinks(r.Search.Search(ctx, query))
	log.Printf("[scrape] company=%q slug=%s listings=%d", name, id.Slug, len(links))

	found := 0
	for _, l := range links {
		if r.Ledger.Seen(l.id) {
			res.skip("seen")
			continue
		}
		res.Checked++

		c, ok := r.lookupListing(ctx, l.link)
		if !ok {
			res.skip("listing_not_found")
			log.Printf("[scrape] skipped reason=listing_not_found listing_id=%s", l.id)
			continue
		}

		role := RoleFromTitle(c.Title)
		posted, hasPosted := filter.PostedPhrase(c.Snippet, c.Date)
		if keep, why := r.keep(role, c.Snippet, posted); !keep {
			res.skip(why)
			log.Printf("[scrape] skipped reason=%s listing_id=%s role=%q posted=%q", why, l.id, role, posted)
			continue
		}

		rec := domain.PostingRecord{
			DiscoveredAt: r.now().UTC(),
			Company:      name,
			ListingID:    l.id,
			Role:         role,
			URL:          l.link,
		}
		if hasPosted {
			rec.PostedRecency = &posted
		}

		added, err := r.Accept(ctx, res.RunID, rec, r.source(), c.Snippet)
		if err != nil {
			return fmt.Errorf("company %s: %w", name, err)
		}
		if !added {
			res.skip("seen")
			continue
		}
		res.Added = append(res.Added, rec)
		res.Lines = append(res.Lines, report.PostingLine(rec))
		found++
	}

	if found == 0 {
		res.Lines = append(res.Lines, report.NoneFound(r.Cfg.Filters.WindowDays))
	}

	if r.Cfg.Search.IncludeNews && r.News != nil {
		for _, n := range r.News.News(ctx, name) {
			res.Lines = append(res.Lines, report.NewsLine(n.Title, n.SourceURL))
		}
	}
	return nil
}

// listingLinks keeps results that point at a single listing, first occurrence of
// each id only.
func listingLinks(results []domain.Candidate) []listingLink {
	var out []listingLink
	seen := map[string]bool{}
	for _, c := range results {
		if !identity.IsListingURL(c.SourceURL) {
			continue
		}
		id, ok := identity.ListingID(c.SourceURL)
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, listingLink{id: id, link: c.SourceURL})
	}
	return out
}

func (r *Runner) writeOutputs(res Result) error {
	out := r.Cfg.Output
	if len(res.Added) > 0 && out.Text != "" {
		write := report.WriteLines
		if out.TextMode == "append" {
			write = report.AppendLines
		}
		if err := write(out.Text, res.Lines); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		log.Printf("[scrape] wrote report path=%s lines=%d", out.Text, len(res.Lines))
	}
	if len(res.MapLines) > 0 && out.CompanyMap != "" {
		if err := report.WriteLines(out.CompanyMap, res.MapLines); err != nil {
			return fmt.Errorf("write company map: %w", err)
		}
	}
	return nil
}
