package scrape

import (
	"database/sql"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"leadhunt-engine/internal/config"
	"leadhunt-engine/internal/events"
	"leadhunt-engine/internal/ledger"
	"leadhunt-engine/internal/rank"
	"leadhunt-engine/internal/report"
	"leadhunt-engine/internal/resolve"
	"leadhunt-engine/internal/scrape/ddg"
	"leadhunt-engine/internal/scrape/serper"
	"leadhunt-engine/internal/scrape/types"
	"leadhunt-engine/internal/scrape/util"
	"leadhunt-engine/internal/secrets"
	"leadhunt-engine/internal/store"
)

// Deps are the long-lived pieces a Runner borrows from its caller.
type Deps struct {
	DB       *sql.DB
	Hub      *events.Hub
	Progress func(done, total int)
}

// NewSearcher picks the configured backend. serper needs SERPER_API_KEY.
func NewSearcher(cfg config.Config, lim *util.HostLimiter) (types.Searcher, error) {
	timeout := time.Duration(cfg.Search.TimeoutSeconds) * time.Second
	switch cfg.Search.Provider {
	case "duckduckgo":
		return ddg.New("", timeout, cfg.Search.NumResults, lim), nil
	case "serper", "":
		key, err := secrets.Lookup(secrets.SerperAPIKey)
		if err != nil {
			return nil, err
		}
		return serper.New(serper.Config{
			Endpoint: cfg.Search.Endpoint,
			APIKey:   key,
			Num:      cfg.Search.NumResults,
			NewsNum:  cfg.Search.NewsResults,
			GL:       cfg.Search.GL,
			HL:       cfg.Search.HL,
			Timeout:  timeout,
		}, lim), nil
	default:
		return nil, fmt.Errorf("unknown search provider %q", cfg.Search.Provider)
	}
}

// NewResolver wires the search backend, page namer and (when db is set) the
// identity cache.
func NewResolver(cfg config.Config, search types.Searcher, lim *util.HostLimiter, db *sql.DB) *resolve.Resolver {
	r := &resolve.Resolver{Search: search}
	if cfg.Resolve.ScrapeDisplayName {
		r.Pages = resolve.NewHTTPPageNamer(time.Duration(cfg.Resolve.PageTimeoutSeconds)*time.Second, lim)
	}
	if db != nil {
		r.Cache = store.IdentityCache{DB: db}
	}
	return r
}

// NewNotifier returns nil when Telegram notifications are off.
func NewNotifier(cfg config.Config) (report.Notifier, error) {
	if !cfg.Notify.Telegram.Enabled {
		return nil, nil
	}
	token, err := secrets.Lookup(secrets.TelegramBotToken)
	if err != nil {
		return nil, err
	}
	n, err := report.NewTelegramNotifier(token, cfg.Notify.Telegram.ChatID)
	if err != nil {
		return nil, err
	}
	return n, nil
}

// Build opens the ledger and assembles a Runner from cfg. The returned close
// function releases the ledger lock. Missing credentials and a locked ledger
// are returned before anything is fetched.
func Build(cfg config.Config, deps Deps) (*Runner, func() error, error) {
	lim := util.NewHostLimiter(2, 2)

	search, err := NewSearcher(cfg, lim)
	if err != nil {
		return nil, nil, err
	}
	notifier, err := NewNotifier(cfg)
	if err != nil {
		return nil, nil, err
	}

	led, err := ledger.Open(cfg.Output.LedgerCSV)
	if err != nil {
		return nil, nil, err
	}

	r := &Runner{
		Cfg:      cfg,
		Search:   search,
		Ledger:   led,
		Resolver: NewResolver(cfg, search, lim, deps.DB),
		DB:       deps.DB,
		Scorer:   rank.YAMLScorer{Cfg: cfg},
		Notifier: notifier,
		Hub:      deps.Hub,
		Progress: deps.Progress,
	}
	r.Pages = r.Resolver.Pages
	if ns, ok := search.(types.NewsSearcher); ok {
		r.News = ns
	}
	if cfg.Search.DelayMS > 0 {
		r.Pace = rate.NewLimiter(rate.Every(time.Duration(cfg.Search.DelayMS)*time.Millisecond), 1)
	}
	return r, led.Close, nil
}

// BuildEmail is Build without a search backend, for mailbox-only runs.
func BuildEmail(cfg config.Config, deps Deps) (*Runner, func() error, error) {
	notifier, err := NewNotifier(cfg)
	if err != nil {
		return nil, nil, err
	}
	led, err := ledger.Open(cfg.Output.LedgerCSV)
	if err != nil {
		return nil, nil, err
	}
	return &Runner{
		Cfg:      cfg,
		Ledger:   led,
		DB:       deps.DB,
		Scorer:   rank.YAMLScorer{Cfg: cfg},
		Notifier: notifier,
		Hub:      deps.Hub,
		Progress: deps.Progress,
	}, led.Close, nil
}
