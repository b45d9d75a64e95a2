package httpapi

import (
	"context"
	"database/sql"
	"sync/atomic"

	"leadhunt-engine/internal/config"
	"leadhunt-engine/internal/events"
)

// Scraper starts background runs. poll.Poller implements it.
type Scraper interface {
	Trigger(ctx context.Context) bool
	Running() bool
}

type Deps struct {
	DB  *sql.DB // nil when store.enabled is off
	Hub *events.Hub

	CfgVal       *atomic.Value // stores config.Config
	ScrapeStatus *atomic.Value // stores types.ScrapeStatus

	UserCfgPath string
	LoadCfg     func() (config.Config, error)

	Scraper Scraper
	// BaseCtx outlives requests; background runs started over HTTP use it.
	BaseCtx context.Context
}
