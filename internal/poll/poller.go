package poll

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"sync/atomic"
	"time"

	"leadhunt-engine/internal/config"
	"leadhunt-engine/internal/events"
	"leadhunt-engine/internal/scheduler"
	"leadhunt-engine/internal/scrape"
	"leadhunt-engine/internal/scrape/types"
)

// ErrRunning is returned when a poll is requested while one is in flight.
var ErrRunning = errors.New("a run is already in progress")

// Poller owns the "one run at a time" guard and the status served at
// /scrape/status. Cfg holds a config.Config, Status a types.ScrapeStatus.
type Poller struct {
	Cfg    *atomic.Value
	Status *atomic.Value
	DB     *sql.DB
	Hub    *events.Hub

	running atomic.Bool
	// poll is swapped in tests.
	poll func(ctx context.Context, cfg config.Config, deps scrape.Deps) (Summary, error)
}

func NewPoller(cfgVal, status *atomic.Value, db *sql.DB, hub *events.Hub) *Poller {
	if status.Load() == nil {
		status.Store(types.ScrapeStatus{})
	}
	return &Poller{Cfg: cfgVal, Status: status, DB: db, Hub: hub, poll: PollOnce}
}

func (p *Poller) Running() bool { return p.running.Load() }

// RunNow polls synchronously. It returns ErrRunning instead of waiting when a
// run is already in flight.
func (p *Poller) RunNow(ctx context.Context) error {
	if !p.running.CompareAndSwap(false, true) {
		return ErrRunning
	}
	defer p.running.Store(false)

	cfg, _ := p.Cfg.Load().(config.Config)

	p.update(func(st *types.ScrapeStatus) {
		st.Running = true
		st.LastRunAt = time.Now().UTC().Format(time.RFC3339)
	})

	sum, err := p.poll(ctx, cfg, scrape.Deps{DB: p.DB, Hub: p.Hub})

	p.update(func(st *types.ScrapeStatus) {
		st.Running = false
		st.RunID = sum.RunID
		st.LastAdded = sum.Added + sum.EmailAdded
		if err != nil {
			st.LastError = err.Error()
			return
		}
		st.LastError = ""
		st.LastOkAt = time.Now().UTC().Format(time.RFC3339)
	})

	if err != nil {
		log.Printf("[poll] error run_id=%s err=%v", sum.RunID, err)
		return err
	}
	log.Printf("[poll] ok run_id=%s companies=%d added=%d email_added=%d", sum.RunID, sum.Companies, sum.Added, sum.EmailAdded)
	return nil
}

// Trigger starts a poll in the background. false means one is already running.
func (p *Poller) Trigger(ctx context.Context) bool {
	if p.running.Load() {
		return false
	}
	go func() {
		if err := p.RunNow(ctx); errors.Is(err, ErrRunning) {
			log.Printf("[poll] trigger dropped, run in progress")
		}
	}()
	return true
}

// Start blocks, polling every polling.interval_minutes until ctx is done.
// A zero interval returns immediately.
func (p *Poller) Start(ctx context.Context) {
	cfg, _ := p.Cfg.Load().(config.Config)
	mins := cfg.Polling.IntervalMinutes
	if mins <= 0 {
		log.Printf("[poll] disabled interval_minutes=%d", mins)
		return
	}
	scheduler.Every(ctx, time.Duration(mins)*time.Minute, "poll", func(ctx context.Context) error {
		err := p.RunNow(ctx)
		if errors.Is(err, ErrRunning) {
			return nil
		}
		return err
	})
}

func (p *Poller) update(fn func(st *types.ScrapeStatus)) {
	st, _ := p.Status.Load().(types.ScrapeStatus)
	fn(&st)
	p.Status.Store(st)
}
