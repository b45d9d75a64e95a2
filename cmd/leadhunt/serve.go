package main

import (
	"context"
	"crypto/subtle"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"leadhunt-engine/internal/config"
	"leadhunt-engine/internal/events"
	"leadhunt-engine/internal/httpapi"
	"leadhunt-engine/internal/poll"
	"leadhunt-engine/internal/scrape/types"
)

func cmdServe(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	envFile := fs.String("env", ".env", "dotenv file")
	dataDir := fs.String("data-dir", "", "engine data dir (default $LEADHUNT_DATA_DIR or ./data)")
	template := fs.String("config", filepath.Join("config", "config.yml"), "config copied into the data dir on first start")
	addr := fs.String("addr", "", "listen address (default 127.0.0.1:<app.port>)")
	_ = fs.Parse(args)

	if err := config.LoadEnv(*envFile); err != nil {
		return err
	}

	dir := *dataDir
	if dir == "" {
		dir = os.Getenv("LEADHUNT_DATA_DIR")
	}
	if dir == "" {
		dir = "data"
	}
	userCfgPath, err := config.EnsureUserConfig(dir, *template)
	if err != nil {
		return fmt.Errorf("config bootstrap failed: %w", err)
	}

	// Load config and keep it reloadable
	loadCfg := func() (config.Config, error) {
		cf := configFlags{path: userCfgPath, envFile: *envFile}
		return cf.load()
	}
	cfg, err := loadCfg()
	if err != nil {
		return err
	}
	var cfgVal atomic.Value // stores config.Config
	cfgVal.Store(cfg)

	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	hub := events.NewHub()
	var status atomic.Value // stores types.ScrapeStatus
	status.Store(types.ScrapeStatus{})
	poller := poll.NewPoller(&cfgVal, &status, db.SQL(), hub)

	g, gctx := errgroup.WithContext(ctx)
	gctx, cancel := context.WithCancel(gctx)
	defer cancel()

	mux := httpapi.NewMux(httpapi.Deps{
		DB:           db.SQL(),
		Hub:          hub,
		CfgVal:       &cfgVal,
		ScrapeStatus: &status,
		UserCfgPath:  userCfgPath,
		LoadCfg:      loadCfg,
		Scraper:      poller,
		BaseCtx:      gctx,
	})
	if token := strings.TrimSpace(os.Getenv("LEADHUNT_SHUTDOWN_TOKEN")); token != "" {
		mux.HandleFunc("/shutdown", shutdownHandler(token, cancel))
	}

	listen := *addr
	if listen == "" {
		listen = fmt.Sprintf("127.0.0.1:%d", cfg.App.Port)
	}
	srv := &http.Server{
		Addr:              listen,
		Handler:           httpapi.Chain(mux, httpapi.DefaultStack...),
		ReadHeaderTimeout: 5 * time.Second,
		// SSE streams end with the server context
		BaseContext: func(net.Listener) context.Context { return gctx },
	}

	g.Go(func() error {
		log.Printf("[serve] listening on http://%s config=%s store=%t", listen, userCfgPath, db != nil)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, scancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer scancel()
		log.Printf("[serve] shutting down")
		return srv.Shutdown(sctx)
	})
	g.Go(func() error {
		poller.Start(gctx)
		return nil
	})
	return g.Wait()
}

// shutdownHandler stops the service for local callers holding the token.
func shutdownHandler(token string, stop context.CancelFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			httpapi.WriteError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
			return
		}
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		if ip := net.ParseIP(host); ip == nil || !ip.IsLoopback() {
			httpapi.WriteError(w, r, http.StatusForbidden, "forbidden", "forbidden")
			return
		}
		got := r.Header.Get("X-Shutdown-Token")
		if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			httpapi.WriteError(w, r, http.StatusUnauthorized, "unauthorized", "unauthorized")
			return
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("shutting down\n"))
		go stop()
	}
}
