// Command leadhunt discovers fresh LinkedIn postings for a list of companies,
// plus the Slack and email sources, and can run the same pipeline as a local service.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"leadhunt-engine/internal/config"
	"leadhunt-engine/internal/ledger"
	"leadhunt-engine/internal/secrets"
	"leadhunt-engine/internal/store"
)

type command struct {
	name  string
	usage string
	run   func(ctx context.Context, args []string) error
}

var commands = []command{
	{"run", "search every company in input.companies_file and record new postings", cmdRun},
	{"resolve", "resolve company names to LinkedIn identities", cmdResolve},
	{"news", "print recent news for companies", cmdNews},
	{"slack-fetch", "export the configured Slack channel to text and raw JSON", cmdSlackFetch},
	{"slack-parse", "match the Slack export against the roster", cmdSlackParse},
	{"email", "read LinkedIn job alerts from the mailbox", cmdEmail},
	{"serve", "run the HTTP API and the poller", cmdServe},
	{"secrets", "set or delete a stored credential", cmdSecrets},
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: leadhunt <command> [flags]")
	fmt.Fprintln(os.Stderr)
	for _, c := range commands {
		fmt.Fprintf(os.Stderr, "  %-12s %s\n", c.name, c.usage)
	}
}

func main() {
	log.SetFlags(log.LstdFlags)

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	name, args := os.Args[1], os.Args[2:]
	if name == "-h" || name == "--help" || name == "help" {
		usage()
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	for _, c := range commands {
		if c.name == name {
			if err := c.run(ctx, args); err != nil {
				stop()
				fail(err)
			}
			return
		}
	}
	fmt.Fprintf(os.Stderr, "unknown command %q\n\n", name)
	usage()
	os.Exit(2)
}

func fail(err error) {
	var missing *secrets.MissingError
	switch {
	case errors.As(err, &missing):
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", missing.Error())
	case errors.Is(err, ledger.ErrLocked):
		fmt.Fprintf(os.Stderr, "ERROR: %v (is another run in progress?)\n", err)
	default:
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
	}
	os.Exit(1)
}

// configFlags are shared by every command that reads the config file.
type configFlags struct {
	path    string
	envFile string
}

func (c *configFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.path, "config", "config/config.yml", "config file")
	fs.StringVar(&c.envFile, "env", ".env", "dotenv file loaded before the config")
}

// load reads .env, the YAML file and the list overlays, then normalizes.
// Validation warnings are logged; errors fail the command.
func (c configFlags) load() (config.Config, error) {
	if err := config.LoadEnv(c.envFile); err != nil {
		return config.Config{}, err
	}
	cfg, err := config.Load(c.path)
	if err != nil {
		return cfg, fmt.Errorf("config load failed (%s): %w", c.path, err)
	}
	if err := config.OverlayLists(&cfg); err != nil {
		return cfg, err
	}
	cfg, vr := config.NormalizeAndValidate(cfg)
	for _, w := range vr.Warnings {
		log.Printf("[config] warning: %s", w)
	}
	if !vr.OK() {
		return cfg, fmt.Errorf("invalid config %s:\n- %s", c.path, strings.Join(vr.Errors, "\n- "))
	}
	return cfg, nil
}

// openStore returns nil when store.enabled is off.
func openStore(cfg config.Config) (*store.DB, error) {
	if !cfg.Store.Enabled {
		return nil, nil
	}
	db, err := store.Open(cfg.StorePath())
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", cfg.StorePath(), err)
	}
	return db, nil
}
