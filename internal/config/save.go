package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

var providers = map[string]bool{"serper": true, "duckduckgo": true}

// Validate rejects a config that would break the next run if written to disk.
// It is the subset of NormalizeAndValidate that does not depend on normalization.
func Validate(cfg Config) error {
	if errs := fieldErrors(cfg); len(errs) > 0 {
		return errors.New("invalid config: " + strings.Join(errs, "; "))
	}
	return nil
}

func fieldErrors(cfg Config) []string {
	var errs []string
	add := func(format string, args ...any) { errs = append(errs, fmt.Sprintf(format, args...)) }

	if p := strings.ToLower(strings.TrimSpace(cfg.Search.Provider)); !providers[p] {
		add("search.provider must be serper or duckduckgo, got %q", cfg.Search.Provider)
	}
	if strings.TrimSpace(cfg.Output.LedgerCSV) == "" {
		add("output.ledger_csv is required")
	}
	if cfg.Filters.WindowDays <= 0 {
		add("filters.window_days must be > 0")
	}
	if cfg.App.Port <= 0 || cfg.App.Port > 65535 {
		add("app.port must be 1..65535")
	}

	if cfg.Scoring.NotifyMinScore < 0 {
		add("scoring.notify_min_score must be >= 0")
	}
	for _, set := range []struct {
		name  string
		rules []Rule
	}{
		{"scoring.title_rules", cfg.Scoring.TitleRules},
		{"scoring.keyword_rules", cfg.Scoring.KeywordRules},
	} {
		name := set.name
		for i, r := range set.rules {
			if strings.TrimSpace(r.Tag) == "" {
				add("%s[%d].tag is required", name, i)
			}
			if blankTerms(r.Any) {
				add("%s[%d].any needs at least one non-empty term", name, i)
			}
		}
	}
	for i, p := range cfg.Scoring.Penalties {
		if strings.TrimSpace(p.Reason) == "" {
			add("scoring.penalties[%d].reason is required", i)
		}
		if blankTerms(p.Any) {
			add("scoring.penalties[%d].any needs at least one non-empty term", i)
		}
	}
	return errs
}

// blankTerms reports whether terms is empty or has an empty entry; the scorer
// would match every posting on "".
func blankTerms(terms []string) bool {
	if len(terms) == 0 {
		return true
	}
	for _, t := range terms {
		if strings.TrimSpace(t) == "" {
			return true
		}
	}
	return false
}

// SaveAtomic validates cfg, writes it to a synced temp file next to path and
// renames it into place. The previous file is kept as <path>.bak.
func SaveAtomic(path string, cfg Config) error {
	if err := Validate(cfg); err != nil {
		return err
	}
	b, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op after the rename

	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("save config: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("save config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	bak := path + ".bak"
	if err := os.Rename(path, bak); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("backup config: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return nil
}
