package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Rule struct {
	Tag    string   `yaml:"tag" json:"tag"`
	Weight int      `yaml:"weight" json:"weight"`
	Any    []string `yaml:"any" json:"any"`
}

type Penalty struct {
	Reason string   `yaml:"reason" json:"reason"`
	Weight int      `yaml:"weight" json:"weight"`
	Any    []string `yaml:"any" json:"any"`
}

type Config struct {
	App struct {
		Port    int    `yaml:"port" json:"port"`
		DataDir string `yaml:"data_dir" json:"data_dir"`
	} `yaml:"app" json:"app"`

	Input struct {
		CompaniesFile string   `yaml:"companies_file" json:"companies_file"`
		KeywordsFile  string   `yaml:"keywords_file" json:"keywords_file"`
		Keywords      []string `yaml:"keywords" json:"keywords"`
		ResolveNames  bool     `yaml:"resolve_names" json:"resolve_names"`
	} `yaml:"input" json:"input"`

	Search struct {
		Provider       string `yaml:"provider" json:"provider"` // serper | duckduckgo
		Endpoint       string `yaml:"endpoint" json:"endpoint"`
		SiteToken      string `yaml:"site_token" json:"site_token"`
		NumResults     int    `yaml:"num_results" json:"num_results"`
		GL             string `yaml:"gl" json:"gl"`
		HL             string `yaml:"hl" json:"hl"`
		TimeoutSeconds int    `yaml:"timeout_seconds" json:"timeout_seconds"`
		DelayMS        int    `yaml:"delay_ms" json:"delay_ms"`
		IncludeNews    bool   `yaml:"include_news" json:"include_news"`
		NewsResults    int    `yaml:"news_results" json:"news_results"`
	} `yaml:"search" json:"search"`

	Filters struct {
		WindowDays int `yaml:"window_days" json:"window_days"`
	} `yaml:"filters" json:"filters"`

	Resolve struct {
		ScrapeDisplayName  bool `yaml:"scrape_display_name" json:"scrape_display_name"`
		PageTimeoutSeconds int  `yaml:"page_timeout_seconds" json:"page_timeout_seconds"`
	} `yaml:"resolve" json:"resolve"`

	Output struct {
		LedgerCSV  string `yaml:"ledger_csv" json:"ledger_csv"`
		Text       string `yaml:"text" json:"text"`
		TextMode   string `yaml:"text_mode" json:"text_mode"` // overwrite | append
		CompanyMap string `yaml:"company_map" json:"company_map"`
	} `yaml:"output" json:"output"`

	Store struct {
		Enabled bool   `yaml:"enabled" json:"enabled"`
		Path    string `yaml:"path" json:"path"`
	} `yaml:"store" json:"store"`

	Slack struct {
		APIBase        string   `yaml:"api_base" json:"api_base"`
		Channel        string   `yaml:"channel" json:"channel"`
		DaysBack       int      `yaml:"days_back" json:"days_back"`
		TimeoutSeconds int      `yaml:"timeout_seconds" json:"timeout_seconds"`
		DumpText       string   `yaml:"dump_text" json:"dump_text"`
		RosterFile     string   `yaml:"roster_file" json:"roster_file"`
		Roster         []string `yaml:"roster" json:"roster"`
		ParsedOutput   string   `yaml:"parsed_output" json:"parsed_output"`
		KeywordFilter  bool     `yaml:"keyword_filter" json:"keyword_filter"`
		UseLedger      bool     `yaml:"use_ledger" json:"use_ledger"`
	} `yaml:"slack" json:"slack"`

	Email struct {
		Enabled          bool     `yaml:"enabled" json:"enabled"`
		IMAPHost         string   `yaml:"imap_host" json:"imap_host"`
		IMAPPort         int      `yaml:"imap_port" json:"imap_port"`
		Username         string   `yaml:"username" json:"username"`
		Mailbox          string   `yaml:"mailbox" json:"mailbox"`
		SearchSubjectAny []string `yaml:"search_subject_any" json:"search_subject_any"`
		MaxMessages      int      `yaml:"max_messages" json:"max_messages"`
	} `yaml:"email" json:"email"`

	Notify struct {
		Telegram struct {
			Enabled bool  `yaml:"enabled" json:"enabled"`
			ChatID  int64 `yaml:"chat_id" json:"chat_id"`
		} `yaml:"telegram" json:"telegram"`
	} `yaml:"notify" json:"notify"`

	Scoring struct {
		NotifyMinScore int       `yaml:"notify_min_score" json:"notify_min_score"`
		TitleRules     []Rule    `yaml:"title_rules" json:"title_rules"`
		KeywordRules   []Rule    `yaml:"keyword_rules" json:"keyword_rules"`
		Penalties      []Penalty `yaml:"penalties" json:"penalties"`
	} `yaml:"scoring" json:"scoring"`

	Polling struct {
		IntervalMinutes int `yaml:"interval_minutes" json:"interval_minutes"`
	} `yaml:"polling" json:"polling"`
}

// Default mirrors the paths and limits the pipeline has always used.
func Default() Config {
	var c Config
	c.App.Port = 38471
	c.App.DataDir = "data"

	c.Input.CompaniesFile = "knowledge/linkedin_companies.txt"

	c.Search.Provider = "serper"
	c.Search.Endpoint = "https://google.serper.dev"
	c.Search.SiteToken = "linkedin.com"
	c.Search.NumResults = 50
	c.Search.GL = "us"
	c.Search.HL = "en"
	c.Search.TimeoutSeconds = 20
	c.Search.DelayMS = 1000
	c.Search.NewsResults = 5

	c.Filters.WindowDays = 30

	c.Resolve.ScrapeDisplayName = true
	c.Resolve.PageTimeoutSeconds = 15

	c.Output.LedgerCSV = "output/linkedin_jobs.csv"
	c.Output.Text = "output/linkedin_jobs.txt"
	c.Output.TextMode = "overwrite"
	c.Output.CompanyMap = "output/linkedin_company_matches.txt"

	c.Slack.APIBase = "https://slack.com/api"
	c.Slack.Channel = "h1bjobs"
	c.Slack.DaysBack = 30
	c.Slack.TimeoutSeconds = 10
	c.Slack.DumpText = "output/slack_jobs.txt"
	c.Slack.ParsedOutput = "output/slack_parsed_jobs.txt"

	c.Email.IMAPPort = 993
	c.Email.Mailbox = "INBOX"
	c.Email.SearchSubjectAny = []string{"job alert", "jobs for you", "is hiring"}
	c.Email.MaxMessages = 50

	c.Scoring.NotifyMinScore = 5
	return c
}

// LoadEnv reads .env style files into the process environment. Missing files are ignored;
// variables already set win.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Load reads path over Default() and applies environment overrides.
// A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return cfg, err
		default:
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return cfg, fmt.Errorf("parse %s: %w", path, err)
			}
		}
	}
	if err := ApplyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ApplyEnv applies LEADHUNT_* overrides.
func ApplyEnv(cfg *Config) error {
	if v := strings.TrimSpace(os.Getenv("LEADHUNT_DATA_DIR")); v != "" {
		cfg.App.DataDir = v
	}
	if v := strings.TrimSpace(os.Getenv("LEADHUNT_WINDOW_DAYS")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("LEADHUNT_WINDOW_DAYS: %w", err)
		}
		cfg.Filters.WindowDays = n
	}
	if v := strings.TrimSpace(os.Getenv("LEADHUNT_PORT")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("LEADHUNT_PORT: %w", err)
		}
		cfg.App.Port = n
	}
	return nil
}

// StorePath is the sqlite file, defaulting into the data dir.
func (c Config) StorePath() string {
	if c.Store.Path != "" {
		return c.Store.Path
	}
	return filepath.Join(c.App.DataDir, "leadhunt.db")
}
