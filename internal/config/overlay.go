package config

import (
	"leadhunt-engine/internal/filter"
	"leadhunt-engine/internal/identity"
)

// OverlayLists appends keywords and roster names from their plain-text files.
// A configured file that cannot be read is an error.
func OverlayLists(cfg *Config) error {
	if p := cfg.Input.KeywordsFile; p != "" {
		lines, err := identity.ReadLines(p)
		if err != nil {
			return err
		}
		cfg.Input.Keywords = filter.NormalizeKeywords(append(cfg.Input.Keywords, lines...))
	}
	if p := cfg.Slack.RosterFile; p != "" {
		lines, err := identity.ReadLines(p)
		if err != nil {
			return err
		}
		cfg.Slack.Roster = append(cfg.Slack.Roster, lines...)
	}
	return nil
}
