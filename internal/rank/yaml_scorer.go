package rank

import (
	"strings"

	"leadhunt-engine/internal/config"
	"leadhunt-engine/internal/domain"
)

// YAMLScorer applies the scoring section of the config. Title rules only look at
// the role; keyword rules and penalties look at role, company and text.
type YAMLScorer struct {
	Cfg config.Config
}

func (s YAMLScorer) Score(rec domain.PostingRecord, text string) (int, []string) {
	title := strings.ToLower(rec.Role)
	full := strings.ToLower(rec.Role + " " + rec.Company + " " + text)

	score := 0
	var tags []string

	apply := func(rules []config.Rule, hay string) {
		for _, r := range rules {
			if containsAny(hay, r.Any) {
				score += r.Weight
				tags = append(tags, r.Tag)
			}
		}
	}

	apply(s.Cfg.Scoring.TitleRules, title)
	apply(s.Cfg.Scoring.KeywordRules, full)

	for _, p := range s.Cfg.Scoring.Penalties {
		if containsAny(full, p.Any) {
			score += p.Weight
		}
	}

	return score, uniq(tags)
}

// ShouldNotify reports whether a score clears the configured threshold.
func (s YAMLScorer) ShouldNotify(score int) bool {
	return score >= s.Cfg.Scoring.NotifyMinScore
}

func containsAny(hay string, needles []string) bool {
	for _, n := range needles {
		n = strings.ToLower(strings.TrimSpace(n))
		if n != "" && strings.Contains(hay, n) {
			return true
		}
	}
	return false
}

func uniq(in []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(in))
	for _, t := range in {
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
