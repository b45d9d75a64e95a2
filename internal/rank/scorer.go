package rank

import "leadhunt-engine/internal/domain"

// Scorer ranks an accepted posting. text is whatever description the source had
// (search snippet, alert card, chat message).
type Scorer interface {
	Score(rec domain.PostingRecord, text string) (score int, tags []string)
}
