package filter

// Listing is what the acceptance gates look at.
type Listing struct {
	Title       string
	Description string
	Posted      string // relative phrase, "" when unknown
}

// ShouldKeep runs freshness then relevance. reason is set when keep is false.
func ShouldKeep(l Listing, keywords []string, windowDays int) (keep bool, reason string) {
	if !IsFresh(l.Posted, windowDays) {
		return false, "stale"
	}
	if !IsRelevant(l.Title, l.Description, keywords) {
		return false, "no_keyword_match"
	}
	return true, ""
}
