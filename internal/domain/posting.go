package domain

import "time"

// Candidate is one raw search result before validation.
type Candidate struct {
	SourceURL string
	Title     string
	Snippet   string
	Date      string // optional, provider supplied ("3 days ago", "Jan 2, 2025")
}

// PostingRecord is an accepted listing. ListingID is the dedup key.
type PostingRecord struct {
	DiscoveredAt  time.Time
	Company       string
	ListingID     string
	Role          string
	URL           string
	PostedRecency *string
}

// Recency returns the posted phrase or "" when unknown.
func (p PostingRecord) Recency() string {
	if p.PostedRecency == nil {
		return ""
	}
	return *p.PostedRecency
}
