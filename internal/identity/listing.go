package identity

import "strings"

// ListingID extracts <id> from .../jobs/view/<id>[/...][?...].
func ListingID(raw string) (string, bool) {
	i := indexFold(raw, viewMarker)
	if i < 0 {
		return "", false
	}
	id := firstSegment(raw[i+len(viewMarker):])
	id = strings.TrimSpace(id)
	if id == "" {
		return "", false
	}
	return id, true
}

// ListingURL is the canonical view URL for an id.
func ListingURL(id string) string {
	return "https://www.linkedin.com/jobs/view/" + id
}

// IsListingURL reports whether raw points at a single job view page.
func IsListingURL(raw string) bool {
	return strings.Contains(strings.ToLower(raw), "linkedin.com/jobs/view/")
}
