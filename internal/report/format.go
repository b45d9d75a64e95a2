package report

import (
	"fmt"
	"strings"
	"time"

	"leadhunt-engine/internal/domain"
)

// LedgerHeader is the first row of the ledger CSV.
var LedgerHeader = []string{"timestamp", "company", "listing_id", "role", "url"}

func LedgerRow(rec domain.PostingRecord) []string {
	return []string{
		rec.DiscoveredAt.UTC().Format(time.RFC3339),
		rec.Company,
		rec.ListingID,
		rec.Role,
		rec.URL,
	}
}

// PostingLine is "company, listing_id, role, url".
func PostingLine(rec domain.PostingRecord) string {
	return strings.Join([]string{rec.Company, rec.ListingID, rec.Role, rec.URL}, ", ")
}

func CompanyHeader(name string) string {
	return "=== Company: " + name + " ==="
}

func NoneFound(windowDays int) string {
	return fmt.Sprintf("No relevant jobs found in the last %d days", windowDays)
}

// CompanyMapLine is "input_url, name, canonical_url".
func CompanyMapLine(input string, id domain.Identity) string {
	return strings.Join([]string{input, id.DisplayName, id.CanonicalURL}, ", ")
}

func NewsLine(title, link string) string {
	return fmt.Sprintf("  news: %s (%s)", title, link)
}

// SlackHeader opens the parsed Slack report.
func SlackHeader(total, companies int) []string {
	return []string{
		"=== Slack Jobs Matched ===",
		fmt.Sprintf("Total jobs: %d", total),
		fmt.Sprintf("Companies matched: %d", companies),
		strings.Repeat("=", 80),
		"",
	}
}

func SlackJobLine(company, title, id, url string) string {
	return strings.Join([]string{company, title, id, url}, ", ")
}
