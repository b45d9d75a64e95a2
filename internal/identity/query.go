package identity

import "strings"

const DefaultSiteToken = "linkedin.com"

// BuildQuery prefers the slug over the display name.
func BuildQuery(siteToken, displayName, slug string) string {
	siteToken = strings.TrimSpace(siteToken)
	if siteToken == "" {
		siteToken = DefaultSiteToken
	}
	if s := strings.TrimSpace(slug); s != "" {
		return siteToken + " " + s + " jobs"
	}
	return siteToken + " " + strings.TrimSpace(displayName) + " jobs"
}
