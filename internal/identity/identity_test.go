package identity

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		ok       bool
		slug     string
		display  string
		canonURL string
	}{
		{
			name:     "company page",
			url:      "https://www.linkedin.com/company/acme-robotics/jobs/",
			ok:       true,
			slug:     "acme-robotics",
			display:  "Acme Robotics",
			canonURL: "https://www.linkedin.com/company/acme-robotics/",
		},
		{
			name:     "company page without trailing path",
			url:      "https://linkedin.com/company/globex?trk=public_profile",
			ok:       true,
			slug:     "globex",
			display:  "Globex",
			canonURL: "https://www.linkedin.com/company/globex/",
		},
		{
			name:     "mixed case marker",
			url:      "https://www.LinkedIn.com/Company/initech/",
			ok:       true,
			slug:     "initech",
			display:  "Initech",
			canonURL: "https://www.linkedin.com/company/initech/",
		},
		{
			name:     "mixed case slug",
			url:      "https://www.linkedin.com/company/ACME-Robotics/",
			ok:       true,
			slug:     "acme-robotics",
			display:  "Acme Robotics",
			canonURL: "https://www.linkedin.com/company/acme-robotics/",
		},
		{
			name:     "mixed case jobs tokens",
			url:      "https://www.linkedin.com/jobs/Delta-Air-Lines-jobs-atlanta-ga",
			ok:       true,
			slug:     "delta-air-lines",
			display:  "Delta Air Lines",
			canonURL: "https://www.linkedin.com/jobs/Delta-Air-Lines-jobs-atlanta-ga",
		},
		{
			name:     "jobs search page",
			url:      "https://www.linkedin.com/jobs/delta-air-lines-jobs-atlanta-ga?utm_source=x",
			ok:       true,
			slug:     "delta-air-lines",
			display:  "Delta Air Lines",
			canonURL: "https://www.linkedin.com/jobs/delta-air-lines-jobs-atlanta-ga",
		},
		{name: "jobs page without company tokens", url: "https://www.linkedin.com/jobs/jobs-in-atlanta"},
		{name: "jobs page without jobs token", url: "https://www.linkedin.com/jobs/search?keywords=go"},
		{name: "profile page", url: "https://www.linkedin.com/in/someone/"},
		{name: "empty company segment", url: "https://www.linkedin.com/company//about"},
		{name: "empty", url: "   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := Parse(tt.url)
			require.Equal(t, tt.ok, ok)
			if !tt.ok {
				assert.Empty(t, id.Slug)
				return
			}
			assert.Equal(t, tt.slug, id.Slug)
			assert.Equal(t, tt.display, id.DisplayName)
			assert.Equal(t, tt.canonURL, id.CanonicalURL)
			assert.Equal(t, tt.slug, id.Key())
		})
	}
}

func TestParseSameSlugSameIdentity(t *testing.T) {
	a, ok := Parse("https://www.linkedin.com/company/acme/")
	require.True(t, ok)
	b, ok := Parse("https://linkedin.com/company/acme/life/?x=1")
	require.True(t, ok)
	assert.Equal(t, a, b)

	upper, ok := Parse("https://www.linkedin.com/company/ACME-Robotics/")
	require.True(t, ok)
	lower, ok := Parse("https://www.linkedin.com/company/acme-robotics/")
	require.True(t, ok)
	assert.Equal(t, lower, upper)
	assert.Equal(t, "linkedin.com acme-robotics jobs", BuildQuery("linkedin.com", upper.DisplayName, upper.Slug))
}

func TestListingID(t *testing.T) {
	tests := []struct {
		url string
		id  string
		ok  bool
	}{
		{"https://www.linkedin.com/jobs/view/12345", "12345", true},
		{"https://www.linkedin.com/jobs/view/12345?x=1", "12345", true},
		{"https://www.linkedin.com/jobs/view/12345/", "12345", true},
		{"https://www.linkedin.com/jobs/view/12345/apply?trk=a", "12345", true},
		{"https://www.linkedin.com/jobs/view/senior-engineer-at-acme-4012345678", "senior-engineer-at-acme-4012345678", true},
		{"https://www.linkedin.com/jobs/view/", "", false},
		{"https://www.linkedin.com/jobs/search?currentJobId=1", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			id, ok := ListingID(tt.url)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.id, id)
		})
	}
}

func TestBuildQuery(t *testing.T) {
	assert.Equal(t, "linkedin.com acme-robotics jobs", BuildQuery("linkedin.com", "Acme Robotics", "acme-robotics"))
	assert.Equal(t, "linkedin.com Acme Robotics jobs", BuildQuery("linkedin.com", "Acme Robotics", ""))
	assert.Equal(t, "linkedin.com globex jobs", BuildQuery("", "Globex", "globex"))
}

func TestReadInputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "companies.txt")
	body := `# targets
https://www.linkedin.com/company/acme/

HTTPS://WWW.LINKEDIN.COM/COMPANY/ACME/
https://example.com/careers
Globex Corporation
https://www.linkedin.com/jobs/initech-jobs-austin-tx
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	urls, err := ReadURLFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://www.linkedin.com/company/acme/",
		"https://www.linkedin.com/jobs/initech-jobs-austin-tx",
	}, urls)

	withNames, err := ReadInputFile(path, true)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://www.linkedin.com/company/acme/",
		"Globex Corporation",
		"https://www.linkedin.com/jobs/initech-jobs-austin-tx",
	}, withNames)
}

func TestReadURLFileMissing(t *testing.T) {
	_, err := ReadURLFile(filepath.Join(t.TempDir(), "nope.txt"))
	assert.Error(t, err)
}
