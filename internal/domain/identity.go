package domain

// Identity is the canonical (name, slug, url) triple for a company.
type Identity struct {
	DisplayName  string
	Slug         string
	CanonicalURL string
}

// Key is the dedup key for identities: two URLs with the same slug are the same company.
func (i Identity) Key() string { return i.Slug }

// Valid reports whether the identity carries a slug. Cached rows without one
// are treated as misses.
func (i Identity) Valid() bool { return i.Slug != "" }
