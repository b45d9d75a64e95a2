// Package resolve maps free-form company names onto LinkedIn company identities.
package resolve

import "strings"

var punct = strings.NewReplacer(
	",", " ", ".", " ", "&", " ", "(", " ", ")", " ", "'", " ", "\"", " ", "-", " ",
)

// stripped at most once each, in this order
var legalSuffixes = []string{
	"inc", "llc", "ltd", "limited", "corp", "corporation", "co", "company",
	"plc", "lp", "gmbh", "ag", "srl", "bv", "nv", "pvt", "llp", "pllc",
}

// NormalizeCompanyName lowercases, removes punctuation and trailing legal suffixes.
// "Acme, Inc." and "ACME Inc" both become "acme".
func NormalizeCompanyName(s string) string {
	s = punct.Replace(strings.ToLower(s))
	s = strings.Join(strings.Fields(s), " ")
	for _, suf := range legalSuffixes {
		if strings.HasSuffix(s, " "+suf) {
			s = strings.TrimSpace(s[:len(s)-len(suf)])
		}
	}
	return strings.TrimSpace(s)
}
