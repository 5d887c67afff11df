// Package terms splits a raw search box value into quoted phrases and
// individual terms. Phrases are pulled out first; the remainder is split
// on commas and then plus signs.
package terms

import (
	"net/url"
	"regexp"
	"strings"
)

var quotedRe = regexp.MustCompile(`"([^"]*)"`)

// Extract parses a raw query string. Quoted phrases come back in their
// original left-to-right order, followed by the single terms in split
// order. Empty fragments are dropped. An empty query yields two empty
// slices.
func Extract(query string) (quotedPhrases, singleTerms []string) {
	quotedPhrases = []string{}
	singleTerms = []string{}

	// PathUnescape rather than QueryUnescape: a literal "+" is a term
	// separator here, not an encoded space.
	if decoded, err := url.PathUnescape(query); err == nil {
		query = decoded
	}

	for _, m := range quotedRe.FindAllStringSubmatch(query, -1) {
		if phrase := strings.TrimSpace(m[1]); phrase != "" {
			quotedPhrases = append(quotedPhrases, phrase)
		}
	}
	remainder := quotedRe.ReplaceAllString(query, "")

	for _, part := range strings.Split(remainder, ",") {
		for _, term := range strings.Split(part, "+") {
			if term = strings.TrimSpace(term); term != "" {
				singleTerms = append(singleTerms, term)
			}
		}
	}
	return quotedPhrases, singleTerms
}
