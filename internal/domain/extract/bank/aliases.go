package bank

import (
	"strings"

	"github.com/cloudflare/ahocorasick"
)

// aliasEngine matches every alias phrase in a single pass over the text
// using Aho-Corasick, then picks the longest (most specific) hit.
type aliasEngine struct {
	matcher *ahocorasick.Matcher
	codes   []Code
	phrases []string
}

func newAliasEngine(aliases []bankAlias) *aliasEngine {
	e := &aliasEngine{}
	var patterns [][]byte
	for _, a := range aliases {
		for _, phrase := range a.Phrases {
			p := strings.ToUpper(phrase)
			patterns = append(patterns, []byte(p))
			e.phrases = append(e.phrases, p)
			e.codes = append(e.codes, a.Code)
		}
	}
	e.matcher = ahocorasick.NewMatcher(patterns)
	return e
}

// Match returns the code of the most specific alias found in text, or "".
func (e *aliasEngine) Match(text string) Code {
	if text == "" {
		return ""
	}
	hits := e.matcher.Match([]byte(strings.ToUpper(text)))
	best := -1
	for _, idx := range hits {
		if idx < 0 || idx >= len(e.phrases) {
			continue
		}
		if best == -1 || len(e.phrases[idx]) > len(e.phrases[best]) {
			best = idx
		}
	}
	if best == -1 {
		return ""
	}
	return e.codes[best]
}
