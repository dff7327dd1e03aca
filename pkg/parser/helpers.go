package parser

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"kua/interpreter-go/pkg/lexer"
)

var keywordNames = func() []string {
	out := make([]string, len(lexer.Keywords))
	for idx, kw := range lexer.Keywords {
		out[idx] = string(kw)
	}
	return out
}()

func isKeywordName(s string) bool {
	for _, kw := range keywordNames {
		if kw == s {
			return true
		}
	}
	return false
}

// keywordHint suggests the keyword a misspelled name was probably meant to be.
// Hints are only offered where the grammar wanted a keyword.
func keywordHint(found lexer.Token, expected string) string {
	if found.Kind != lexer.KindName || len(found.Name) < 2 || !isKeywordName(expected) {
		return ""
	}
	typed := strings.ToLower(found.Name)
	if fuzzy.LevenshteinDistance(typed, expected) <= 2 {
		return expected
	}
	ranks := fuzzy.RankFindFold(typed, keywordNames)
	if len(ranks) == 0 {
		return ""
	}
	sort.Sort(ranks)
	if ranks[0].Distance <= 2 {
		return ranks[0].Target
	}
	return ""
}
