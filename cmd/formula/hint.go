package main

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// maxHintDistance is the largest edit distance at which a name that isn't a
// fuzzy match is still suggested.
const maxHintDistance = 2

// hint finds the candidate closest to a misspelled name. Candidates which
// contain the name's letters in order are preferred, nearest first. Failing
// that, the candidate with the smallest edit distance wins if it is close
// enough. The result is empty if nothing is close.
func hint(target string, candidates []string) string {
	if target == "" || len(candidates) == 0 {
		return ""
	}
	ranks := fuzzy.RankFindFold(target, candidates)
	sort.Stable(ranks)
	for _, r := range ranks {
		if r.Target != target {
			return r.Target
		}
	}
	best, dist := "", maxHintDistance+1
	t := strings.ToLower(target)
	for _, c := range candidates {
		if c == target {
			continue
		}
		if d := fuzzy.LevenshteinDistance(t, strings.ToLower(c)); d < dist {
			best, dist = c, d
		}
	}
	return best
}
