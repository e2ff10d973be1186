// Package textsim provides edit-distance based similarity scoring for
// identifier names. Scores feed typo detection: an unused variable whose
// name sits very close to a used one is probably a misspelling rather
// than dead code.
package textsim

import (
	"sort"
	"strings"
)

const (
	// DefaultThreshold is the minimum similarity FindSimilar keeps.
	DefaultThreshold = 0.7

	// maxLengthDelta short-circuits scoring when two names differ in
	// length by more than this; the DP pass cannot recover enough
	// similarity to matter.
	maxLengthDelta = 3

	// maxMatches caps FindSimilar results.
	maxMatches = 5
)

// Similarity floors applied after the distance ratio. A floor only ever
// raises the score, never lowers it.
const (
	floorNormalizedEqual = 0.9  // same after case folding and underscore stripping
	floorPlural          = 0.85 // exact plural: userName vs userNames
	floorPrefix          = 0.8  // one name is a prefix of the other
	floorSuffix          = 0.7  // one name is a suffix of the other
)

// Match is a candidate identifier with its similarity score.
type Match struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// Distance returns the Levenshtein edit distance between a and b:
// the minimum number of single-character insertions, deletions, and
// substitutions transforming one into the other.
func Distance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	rows, cols := len(ra)+1, len(rb)+1
	d := make([][]int, rows)
	for i := range d {
		d[i] = make([]int, cols)
		d[i][0] = i
	}
	for j := 1; j < cols; j++ {
		d[0][j] = j
	}

	for i := 1; i < rows; i++ {
		for j := 1; j < cols; j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			deletion := d[i-1][j] + 1
			insertion := d[i][j-1] + 1
			substitution := d[i-1][j-1] + cost
			d[i][j] = min(deletion, insertion, substitution)
		}
	}

	return d[rows-1][cols-1]
}

// Similarity scores how alike two identifier names are on a 0..1 scale.
// Identical names score 1.0. Names whose lengths differ by more than
// maxLengthDelta score 0 without running the distance pass. Otherwise
// the score starts at 1 - distance/maxLen and is raised (never lowered)
// to a floor when a structural relationship holds: case/underscore
// variants, exact plurals, shared prefixes, shared suffixes.
func Similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	if a == "" || b == "" {
		return 0
	}

	la, lb := len([]rune(a)), len([]rune(b))
	delta := la - lb
	if delta < 0 {
		delta = -delta
	}
	if delta > maxLengthDelta {
		return 0
	}

	maxLen := la
	if lb > maxLen {
		maxLen = lb
	}
	score := 1.0 - float64(Distance(a, b))/float64(maxLen)

	na, nb := normalize(a), normalize(b)
	switch {
	case na == nb:
		score = raise(score, floorNormalizedEqual)
	case a+"s" == b || b+"s" == a:
		score = raise(score, floorPlural)
	case strings.HasPrefix(na, nb) || strings.HasPrefix(nb, na):
		score = raise(score, floorPrefix)
	case strings.HasSuffix(na, nb) || strings.HasSuffix(nb, na):
		score = raise(score, floorSuffix)
	}

	return score
}

// FindSimilar scores every name in pool against name and returns the
// matches at or above threshold, best first. The name itself and
// single-character candidates are skipped; results are capped.
func FindSimilar(name string, pool []string, threshold float64) []Match {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	var matches []Match
	for _, candidate := range pool {
		if candidate == name || len(candidate) <= 1 {
			continue
		}
		score := Similarity(name, candidate)
		if score >= threshold {
			matches = append(matches, Match{Name: candidate, Score: score})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Name < matches[j].Name
	})

	if len(matches) > maxMatches {
		matches = matches[:maxMatches]
	}
	return matches
}

// normalize folds case and strips underscores so user_name, userName,
// and USERNAME compare equal.
func normalize(s string) string {
	return strings.ReplaceAll(strings.ToLower(s), "_", "")
}

func raise(score, floor float64) float64 {
	if score < floor {
		return floor
	}
	return score
}
