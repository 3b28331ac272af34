package cache

import "unicode/utf8"

// Similarity blends keyword-set overlap with raw edit distance.
const (
	keywordWeight = 0.7
	editWeight    = 0.3
)

// Scorer scores two query strings for likeness in [0,1] as
//
//	0.7 × jaccard(keywords(a), keywords(b)) + 0.3 × (1 − lev(a,b)/maxLen)
//
// The Jaccard term is 0 when either keyword set is empty. Equal
// non-empty strings always score 1.0. Inputs are expected to be
// length-capped by the caller; the Levenshtein computation is the
// standard dynamic program and is quadratic in input length.
type Scorer struct {
	extractor *KeywordExtractor
}

// NewScorer creates a Scorer over the given keyword extractor.
func NewScorer(extractor *KeywordExtractor) *Scorer {
	return &Scorer{extractor: extractor}
}

// Similarity returns the blended similarity of a and b.
func (s *Scorer) Similarity(a, b string) float64 {
	if a == b {
		if a == "" {
			return 0
		}
		return 1
	}

	var jac float64
	ka := s.extractor.Extract(a)
	kb := s.extractor.Extract(b)
	if len(ka) > 0 && len(kb) > 0 {
		jac = jaccard(ka, kb)
	}

	lenA := utf8.RuneCountInString(a)
	lenB := utf8.RuneCountInString(b)
	maxLen := lenA
	if lenB > maxLen {
		maxLen = lenB
	}

	var edit float64
	if maxLen > 0 {
		edit = 1 - float64(levenshtein(a, b))/float64(maxLen)
	}

	score := keywordWeight*jac + editWeight*edit
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// jaccard computes |A∩B| / |A∪B| over two token slices treated as sets.
func jaccard(a, b []string) float64 {
	setA := make(map[string]struct{}, len(a))
	for _, t := range a {
		setA[t] = struct{}{}
	}
	setB := make(map[string]struct{}, len(b))
	for _, t := range b {
		setB[t] = struct{}{}
	}

	intersection := 0
	for t := range setA {
		if _, ok := setB[t]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// levenshtein computes the rune-level edit distance between a and b
// with the two-row dynamic program.
func levenshtein(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = minInt(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func minInt(vals ...int) int {
	m := vals[0]
	for _, v := range vals[1:] {
		if v < m {
			m = v
		}
	}
	return m
}
