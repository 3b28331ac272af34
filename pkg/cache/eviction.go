package cache

import (
	"math"
	"sort"
	"time"
)

// Eviction scoring weights. Usage dominates, freshness helps, explicit
// feedback shifts the score by a fixed bump either way.
const (
	usageWeight  = 0.5
	ageWeight    = 0.3
	feedbackBump = 0.2
	usageCeiling = 10
)

// evictionScore ranks an entry for retention; lower scores are
// evicted first.
func evictionScore(e *CacheEntry, ttl time.Duration, now time.Time) float64 {
	ageScore := 1 - float64(now.Sub(e.CreatedAt))/float64(ttl)
	if ageScore < 0 {
		ageScore = 0
	}

	usageScore := float64(e.UsageCount) / usageCeiling
	if usageScore > 1 {
		usageScore = 1
	}

	var fb float64
	switch e.Feedback {
	case FeedbackPositive:
		fb = feedbackBump
	case FeedbackNegative:
		fb = -feedbackBump
	}

	return usageWeight*usageScore + ageWeight*ageScore + fb
}

// selectEvictionKeys returns the keys of the lowest-scoring
// floor(fraction × n) entries. The relative order of entries with
// equal scores is unspecified: the sort is not stable, so ties may
// resolve differently between passes. Callers must not rely on it.
func selectEvictionKeys(entries []*CacheEntry, fraction float64, ttl time.Duration, now time.Time) []string {
	count := int(math.Floor(float64(len(entries)) * fraction))
	if count <= 0 {
		return nil
	}
	if count > len(entries) {
		count = len(entries)
	}

	type scored struct {
		key   string
		score float64
	}
	ranked := make([]scored, 0, len(entries))
	for _, e := range entries {
		ranked = append(ranked, scored{key: e.NormalizedKey, score: evictionScore(e, ttl, now)})
	}
	sort.Slice(ranked, func(i, j int) bool {
		return ranked[i].score < ranked[j].score
	})

	keys := make([]string, 0, count)
	for _, r := range ranked[:count] {
		keys = append(keys, r.key)
	}
	return keys
}
