package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvictionScore(t *testing.T) {
	clk := newFakeClock()
	ttl := 24 * time.Hour
	now := clk.Now()

	fresh := func() *CacheEntry {
		return &CacheEntry{CreatedAt: now, UsageCount: 1}
	}

	t.Run("fresh unused entry", func(t *testing.T) {
		// 0.5×(1/10) + 0.3×1 + 0
		assert.InDelta(t, 0.35, evictionScore(fresh(), ttl, now), 1e-9)
	})

	t.Run("usage score saturates at ten", func(t *testing.T) {
		e := fresh()
		e.UsageCount = 10
		ten := evictionScore(e, ttl, now)
		e.UsageCount = 100
		assert.InDelta(t, ten, evictionScore(e, ttl, now), 1e-9)
		assert.InDelta(t, 0.8, ten, 1e-9)
	})

	t.Run("age score floors at zero", func(t *testing.T) {
		e := fresh()
		e.CreatedAt = now.Add(-48 * time.Hour)
		// 0.5×0.1 + 0.3×0 + 0
		assert.InDelta(t, 0.05, evictionScore(e, ttl, now), 1e-9)
	})

	t.Run("feedback shifts the score", func(t *testing.T) {
		pos := fresh()
		pos.Feedback = FeedbackPositive
		neg := fresh()
		neg.Feedback = FeedbackNegative
		base := evictionScore(fresh(), ttl, now)
		assert.InDelta(t, base+0.2, evictionScore(pos, ttl, now), 1e-9)
		assert.InDelta(t, base-0.2, evictionScore(neg, ttl, now), 1e-9)
	})

	t.Run("older entries score lower", func(t *testing.T) {
		old := fresh()
		old.CreatedAt = now.Add(-12 * time.Hour)
		assert.Less(t, evictionScore(old, ttl, now), evictionScore(fresh(), ttl, now))
	})
}

func TestSelectEvictionKeys(t *testing.T) {
	clk := newFakeClock()
	ttl := 24 * time.Hour
	now := clk.Now()

	makeEntries := func(n int) []*CacheEntry {
		out := make([]*CacheEntry, n)
		for i := range out {
			out[i] = &CacheEntry{
				NormalizedKey: fmt.Sprintf("k%d", i),
				CreatedAt:     now,
				UsageCount:    1,
			}
		}
		return out
	}

	t.Run("removes the floor of the fraction", func(t *testing.T) {
		keys := selectEvictionKeys(makeEntries(11), 0.2, ttl, now)
		assert.Len(t, keys, 2) // floor(11 × 0.2)
	})

	t.Run("small sets evict nothing", func(t *testing.T) {
		assert.Empty(t, selectEvictionKeys(makeEntries(4), 0.2, ttl, now))
		assert.Empty(t, selectEvictionKeys(nil, 0.2, ttl, now))
	})

	t.Run("lowest-scoring entries go first", func(t *testing.T) {
		entries := makeEntries(10)
		// Two clearly worst entries: old, unused, negative feedback.
		entries[3].CreatedAt = now.Add(-30 * time.Hour)
		entries[3].Feedback = FeedbackNegative
		entries[7].CreatedAt = now.Add(-30 * time.Hour)
		entries[7].Feedback = FeedbackNegative
		// Everyone else gets a usage boost.
		for i, e := range entries {
			if i != 3 && i != 7 {
				e.UsageCount = 5
			}
		}

		keys := selectEvictionKeys(entries, 0.2, ttl, now)
		require.Len(t, keys, 2)
		assert.ElementsMatch(t, []string{"k3", "k7"}, keys)
	})
}
