package cache

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Snapshot(t *testing.T) {
	c, _ := setupTestCache(t, nil)
	ctx := context.Background()

	t.Run("empty cache", func(t *testing.T) {
		m := c.Metrics(ctx)
		assert.Zero(t, m.HitRate)
		assert.Zero(t, m.AvgResponseTimeMs)
		assert.Zero(t, m.SatisfactionRate)
		assert.Zero(t, m.Entries)
		assert.Empty(t, m.TopQueries)
	})

	c.Insert(ctx, "beach packages", "resp", "u1", "en", 1200, nil)
	c.Insert(ctx, "ski resorts", "resp", "u1", "en", 800, nil)

	c.Lookup(ctx, "beach packages", "u1", "en") // hit
	c.Lookup(ctx, "beach packages", "u1", "en") // hit
	c.Lookup(ctx, "who are you", "u1", "en")    // miss

	c.RecordFeedback(ctx, "beach packages", "u1", "en", FeedbackPositive)
	c.RecordFeedback(ctx, "ski resorts", "u1", "en", FeedbackNegative)

	m := c.Metrics(ctx)

	t.Run("hit rate", func(t *testing.T) {
		assert.InDelta(t, 2.0/3.0, m.HitRate, 1e-9)
		assert.Equal(t, int64(2), m.TotalHits)
		assert.Equal(t, int64(1), m.TotalMisses)
	})

	t.Run("average response time over inserts", func(t *testing.T) {
		assert.InDelta(t, 1000.0, m.AvgResponseTimeMs, 1e-9) // (1200+800)/2
	})

	t.Run("satisfaction rate over recorded feedback", func(t *testing.T) {
		assert.InDelta(t, 0.5, m.SatisfactionRate, 1e-9)
	})

	t.Run("entry count", func(t *testing.T) {
		assert.Equal(t, 2, m.Entries)
	})

	t.Run("top queries ordered by usage", func(t *testing.T) {
		require.Len(t, m.TopQueries, 2)
		assert.Equal(t, "beach packages", m.TopQueries[0].Query)
		// 1 insert + 2 exact hits + 1 positive feedback.
		assert.Equal(t, 4, m.TopQueries[0].UsageCount)
		assert.Equal(t, "ski resorts", m.TopQueries[1].Query)
	})
}

func TestTopQueries_Limit(t *testing.T) {
	c, _ := setupTestCache(t, nil)
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		q := fmt.Sprintf("query number %d", i)
		c.Insert(ctx, q, "resp", "", "en", 100, nil)
	}
	// Lift a few entries above the rest.
	for i := 0; i < 5; i++ {
		q := fmt.Sprintf("query number %d", i)
		for j := 0; j <= i; j++ {
			c.Lookup(ctx, q, "", "en")
		}
	}

	top := c.topQueries(topQueriesLimit)
	require.Len(t, top, topQueriesLimit)
	assert.Equal(t, "query number 4", top[0].Query)
	assert.Equal(t, 6, top[0].UsageCount)
	// Descending usage throughout.
	for i := 1; i < len(top); i++ {
		assert.GreaterOrEqual(t, top[i-1].UsageCount, top[i].UsageCount)
	}
}
