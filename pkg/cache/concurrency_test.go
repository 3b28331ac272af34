package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// TestConcurrentAccess hammers the cache from parallel readers and
// writers. Run with -race; correctness here is the absence of data
// races plus the capacity bound holding under concurrent inserts.
func TestConcurrentAccess(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxEntries = 200
	c, _ := setupTestCache(t, cfg)
	ctx := context.Background()

	const (
		workers    = 8
		iterations = 200
	)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			user := fmt.Sprintf("u%d", w%4)
			for i := 0; i < iterations; i++ {
				q := fmt.Sprintf("query %d from %d", i%50, w%4)
				switch i % 5 {
				case 0, 1:
					c.Lookup(ctx, q, user, "en")
				case 2:
					c.Insert(ctx, q, "resp", user, "en", int64(i), nil)
				case 3:
					c.RecordFeedback(ctx, q, user, "en", FeedbackPositive)
				case 4:
					c.Metrics(ctx)
				}
			}
		}(w)
	}
	wg.Wait()

	// Synchronous eviction on insert keeps the store at or under one
	// over-capacity batch at all times; after the last insert's pass
	// the bound must hold.
	assert.LessOrEqual(t, c.Size(), cfg.MaxEntries)

	m := c.Metrics(ctx)
	assert.Equal(t, m.TotalHits+m.TotalMisses, int64(workers*iterations*2/5))
}

// TestConcurrentProfileUpdates checks that parallel inserts for one
// user never lose profile updates.
func TestConcurrentProfileUpdates(t *testing.T) {
	c, _ := setupTestCache(t, nil)
	ctx := context.Background()

	const inserts = 100
	var wg sync.WaitGroup
	for i := 0; i < inserts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c.Insert(ctx, fmt.Sprintf("query %d", i), "response text here", "u1", "en", 100, nil)
		}(i)
	}
	wg.Wait()

	prof, ok := c.Profile("u1")
	assert.True(t, ok)
	assert.NotZero(t, prof.LastActivity)
	assert.Equal(t, c.config.MaxRecentTopics, len(prof.RecentTopics))
	assert.Equal(t, inserts, c.Size())
}
