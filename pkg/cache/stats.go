package cache

import (
	"container/heap"
	"context"
	"sort"

	"github.com/tripline-ai/replycache/pkg/observability"
)

// topQueriesLimit is the number of rows in the top-queries report.
const topQueriesLimit = 10

// Metrics returns a point-in-time snapshot of cache effectiveness:
// hit rate, average generator response time over inserted entries,
// satisfaction rate over recorded feedback, and the most-used
// queries. Read-only and safe to call concurrently with lookups.
func (c *ResponseCache) Metrics(ctx context.Context) MetricsSnapshot {
	_, span := observability.StartSpan(ctx, "cache.metrics")
	defer span.End()

	snap := MetricsSnapshot{
		TotalHits:   c.hitCount.Load(),
		TotalMisses: c.missCount.Load(),
		Entries:     c.store.size(),
		Timestamp:   c.now(),
	}

	if total := snap.TotalHits + snap.TotalMisses; total > 0 {
		snap.HitRate = float64(snap.TotalHits) / float64(total)
	}
	if inserts := c.insertCount.Load(); inserts > 0 {
		snap.AvgResponseTimeMs = float64(c.responseTimeSumMs.Load()) / float64(inserts)
	}
	pos := c.positiveFeedback.Load()
	neg := c.negativeFeedback.Load()
	if pos+neg > 0 {
		snap.SatisfactionRate = float64(pos) / float64(pos+neg)
	}

	snap.TopQueries = c.topQueries(topQueriesLimit)
	return snap
}

// topQueries selects the top-K entries by usage count with a min-heap
// over a store snapshot, then orders the result descending.
func (c *ResponseCache) topQueries(limit int) []TopQuery {
	entries := c.store.snapshot()
	if len(entries) == 0 || limit <= 0 {
		return nil
	}

	h := &topQueryHeap{}
	heap.Init(h)
	for _, e := range entries {
		if h.Len() < limit {
			heap.Push(h, TopQuery{Query: e.Query, UsageCount: e.UsageCount})
			continue
		}
		if e.UsageCount > (*h)[0].UsageCount {
			(*h)[0] = TopQuery{Query: e.Query, UsageCount: e.UsageCount}
			heap.Fix(h, 0)
		}
	}

	out := make([]TopQuery, h.Len())
	copy(out, *h)
	sort.Slice(out, func(i, j int) bool {
		if out[i].UsageCount != out[j].UsageCount {
			return out[i].UsageCount > out[j].UsageCount
		}
		return out[i].Query < out[j].Query
	})
	return out
}

// topQueryHeap is a min-heap keyed on usage count.
type topQueryHeap []TopQuery

func (h topQueryHeap) Len() int            { return len(h) }
func (h topQueryHeap) Less(i, j int) bool  { return h[i].UsageCount < h[j].UsageCount }
func (h topQueryHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *topQueryHeap) Push(x interface{}) { *h = append(*h, x.(TopQuery)) }
func (h *topQueryHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
