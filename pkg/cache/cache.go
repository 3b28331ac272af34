// Package cache implements a semantic response cache for a
// conversational assistant. It sits in front of an expensive
// generative backend and answers exact or approximate repeats of
// previously answered queries, personalized per user and language,
// with quality-aware eviction keeping memory bounded.
//
// The cache never invokes the generator itself: on a miss the caller
// fetches a fresh answer and hands it back through Insert.
package cache

import (
	"context"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tripline-ai/replycache/pkg/observability"
)

// ResponseCache coordinates the three-tier lookup, inserts, feedback
// adjustment and eviction. It is the only type other subsystems talk
// to.
//
// ResponseCache is safe for concurrent use by multiple goroutines:
// lookups and metrics reads run in parallel against consistent
// snapshots while inserts, feedback and eviction are serialized by
// the store's write lock.
type ResponseCache struct {
	config   *Config
	logger   observability.Logger
	store    *entryStore
	profiles *profileStore
	tagger   tagger
	now      func() time.Time

	mu      sync.Mutex // guards scorers
	scorers map[string]*Scorer

	hitCount          atomic.Int64
	missCount         atomic.Int64
	insertCount       atomic.Int64
	responseTimeSumMs atomic.Int64
	positiveFeedback  atomic.Int64
	negativeFeedback  atomic.Int64
}

// New creates a ResponseCache with the given configuration. A nil
// config gets DefaultConfig, a nil logger gets a prefixed standard
// logger. Construction is the only place configuration errors
// surface; every per-call operation afterwards is total.
func New(config *Config, logger observability.Logger) (*ResponseCache, error) {
	return NewWithClock(config, logger, time.Now)
}

// NewWithClock is New with an injected monotonic clock, the cache's
// only consumed external interface.
func NewWithClock(config *Config, logger observability.Logger, clock func() time.Time) (*ResponseCache, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = observability.NewStandardLogger("replycache")
	}
	if clock == nil {
		clock = time.Now
	}

	cfg := config.withDefaults()
	return &ResponseCache{
		config:   cfg,
		logger:   logger,
		store:    newEntryStore(cfg.TTL, clock),
		profiles: newProfileStore(cfg.MaxRecentTopics, clock),
		tagger:   tagger{rules: cfg.TagRules},
		now:      clock,
		scorers:  make(map[string]*Scorer),
	}, nil
}

// scorerFor returns the similarity scorer for a language, building it
// lazily from the configured stopword table. Languages without a
// table get an extractor with no stopword filtering.
func (c *ResponseCache) scorerFor(language string) *Scorer {
	c.mu.Lock()
	defer c.mu.Unlock()

	if s, ok := c.scorers[language]; ok {
		return s
	}
	s := NewScorer(NewKeywordExtractor(c.config.StopwordTables[language]))
	c.scorers[language] = s
	return s
}

// Lookup runs the three-tier, first-hit-wins search:
//
//  1. exact key match (increments the entry's usage count)
//  2. user-scoped similarity sweep over the top UserCandidateWindow
//     entries by usage count, when a user ID is given
//  3. global similarity sweep over the top GlobalCandidateWindow
//     entries with usage count ≥ GlobalMinUsage
//
// Both similarity tiers return the best-scoring candidate at or above
// the threshold. Similarity hits do not increment usage counts;
// RecordFeedback is the sanctioned way to credit them. A miss is a
// nil result, never an error.
func (c *ResponseCache) Lookup(ctx context.Context, query, userID, language string) *LookupResult {
	_, span := observability.StartSpan(ctx, "cache.lookup")
	defer span.End()
	start := time.Now()

	query = sanitizeQuery(query, c.config.MaxQueryLength)
	key := normalizeKey(query, language, userID)
	span.SetAttribute("language", language)
	span.SetAttribute("has_user", userID != "")

	if e := c.store.getAndTouch(key); e != nil {
		c.recordHit(MatchExact, start)
		return &LookupResult{
			Response:     e.Response,
			MatchedQuery: e.Query,
			Similarity:   1,
			MatchType:    MatchExact,
		}
	}

	scorer := c.scorerFor(language)

	if userID != "" {
		candidates := c.store.scan(func(e *CacheEntry) bool {
			return e.OwnerUserID == userID && e.Language == language
		})
		if res := bestMatch(scorer, query, candidates, c.config.UserCandidateWindow, c.config.SimilarityThreshold); res != nil {
			res.MatchType = MatchUserScoped
			c.recordHit(MatchUserScoped, start)
			return res
		}
	}

	candidates := c.store.scan(func(e *CacheEntry) bool {
		return e.Language == language && e.UsageCount >= c.config.GlobalMinUsage
	})
	if res := bestMatch(scorer, query, candidates, c.config.GlobalCandidateWindow, c.config.SimilarityThreshold); res != nil {
		res.MatchType = MatchGlobal
		c.recordHit(MatchGlobal, start)
		return res
	}

	c.recordMiss(start)
	return nil
}

// bestMatch orders candidates by usage count descending, truncates to
// the window, and returns the highest-similarity candidate at or
// above the threshold. Both lookup tiers use this best-of-window
// selection.
func bestMatch(scorer *Scorer, query string, candidates []*CacheEntry, window int, threshold float64) *LookupResult {
	if len(candidates) == 0 {
		return nil
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].UsageCount > candidates[j].UsageCount
	})
	if len(candidates) > window {
		candidates = candidates[:window]
	}

	var best *CacheEntry
	var bestScore float64
	for _, e := range candidates {
		score := scorer.Similarity(query, e.Query)
		if score < threshold {
			continue
		}
		if best == nil || score > bestScore {
			best, bestScore = e, score
		}
	}
	if best == nil {
		return nil
	}
	return &LookupResult{
		Response:     best.Response,
		MatchedQuery: best.Query,
		Similarity:   bestScore,
	}
}

// Insert stores a freshly generated response. The entry starts with a
// usage count of 1 and carries the caller's tags unioned with the
// deterministically derived context tags. When a user ID is given the
// user's behavior profile is updated. Exceeding capacity triggers a
// synchronous eviction pass on the inserting goroutine.
func (c *ResponseCache) Insert(ctx context.Context, query, response, userID, language string, responseTimeMs int64, tags []string) {
	_, span := observability.StartSpan(ctx, "cache.insert")
	defer span.End()

	query = sanitizeQuery(query, c.config.MaxQueryLength)
	if strings.TrimSpace(query) == "" {
		c.logger.Debug("skipping insert of empty query", nil)
		return
	}

	key := normalizeKey(query, language, userID)
	entry := &CacheEntry{
		Query:              query,
		NormalizedKey:      key,
		Response:           response,
		CreatedAt:          c.now(),
		UsageCount:         1,
		OwnerUserID:        userID,
		Language:           language,
		ContextTags:        mergeTags(tags, c.tagger.derive(query, response)),
		LastResponseTimeMs: responseTimeMs,
	}
	c.store.put(key, entry)

	if userID != "" {
		topic := c.dominantTopic(response, language)
		c.profiles.recordInsert(userID, topic, len(response), responseTimeMs)
	}

	c.insertCount.Add(1)
	c.responseTimeSumMs.Add(responseTimeMs)
	if c.config.EnableMetrics {
		entriesGauge.Set(float64(c.store.size()))
	}

	c.maybeEvict()
}

// dominantTopic picks the most frequent keyword of the response text,
// first occurrence winning ties. Empty when the response yields no
// keywords.
func (c *ResponseCache) dominantTopic(response, language string) string {
	keywords := c.scorerFor(language).extractor.Extract(response)
	if len(keywords) == 0 {
		return ""
	}

	counts := make(map[string]int, len(keywords))
	best := keywords[0]
	for _, k := range keywords {
		counts[k]++
		if counts[k] > counts[best] {
			best = k
		}
	}
	return best
}

// maybeEvict removes the lowest-scoring batch when the store exceeds
// capacity. Eviction runs synchronously on the inserting goroutine:
// scores are computed on a snapshot outside the store lock, then the
// selected keys are removed in one batch. Capacity pressure is a
// purely internal signal and never surfaces as an error.
func (c *ResponseCache) maybeEvict() {
	size := c.store.size()
	if size <= c.config.MaxEntries {
		return
	}

	keys := selectEvictionKeys(c.store.snapshot(), c.config.EvictionBatchFraction, c.config.TTL, c.now())
	removed := c.store.evictBatch(keys)

	c.logger.Info("evicted low-scoring entries", map[string]interface{}{
		"removed":     removed,
		"size_before": size,
		"size_after":  c.store.size(),
		"max_entries": c.config.MaxEntries,
	})
	if c.config.EnableMetrics {
		evictionsTotal.Add(float64(removed))
		entriesGauge.Set(float64(c.store.size()))
	}
}

// RecordFeedback resolves the same exact key as Lookup and Insert and
// records the quality signal: positive feedback increments the
// entry's usage count, negative decrements it with a floor of 1. A
// feedback call against a missing or expired key is a silent no-op.
func (c *ResponseCache) RecordFeedback(ctx context.Context, query, userID, language string, fb Feedback) {
	_, span := observability.StartSpan(ctx, "cache.feedback")
	defer span.End()

	if fb != FeedbackPositive && fb != FeedbackNegative {
		return
	}

	query = sanitizeQuery(query, c.config.MaxQueryLength)
	key := normalizeKey(query, language, userID)
	if !c.store.applyFeedback(key, fb) {
		return
	}

	if fb == FeedbackPositive {
		c.positiveFeedback.Add(1)
	} else {
		c.negativeFeedback.Add(1)
	}
	if c.config.EnableMetrics {
		feedbackTotal.WithLabelValues(string(fb)).Inc()
	}
}

// Profile returns a copy of a user's behavior profile, if one exists.
func (c *ResponseCache) Profile(userID string) (UserBehaviorProfile, bool) {
	return c.profiles.profile(userID)
}

// Size reports the current number of stored entries, expired ones
// included.
func (c *ResponseCache) Size() int {
	return c.store.size()
}

// Clear is the administrative reset: it drops all entries, all user
// profiles and all counters.
func (c *ResponseCache) Clear(ctx context.Context) {
	_, span := observability.StartSpan(ctx, "cache.clear")
	defer span.End()

	c.store.clear()
	c.profiles.clear()
	c.hitCount.Store(0)
	c.missCount.Store(0)
	c.insertCount.Store(0)
	c.responseTimeSumMs.Store(0)
	c.positiveFeedback.Store(0)
	c.negativeFeedback.Store(0)
	if c.config.EnableMetrics {
		entriesGauge.Set(0)
	}
	c.logger.Info("cache cleared", nil)
}

func (c *ResponseCache) recordHit(tier MatchType, start time.Time) {
	c.hitCount.Add(1)
	if c.config.EnableMetrics {
		lookupHits.WithLabelValues(string(tier)).Inc()
		lookupLatency.WithLabelValues("hit").Observe(time.Since(start).Seconds())
	}
}

func (c *ResponseCache) recordMiss(start time.Time) {
	c.missCount.Add(1)
	if c.config.EnableMetrics {
		lookupMisses.Inc()
		lookupLatency.WithLabelValues("miss").Observe(time.Since(start).Seconds())
	}
}
