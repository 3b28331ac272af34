package cache

import (
	"fmt"
	"time"
)

// Feedback is an explicit quality signal recorded against an entry.
type Feedback string

const (
	FeedbackNone     Feedback = ""
	FeedbackPositive Feedback = "positive"
	FeedbackNegative Feedback = "negative"
)

// CacheEntry is a cached generator response together with the usage
// state the eviction scorer ranks on.
//
// CreatedAt is immutable after construction and UsageCount never drops
// below 1. Validity (age < TTL) is a computed predicate applied on
// read; expired entries are only physically removed by eviction.
type CacheEntry struct {
	Query              string    `json:"query"`
	NormalizedKey      string    `json:"normalized_key"`
	Response           string    `json:"response"`
	CreatedAt          time.Time `json:"created_at"`
	UsageCount         int       `json:"usage_count"`
	OwnerUserID        string    `json:"owner_user_id,omitempty"`
	Language           string    `json:"language"`
	ContextTags        []string  `json:"context_tags,omitempty"`
	LastResponseTimeMs int64     `json:"last_response_time_ms"`
	Feedback           Feedback  `json:"feedback,omitempty"`
}

// clone returns a copy safe to hand to readers while the store keeps
// mutating the original under its lock.
func (e *CacheEntry) clone() *CacheEntry {
	c := *e
	if e.ContextTags != nil {
		c.ContextTags = append([]string(nil), e.ContextTags...)
	}
	return &c
}

// LengthBucket classifies a user's preferred response length.
type LengthBucket string

const (
	LengthShort  LengthBucket = "short"
	LengthMedium LengthBucket = "medium"
	LengthLong   LengthBucket = "long"
)

// UserBehaviorProfile is the rolling per-user profile maintained by
// the coordinator. Exactly one profile exists per user ID; profiles
// are updated only on insert and live for the process lifetime.
type UserBehaviorProfile struct {
	UserID                 string       `json:"user_id"`
	RecentTopics           []string     `json:"recent_topics"` // most recent first, bounded
	PreferredLength        LengthBucket `json:"preferred_length"`
	ResponseTimePreference float64      `json:"response_time_preference_ms"`
	LastActivity           time.Time    `json:"last_activity"`
}

// MatchType identifies which lookup tier produced a hit.
type MatchType string

const (
	MatchExact      MatchType = "exact"
	MatchUserScoped MatchType = "user_scoped"
	MatchGlobal     MatchType = "global"
)

// LookupResult is returned for a cache hit. A miss is a nil result,
// never an error.
type LookupResult struct {
	Response     string    `json:"response"`
	MatchedQuery string    `json:"matched_query"`
	Similarity   float64   `json:"similarity"` // 1.0 on the exact tier
	MatchType    MatchType `json:"match_type"`
}

// TopQuery is one row of the top-queries report.
type TopQuery struct {
	Query      string `json:"query"`
	UsageCount int    `json:"usage_count"`
}

// MetricsSnapshot is a point-in-time, read-only view of cache
// effectiveness.
type MetricsSnapshot struct {
	HitRate           float64    `json:"hit_rate"`
	AvgResponseTimeMs float64    `json:"avg_response_time_ms"`
	SatisfactionRate  float64    `json:"satisfaction_rate"`
	TotalHits         int64      `json:"total_hits"`
	TotalMisses       int64      `json:"total_misses"`
	Entries           int        `json:"entries"`
	TopQueries        []TopQuery `json:"top_queries"`
	Timestamp         time.Time  `json:"timestamp"`
}

// Config controls cache behavior. Use DefaultConfig and override
// individual fields; zero values for optional fields are filled in by
// New. Only MaxEntries, TTL and SimilarityThreshold can make
// construction fail.
type Config struct {
	// MaxEntries bounds the store; exceeding it triggers eviction.
	MaxEntries int `json:"max_entries"`
	// TTL is the validity window for entries.
	TTL time.Duration `json:"ttl"`
	// SimilarityThreshold is the minimum score for a similarity hit (0.0 to 1.0).
	SimilarityThreshold float64 `json:"similarity_threshold"`
	// EvictionBatchFraction is the share of entries removed per eviction pass.
	EvictionBatchFraction float64 `json:"eviction_batch_fraction"`
	// UserCandidateWindow caps the user-scoped similarity sweep.
	UserCandidateWindow int `json:"user_candidate_window"`
	// GlobalCandidateWindow caps the global similarity sweep.
	GlobalCandidateWindow int `json:"global_candidate_window"`
	// GlobalMinUsage is the minimum usage count for global candidates.
	GlobalMinUsage int `json:"global_min_usage"`
	// MaxQueryLength caps query length in runes at the public boundary,
	// bounding the edit-distance computation.
	MaxQueryLength int `json:"max_query_length"`
	// MaxRecentTopics bounds the per-user topic recency list.
	MaxRecentTopics int `json:"max_recent_topics"`
	// StopwordTables maps language codes to stopword lists. The tables
	// are plain configuration data so new languages can be added
	// without touching the extraction logic.
	StopwordTables map[string][]string `json:"stopword_tables,omitempty"`
	// TagRules maps a context tag to the keywords that trigger it.
	TagRules map[string][]string `json:"tag_rules,omitempty"`
	// EnableMetrics turns on Prometheus collectors.
	EnableMetrics bool `json:"enable_metrics"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() *Config {
	return &Config{
		MaxEntries:            1000,
		TTL:                   24 * time.Hour,
		SimilarityThreshold:   0.75,
		EvictionBatchFraction: 0.2,
		UserCandidateWindow:   10,
		GlobalCandidateWindow: 50,
		GlobalMinUsage:        2,
		MaxQueryLength:        512,
		MaxRecentTopics:       20,
		StopwordTables:        defaultStopwordTables(),
		TagRules:              defaultTagRules(),
		EnableMetrics:         true,
	}
}

// Validate reports the construction-time failures callers can see.
// Everything else degrades to a default instead of failing.
func (c *Config) Validate() error {
	if c.MaxEntries <= 0 {
		return fmt.Errorf("%w: max entries must be positive, got %d", ErrInvalidConfig, c.MaxEntries)
	}
	if c.TTL <= 0 {
		return fmt.Errorf("%w: ttl must be positive, got %s", ErrInvalidConfig, c.TTL)
	}
	if c.SimilarityThreshold < 0 || c.SimilarityThreshold > 1 {
		return fmt.Errorf("%w: similarity threshold must be between 0 and 1, got %g", ErrInvalidConfig, c.SimilarityThreshold)
	}
	return nil
}

// withDefaults copies the config and fills optional zero fields.
func (c *Config) withDefaults() *Config {
	out := *c
	def := DefaultConfig()
	if out.EvictionBatchFraction <= 0 || out.EvictionBatchFraction > 1 {
		out.EvictionBatchFraction = def.EvictionBatchFraction
	}
	if out.UserCandidateWindow <= 0 {
		out.UserCandidateWindow = def.UserCandidateWindow
	}
	if out.GlobalCandidateWindow <= 0 {
		out.GlobalCandidateWindow = def.GlobalCandidateWindow
	}
	if out.GlobalMinUsage <= 0 {
		out.GlobalMinUsage = def.GlobalMinUsage
	}
	if out.MaxQueryLength <= 0 {
		out.MaxQueryLength = def.MaxQueryLength
	}
	if out.MaxRecentTopics <= 0 {
		out.MaxRecentTopics = def.MaxRecentTopics
	}
	if out.StopwordTables == nil {
		out.StopwordTables = def.StopwordTables
	}
	if out.TagRules == nil {
		out.TagRules = def.TagRules
	}
	return &out
}
