package cache

import (
	"github.com/spf13/viper"
)

// LoadConfigFromViper builds a Config from the "cache.*" keys of the
// given viper instance (the process-global one when nil). Unset keys
// keep their defaults; the result still goes through Validate at
// construction time.
func LoadConfigFromViper(v *viper.Viper) *Config {
	if v == nil {
		v = viper.GetViper()
	}

	config := DefaultConfig()

	if v.IsSet("cache.max_entries") {
		config.MaxEntries = v.GetInt("cache.max_entries")
	}
	if v.IsSet("cache.ttl") {
		config.TTL = v.GetDuration("cache.ttl")
	}
	if v.IsSet("cache.similarity_threshold") {
		config.SimilarityThreshold = v.GetFloat64("cache.similarity_threshold")
	}
	if v.IsSet("cache.eviction_batch_fraction") {
		config.EvictionBatchFraction = v.GetFloat64("cache.eviction_batch_fraction")
	}
	if v.IsSet("cache.user_candidate_window") {
		config.UserCandidateWindow = v.GetInt("cache.user_candidate_window")
	}
	if v.IsSet("cache.global_candidate_window") {
		config.GlobalCandidateWindow = v.GetInt("cache.global_candidate_window")
	}
	if v.IsSet("cache.global_min_usage") {
		config.GlobalMinUsage = v.GetInt("cache.global_min_usage")
	}
	if v.IsSet("cache.max_query_length") {
		config.MaxQueryLength = v.GetInt("cache.max_query_length")
	}
	if v.IsSet("cache.max_recent_topics") {
		config.MaxRecentTopics = v.GetInt("cache.max_recent_topics")
	}
	if v.IsSet("cache.stopwords") {
		if tables := v.GetStringMapStringSlice("cache.stopwords"); len(tables) > 0 {
			config.StopwordTables = tables
		}
	}
	if v.IsSet("cache.tag_rules") {
		if rules := v.GetStringMapStringSlice("cache.tag_rules"); len(rules) > 0 {
			config.TagRules = rules
		}
	}
	if v.IsSet("cache.metrics.enabled") {
		config.EnableMetrics = v.GetBool("cache.metrics.enabled")
	}

	return config
}
