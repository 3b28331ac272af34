package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTagger_Derive(t *testing.T) {
	tg := tagger{rules: defaultTagRules()}

	t.Run("currency symbol in query", func(t *testing.T) {
		tags := tg.derive("packages under $500", "here are some options")
		assert.Contains(t, tags, tagCurrency)
	})

	t.Run("currency symbol in response", func(t *testing.T) {
		tags := tg.derive("beach packages", "from €299 per person")
		assert.Contains(t, tags, tagCurrency)
	})

	t.Run("booking intent", func(t *testing.T) {
		tags := tg.derive("I want to book a room", "sure")
		assert.Contains(t, tags, "booking_intent")
	})

	t.Run("trigger word with punctuation", func(t *testing.T) {
		tags := tg.derive("what does it cost?", "a lot")
		assert.Contains(t, tags, "price_intent")
	})

	t.Run("no triggers", func(t *testing.T) {
		assert.Empty(t, tg.derive("tell me about crete", "an island"))
	})

	t.Run("custom rules", func(t *testing.T) {
		custom := tagger{rules: map[string][]string{"weather_intent": {"forecast", "rain"}}}
		tags := custom.derive("will it rain tomorrow", "probably")
		assert.Equal(t, []string{"weather_intent"}, tags)
	})
}

func TestMergeTags(t *testing.T) {
	t.Run("union with dedup, sorted", func(t *testing.T) {
		got := mergeTags([]string{"promo", "currency"}, []string{"currency", "booking_intent"})
		assert.Equal(t, []string{"booking_intent", "currency", "promo"}, got)
	})

	t.Run("empty inputs", func(t *testing.T) {
		assert.Nil(t, mergeTags(nil, nil))
	})

	t.Run("blank tags dropped", func(t *testing.T) {
		got := mergeTags([]string{"", "promo"}, nil)
		assert.Equal(t, []string{"promo"}, got)
	})
}
