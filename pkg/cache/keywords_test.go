package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeywordExtractor_Extract(t *testing.T) {
	ext := NewKeywordExtractor(defaultStopwordTables()["en"])

	t.Run("lowercases and strips punctuation", func(t *testing.T) {
		got := ext.Extract("Cheap BEACH packages, Greece!")
		assert.Equal(t, []string{"cheap", "beach", "packages", "greece"}, got)
	})

	t.Run("drops short tokens", func(t *testing.T) {
		got := ext.Extract("go to a spa in nice")
		assert.NotContains(t, got, "go")
		assert.NotContains(t, got, "to")
		assert.Contains(t, got, "spa")
		assert.Contains(t, got, "nice")
	})

	t.Run("drops stopwords", func(t *testing.T) {
		got := ext.Extract("show me the best hotels that you have")
		assert.NotContains(t, got, "show")
		assert.NotContains(t, got, "the")
		assert.NotContains(t, got, "that")
		assert.Contains(t, got, "best")
		assert.Contains(t, got, "hotels")
	})

	t.Run("caps at ten tokens", func(t *testing.T) {
		got := ext.Extract("alpha bravo charlie delta echo foxtrot golf hotel india juliett kilo lima")
		assert.Len(t, got, 10)
		assert.Equal(t, "alpha", got[0])
		assert.NotContains(t, got, "kilo")
	})

	t.Run("keeps diacritics", func(t *testing.T) {
		got := ext.Extract("hoteles en Málaga y Cádiz")
		assert.Contains(t, got, "málaga")
		assert.Contains(t, got, "cádiz")
	})

	t.Run("strips digits", func(t *testing.T) {
		got := ext.Extract("room for 2 adults 3 nights")
		assert.Equal(t, []string{"room", "adults", "nights"}, got)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, ext.Extract(""))
		assert.Empty(t, ext.Extract("   "))
	})

	t.Run("memoized result is deterministic", func(t *testing.T) {
		first := ext.Extract("beach packages in crete")
		second := ext.Extract("beach packages in crete")
		assert.Equal(t, first, second)
	})
}

func TestKeywordExtractor_NoStopwordTable(t *testing.T) {
	// Languages without a configured table still get length filtering.
	ext := NewKeywordExtractor(nil)
	got := ext.Extract("the big trip")
	assert.Equal(t, []string{"the", "big", "trip"}, got)
}
