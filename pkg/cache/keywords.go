package cache

import (
	"strings"
	"unicode"
	"unicode/utf8"

	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	// maxKeywords caps the token sequence per query.
	maxKeywords = 10
	// minTokenRunes drops tokens shorter than this.
	minTokenRunes = 3
	// keywordMemoSize bounds the extraction memo. Similarity sweeps
	// re-tokenize the same candidate texts on every lookup, so a small
	// LRU in front of extraction pays for itself quickly.
	keywordMemoSize = 2048
)

// KeywordExtractor tokenizes a query into a small keyword set, used
// both for context tagging and for the Jaccard term of similarity
// scoring. Extraction is deterministic and carries no learned state.
type KeywordExtractor struct {
	stopwords  map[string]bool
	isWordRune func(r rune) bool
	memo       *lru.Cache[string, []string]
}

// NewKeywordExtractor creates an extractor over the given stopword
// list. The word-class predicate keeps letters (including diacritics)
// and whitespace; everything else is treated as a separator.
func NewKeywordExtractor(stopwords []string) *KeywordExtractor {
	set := make(map[string]bool, len(stopwords))
	for _, w := range stopwords {
		set[strings.ToLower(w)] = true
	}
	memo, _ := lru.New[string, []string](keywordMemoSize)
	return &KeywordExtractor{
		stopwords:  set,
		isWordRune: defaultWordRune,
		memo:       memo,
	}
}

func defaultWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsSpace(r)
}

// Extract returns the ordered keyword sequence for text: lowercase,
// strip non word-class runes, split on whitespace, drop short tokens
// and stopwords, cap at maxKeywords. The returned slice is shared via
// the memo and must not be mutated by callers.
func (e *KeywordExtractor) Extract(text string) []string {
	if cached, ok := e.memo.Get(text); ok {
		return cached
	}

	lowered := strings.ToLower(text)
	cleaned := strings.Map(func(r rune) rune {
		if e.isWordRune(r) {
			return r
		}
		return ' '
	}, lowered)

	keywords := make([]string, 0, maxKeywords)
	for _, tok := range strings.Fields(cleaned) {
		if utf8.RuneCountInString(tok) < minTokenRunes {
			continue
		}
		if e.stopwords[tok] {
			continue
		}
		keywords = append(keywords, tok)
		if len(keywords) == maxKeywords {
			break
		}
	}

	e.memo.Add(text, keywords)
	return keywords
}

// defaultStopwordTables returns the built-in per-language stopword
// tables. These are configuration data, not logic: swap or extend
// them through Config.StopwordTables. Languages without a table get
// no stopword filtering (short-token filtering still applies).
func defaultStopwordTables() map[string][]string {
	return map[string][]string{
		"en": {
			"the", "and", "for", "are", "but", "not", "you", "all",
			"can", "had", "her", "was", "one", "our", "out", "day",
			"get", "has", "him", "his", "how", "man", "new", "now",
			"old", "see", "two", "way", "who", "did", "its", "let",
			"she", "too", "use", "that", "with", "have", "this",
			"will", "your", "from", "they", "know", "want", "been",
			"much", "some", "time", "very", "when", "come", "here",
			"just", "like", "over", "also", "into", "only", "then",
			"them", "these", "than", "what", "about", "which",
			"their", "would", "there", "could", "please", "show",
		},
		"es": {
			"los", "las", "una", "unos", "unas", "del", "con", "por",
			"para", "que", "este", "esta", "estos", "estas", "como",
			"más", "pero", "sus", "les", "nos", "muy", "sin", "sobre",
			"también", "hasta", "hay", "donde", "quien", "desde",
			"todo", "nos", "durante", "todos", "uno", "ellos", "ese",
			"eso", "ante", "ellas", "quiero", "puede", "muestra",
		},
	}
}
