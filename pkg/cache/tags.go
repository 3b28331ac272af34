package cache

import (
	"sort"
	"strings"
)

// tagCurrency marks entries whose query or response carries a
// currency symbol.
const tagCurrency = "currency"

var currencySymbols = []rune{'$', '€', '£', '¥', '₹'}

// defaultTagRules returns the built-in tag → trigger-keyword table.
// Like the stopword tables this is replaceable data, not logic:
// override it through Config.TagRules for new domains.
func defaultTagRules() map[string][]string {
	return map[string][]string{
		"booking_intent": {"book", "booking", "reserve", "reservation", "availability"},
		"price_intent":   {"price", "cost", "cheap", "expensive", "deal", "discount"},
	}
}

// tagger derives deterministic context tags from query and response
// text using a fixed keyword table.
type tagger struct {
	rules map[string][]string
}

// derive returns the tag set triggered by the given texts.
func (t tagger) derive(query, response string) []string {
	var tags []string

	if containsCurrencySymbol(query) || containsCurrencySymbol(response) {
		tags = append(tags, tagCurrency)
	}

	words := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(query)) {
		words[strings.Trim(w, ".,!?;:\"'")] = true
	}
	for tag, triggers := range t.rules {
		for _, trigger := range triggers {
			if words[trigger] {
				tags = append(tags, tag)
				break
			}
		}
	}
	return tags
}

func containsCurrencySymbol(s string) bool {
	for _, r := range s {
		for _, c := range currencySymbols {
			if r == c {
				return true
			}
		}
	}
	return false
}

// mergeTags unions extra caller tags with derived tags, deduplicated
// and sorted for stable output.
func mergeTags(extra, derived []string) []string {
	if len(extra) == 0 && len(derived) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(extra)+len(derived))
	out := make([]string, 0, len(extra)+len(derived))
	for _, t := range append(append([]string(nil), extra...), derived...) {
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
