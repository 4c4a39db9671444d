// Package providers holds the palette result providers shipped with the
// application and decorators that wrap any provider.
package providers

import (
	"taskdeck/ui/fuzzy"
)

// field is one piece of text a provider matches a query against
type field struct {
	text   string
	weight float64
	// min is the lowest fuzzy score that still counts as a match
	min float64
}

// bestScore returns the highest weighted fuzzy score over fields, or 0 when
// nothing matches. An empty query scores base.
func bestScore(query string, base float64, fields ...field) float64 {
	if query == "" {
		return base
	}
	best := 0.0
	for _, f := range fields {
		if f.text == "" {
			continue
		}
		score, _ := fuzzy.Match(query, f.text)
		if score < f.min || score <= 0 {
			continue
		}
		best = max(best, score*f.weight)
	}
	return best
}

func keywordFields(keywords []string, weight, min float64) []field {
	out := make([]field, len(keywords))
	for i, k := range keywords {
		out[i] = field{text: k, weight: weight, min: min}
	}
	return out
}
