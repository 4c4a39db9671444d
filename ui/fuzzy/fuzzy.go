package fuzzy

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
)

// SearchItem represents an item that can be searched using fuzzy search
type SearchItem interface {
	// GetSearchText returns the text used for fuzzy matching
	GetSearchText() string

	// GetDisplayText returns the text to display in the UI
	GetDisplayText() string

	// GetID returns a unique identifier for the item
	GetID() string
}

// SearchResult represents a result from a fuzzy search
type SearchResult struct {
	// Item is the original search item
	Item SearchItem

	// Score represents how well the item matched the query (higher is better)
	Score float64

	// Matches contains the rune indices of matching characters for highlighting
	Matches []int
}

// Config controls which matches a Search keeps
type Config struct {
	// Minimum score for a result to be included (0-1)
	MinScore float64

	// Maximum number of results to return, zero for no limit
	MaxResults int
}

// DefaultConfig returns default configuration settings for fuzzy search
func DefaultConfig() Config {
	return Config{
		MinScore:   0.3,
		MaxResults: 50,
	}
}

// fold case-folds s. A Caser is stateful, so each call gets its own.
func fold(s string) string {
	return cases.Fold().String(s)
}

// Search scores every item against query and returns the matches best first.
// An empty query returns every item in its original order with score 1.
func Search(items []SearchItem, query string, cfg Config) []SearchResult {
	if query == "" {
		results := make([]SearchResult, len(items))
		for i, item := range items {
			results[i] = SearchResult{Item: item, Score: 1.0, Matches: []int{}}
		}
		return limit(results, cfg.MaxResults)
	}

	results := make([]SearchResult, 0, len(items))
	for _, item := range items {
		score, matches := Match(query, item.GetSearchText())
		if score > 0 && score >= cfg.MinScore {
			results = append(results, SearchResult{
				Item:    item,
				Score:   score,
				Matches: matches,
			})
		}
	}

	// Stable so equal scores keep the caller's order
	slices.SortStableFunc(results, func(a, b SearchResult) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return 0
		}
	})

	return limit(results, cfg.MaxResults)
}

func limit(results []SearchResult, n int) []SearchResult {
	if n > 0 && len(results) > n {
		return results[:n]
	}
	return results
}

// Match calculates a score between 0 and 1 for how well the pattern matches
// the text, ignoring case. It also returns the rune indices of matching
// characters for highlighting. A score of 0 means no match.
func Match(pattern, text string) (float64, []int) {
	if pattern == "" {
		return 1.0, []int{}
	}

	p := []rune(fold(pattern))
	t := []rune(fold(text))
	// Folding can change rune counts (ß -> ss); fall back to plain lower
	// casing so match indices still line up with the display text.
	if len([]rune(text)) != len(t) {
		t = []rune(strings.ToLower(text))
	}
	if len([]rune(pattern)) != len(p) {
		p = []rune(strings.ToLower(pattern))
	}
	if len(p) > len(t) {
		return 0, []int{}
	}

	span := func(start int) []int {
		matches := make([]int, len(p))
		for i := range p {
			matches[i] = start + i
		}
		return matches
	}

	if slices.Equal(p, t) {
		return 1.0, span(0)
	}

	if idx := runeIndex(t, p); idx >= 0 {
		// Prefix and word-start matches outrank matches mid-word
		if idx == 0 {
			return 0.9, span(0)
		}
		if isBoundary(t[idx-1]) {
			return 0.85, span(idx)
		}
		return 0.8, span(idx)
	}

	// Subsequence match: find each pattern rune in order
	matches := make([]int, 0, len(p))
	var i, j int
	for i < len(p) && j < len(t) {
		if p[i] == t[j] {
			matches = append(matches, j)
			i++
		}
		j++
	}
	if i < len(p) {
		return 0.0, []int{}
	}

	n := float64(len(t))
	matchRatio := float64(len(p)) / n

	gapPenalty := 0.0
	for k := 1; k < len(matches); k++ {
		if gap := matches[k] - matches[k-1] - 1; gap > 0 {
			gapPenalty += float64(gap) / n
		}
	}

	positionBonus := 0.1 * (1.0 - float64(matches[0])/n)

	// Scale down fuzzy matches compared to prefix/exact
	score := (matchRatio - gapPenalty + positionBonus) * 0.7
	// Keep any complete subsequence match above zero
	score = max(score, 0.01)
	return min(score, 0.7), matches
}

func runeIndex(haystack, needle []rune) int {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if slices.Equal(haystack[i:i+len(needle)], needle) {
			return i
		}
	}
	return -1
}

func isBoundary(r rune) bool {
	return r == ' ' || r == '-' || r == '_' || r == '/' || r == '.' || r == ':'
}

// BasicStringItem is a simple implementation of SearchItem for string-only items
type BasicStringItem struct {
	ID   string
	Text string
}

func (i BasicStringItem) GetSearchText() string {
	return i.Text
}

func (i BasicStringItem) GetDisplayText() string {
	return i.Text
}

func (i BasicStringItem) GetID() string {
	return i.ID
}

// NewBasicStringItems creates a slice of BasicStringItem from a slice of strings
func NewBasicStringItems(items []string) []SearchItem {
	result := make([]SearchItem, len(items))
	for i, item := range items {
		result[i] = BasicStringItem{
			ID:   item,
			Text: item,
		}
	}
	return result
}
