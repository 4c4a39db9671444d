package fuzzy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		text    string
		score   float64
		matches []int
	}{
		{name: "empty pattern", pattern: "", text: "anything", score: 1.0, matches: []int{}},
		{name: "exact ignoring case", pattern: "Board", text: "board", score: 1.0, matches: []int{0, 1, 2, 3, 4}},
		{name: "prefix", pattern: "go", text: "Go to Board", score: 0.9, matches: []int{0, 1}},
		{name: "word start", pattern: "board", text: "Go to Board", score: 0.85, matches: []int{6, 7, 8, 9, 10}},
		{name: "mid word", pattern: "oar", text: "Board", score: 0.8, matches: []int{1, 2, 3}},
		{name: "no match", pattern: "xyz", text: "Board", score: 0, matches: []int{}},
		{name: "pattern longer than text", pattern: "boarding", text: "board", score: 0, matches: []int{}},
		{name: "multibyte no match", pattern: "éc", text: "Café", score: 0, matches: []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, matches := Match(tt.pattern, tt.text)
			assert.InDelta(t, tt.score, score, 1e-9)
			assert.Equal(t, tt.matches, matches)
		})
	}
}

func TestMatchSubsequence(t *testing.T) {
	score, matches := Match("gtb", "Go to Board")
	assert.Equal(t, []int{0, 3, 6}, matches)
	assert.Greater(t, score, 0.0)
	assert.Less(t, score, 0.8)

	tight, _ := Match("abc", "abxc")
	loose, _ := Match("abc", "axxxxxxbxxxxxxc")
	assert.Greater(t, tight, loose)
}

func TestMatchUnicodeFolding(t *testing.T) {
	score, matches := Match("ÉCOLE", "école")
	assert.Equal(t, 1.0, score)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, matches)

	score, matches = Match("ré", "Café Ré")
	assert.Equal(t, 0.85, score)
	assert.Equal(t, []int{5, 6}, matches)
}

func TestSearch(t *testing.T) {
	items := NewBasicStringItems([]string{"Close Issue", "Toggle Sidebar", "Copy Issue Key", "Quit"})

	t.Run("empty query keeps order", func(t *testing.T) {
		results := Search(items, "", DefaultConfig())
		require.Len(t, results, 4)
		assert.Equal(t, "Close Issue", results[0].Item.GetID())
		assert.Equal(t, "Quit", results[3].Item.GetID())
	})

	t.Run("ranks best first", func(t *testing.T) {
		results := Search(items, "issue", DefaultConfig())
		require.Len(t, results, 2)
		// Equal scores keep input order
		assert.Equal(t, "Close Issue", results[0].Item.GetID())
		assert.Equal(t, "Copy Issue Key", results[1].Item.GetID())
	})

	t.Run("prefix beats contains", func(t *testing.T) {
		results := Search(items, "co", DefaultConfig())
		require.NotEmpty(t, results)
		assert.Equal(t, "Copy Issue Key", results[0].Item.GetID())
	})

	t.Run("max results", func(t *testing.T) {
		results := Search(items, "", Config{MaxResults: 2})
		assert.Len(t, results, 2)
	})

	t.Run("min score filters weak matches", func(t *testing.T) {
		results := Search(items, "qt", Config{MinScore: 0.9})
		assert.Empty(t, results)
	})
}
