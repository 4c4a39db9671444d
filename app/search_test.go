package app

import (
	"context"
	"testing"

	"taskdeck/cmd/commands"
	"taskdeck/palette"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearch(t *testing.T) {
	cfg := testConfig(t)
	pc := palette.Context{Route: commands.RouteIssues, User: palette.User{ID: "u-1", Role: "member"}}

	results, err := Search(context.Background(), cfg, palette.Request{Query: "board", Context: pc}, false)
	require.NoError(t, err)
	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.ID
	}
	assert.Contains(t, ids, "route:"+commands.RouteBoard)

	limited, err := Search(context.Background(), cfg, palette.Request{Query: "o", Context: pc, Limit: 2}, false)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(limited), 2)
}

func TestSearchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Search(ctx, testConfig(t), palette.Request{Query: "board"}, false)
	assert.ErrorIs(t, err, context.Canceled)
}
