package commands

import (
	"errors"
	"testing"

	"taskdeck/cmd/interfaces"

	"github.com/stretchr/testify/assert"
)

func TestCopyIssueKeyCommand(t *testing.T) {
	var copied string
	h := &IssueHandlers{OnCopy: func(text string) error { copied = text; return nil }}
	run := CopyIssueKeyCommand(h)

	assert.ErrorIs(t, run(interfaces.CommandContext{}), ErrNoIssueSelected)

	ctx := interfaces.CommandContext{}.WithSelection(SelectionIssue, "PM-3")
	assert.NoError(t, run(ctx))
	assert.Equal(t, "PM-3", copied)

	h.OnCopy = func(string) error { return errors.New("no clipboard") }
	assert.ErrorContains(t, run(ctx), "failed to copy PM-3")
}

func TestCloseIssueCommandIgnoresOtherSelections(t *testing.T) {
	called := false
	run := CloseIssueCommand(&IssueHandlers{OnClose: func(string) error { called = true; return nil }})

	ctx := interfaces.CommandContext{}.WithSelection("project", "P-1")
	assert.ErrorIs(t, run(ctx), ErrNoIssueSelected)
	assert.False(t, called)
}

func TestNavigateCommandSkipsCurrentRoute(t *testing.T) {
	calls := 0
	h := &NavigationHandlers{OnNavigate: func(string) error { calls++; return nil }}
	run := NavigateCommand(h, RouteBoard)

	assert.NoError(t, run(interfaces.CommandContext{Route: RouteBoard}))
	assert.Equal(t, 0, calls)

	assert.NoError(t, run(interfaces.CommandContext{Route: RouteIssues}))
	assert.Equal(t, 1, calls)
}

func TestRouteTitle(t *testing.T) {
	assert.Equal(t, "Board", RouteTitle(RouteBoard))
	assert.Equal(t, "/unknown", RouteTitle("/unknown"))
}
