package app

import (
	"context"
	"testing"
	"time"

	"taskdeck/cmd"
	"taskdeck/cmd/commands"
	"taskdeck/config"
	"taskdeck/issues"
	"taskdeck/palette"
	"taskdeck/ui/overlay"
	testui "taskdeck/test/ui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Palette.DebounceMs = 1
	cfg.Palette.CacheTTLSeconds = 0
	cfg.RepoPath = t.TempDir()
	return cfg
}

// newTestHome builds a home whose welcome screen has already been seen
func newTestHome(t *testing.T, stateDir string) *home {
	t.Helper()
	state := config.LoadState(stateDir)
	state.UI.HelpScreensSeen |= (helpTypeWelcome{}).mask()

	m, err := newHome(context.Background(), testConfig(t), state, issues.NewMockTracker())
	require.NoError(t, err)
	t.Cleanup(m.dispose)
	m.Update(tea.WindowSizeMsg{Width: 140, Height: 40})
	return m
}

// press delivers a key and runs whatever the handlers queued
func press(m *home, key string) {
	m.update(testui.Key(key))
	flush(m)
}

func flush(m *home) {
	for len(m.queued) > 0 {
		queued := m.queued
		m.queued = nil
		for _, fn := range queued {
			fn()
		}
	}
}

func TestWelcomeScreenShownOnce(t *testing.T) {
	dir := t.TempDir()

	m, err := newHome(context.Background(), testConfig(t), config.LoadState(dir), issues.NewMockTracker())
	require.NoError(t, err)
	t.Cleanup(m.dispose)
	assert.Equal(t, stateHelp, m.state)
	assert.Equal(t, cmd.ScopeHelp, m.manager.CurrentScope())

	press(m, "x")
	assert.Equal(t, stateDefault, m.state)
	assert.Equal(t, cmd.ScopeList, m.manager.CurrentScope())

	again, err := newHome(context.Background(), testConfig(t), config.LoadState(dir), issues.NewMockTracker())
	require.NoError(t, err)
	t.Cleanup(again.dispose)
	assert.Equal(t, stateDefault, again.state)
}

func TestKeysMoveSelection(t *testing.T) {
	m := newTestHome(t, t.TempDir())

	first, ok := m.list.Selected()
	require.True(t, ok)

	press(m, "j")
	second, ok := m.list.Selected()
	require.True(t, ok)
	assert.NotEqual(t, first.Key, second.Key)

	ctx := m.commandContext()
	id, ok := ctx.Selected(commands.SelectionIssue)
	require.True(t, ok)
	assert.Equal(t, second.Key, id)

	press(m, "k")
	back, _ := m.list.Selected()
	assert.Equal(t, first.Key, back.Key)
}

func TestAssignToMe(t *testing.T) {
	m := newTestHome(t, t.TempDir())
	require.NoError(t, m.navigate(commands.RouteInbox))

	issue, ok := m.list.Selected()
	require.True(t, ok)
	press(m, "a")

	updated, ok := m.tracker.Get(issue.Key)
	require.True(t, ok)
	assert.Equal(t, m.cfg.User.ID, updated.Assignee)

	// Assigned issues leave the inbox
	for _, other := range m.issuesForRoute(commands.RouteInbox) {
		assert.NotEqual(t, issue.Key, other.Key)
	}
}

func TestRoutes(t *testing.T) {
	m := newTestHome(t, t.TempDir())

	tests := []struct {
		route string
		check func(t *testing.T, list []issues.Issue)
	}{
		{commands.RouteMine, func(t *testing.T, list []issues.Issue) {
			require.NotEmpty(t, list)
			for _, issue := range list {
				assert.Equal(t, "u-1", issue.Assignee)
				assert.True(t, issue.Open())
			}
		}},
		{commands.RouteInbox, func(t *testing.T, list []issues.Issue) {
			require.NotEmpty(t, list)
			for _, issue := range list {
				assert.Empty(t, issue.Assignee)
			}
		}},
		{commands.RouteBoard, func(t *testing.T, list []issues.Issue) {
			require.NotEmpty(t, list)
			assert.Equal(t, issues.StatusInProgress, list[0].Status)
			assert.Equal(t, issues.StatusTodo, list[len(list)-1].Status)
		}},
		{commands.RouteSettings, func(t *testing.T, list []issues.Issue) {
			assert.Empty(t, list)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.route, func(t *testing.T) {
			require.NoError(t, m.navigate(tt.route))
			assert.Equal(t, tt.route, m.route)
			tt.check(t, m.issuesForRoute(tt.route))
		})
	}

	assert.Error(t, m.navigate("/nowhere"))
}

func TestOpenIssueLeavesFilteredView(t *testing.T) {
	m := newTestHome(t, t.TempDir())
	require.NoError(t, m.navigate(commands.RouteInbox))

	// PM-2 is assigned, so the inbox does not show it
	require.NoError(t, m.openIssue("pm-2"))
	assert.Equal(t, commands.RouteIssues, m.route)
	selected, ok := m.list.Selected()
	require.True(t, ok)
	assert.Equal(t, "PM-2", selected.Key)

	err := m.openIssue("PM-404")
	assert.ErrorIs(t, err, issues.ErrIssueNotFound)
}

func TestUIStateRestored(t *testing.T) {
	dir := t.TempDir()
	m := newTestHome(t, dir)

	require.NoError(t, m.navigate(commands.RouteBoard))
	press(m, "ctrl+b")
	assert.True(t, m.sidebarHidden)

	restored := newTestHome(t, dir)
	assert.Equal(t, commands.RouteBoard, restored.route)
	assert.True(t, restored.sidebarHidden)
	assert.False(t, restored.detailsHidden)
}

func TestQuitIsQueued(t *testing.T) {
	m := newTestHome(t, t.TempDir())

	m.update(testui.Key("q"))
	require.Len(t, m.queued, 1)

	quit := m.queued[0]()
	require.NotNil(t, quit)
	assert.IsType(t, tea.QuitMsg{}, quit())
}

func TestUnboundKeyIsIgnored(t *testing.T) {
	m := newTestHome(t, t.TempDir())

	_, cmd := m.update(testui.Key("z"))
	assert.Nil(t, cmd)
	assert.NotContains(t, m.errBox.String(), "unbound")
}

// waitForPalette feeds change notifications until cond holds
func waitForPalette(t *testing.T, m *home, cond func(palette.State) bool) {
	t.Helper()
	require.Eventually(t, func() bool {
		m.update(overlay.StateChangedMsg{})
		return cond(m.paletteOverlay.State())
	}, 2*time.Second, 5*time.Millisecond)
}

func TestPaletteNavigates(t *testing.T) {
	m := newTestHome(t, t.TempDir())

	press(m, "ctrl+k")
	require.Equal(t, statePalette, m.state)
	assert.Equal(t, cmd.ScopePalette, m.manager.CurrentScope())

	m.update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("board")})
	waitForPalette(t, m, func(s palette.State) bool {
		_, ok := s.Result("route:" + commands.RouteBoard)
		return s.Query == "board" && !s.IsLoading && ok
	})

	for range len(m.paletteOverlay.State().Results) {
		if r, ok := m.paletteOverlay.Selected(); ok && r.ID == "route:"+commands.RouteBoard {
			break
		}
		press(m, "down")
	}
	selected, ok := m.paletteOverlay.Selected()
	require.True(t, ok)
	require.Equal(t, "route:"+commands.RouteBoard, selected.ID)

	press(m, "enter")
	assert.Equal(t, stateDefault, m.state)
	assert.Equal(t, cmd.ScopeList, m.manager.CurrentScope())
	assert.Equal(t, commands.RouteBoard, m.route)

	// The selection is remembered for the next open
	ids := make([]string, 0)
	for _, r := range m.recents.Items() {
		ids = append(ids, r.ID)
	}
	assert.Contains(t, ids, "route:"+commands.RouteBoard)
}

func TestPaletteEscapeRestoresScope(t *testing.T) {
	m := newTestHome(t, t.TempDir())

	press(m, "ctrl+k")
	require.Equal(t, statePalette, m.state)
	assert.Contains(t, m.View(), "Command Palette")

	press(m, "esc")
	assert.Equal(t, stateDefault, m.state)
	assert.Equal(t, cmd.ScopeList, m.manager.CurrentScope())
	assert.NotContains(t, m.View(), "Command Palette")
}

func TestHelpFromKey(t *testing.T) {
	m := newTestHome(t, t.TempDir())

	press(m, "?")
	require.Equal(t, stateHelp, m.state)
	require.NotNil(t, m.textOverlay)

	press(m, "enter")
	assert.Equal(t, stateDefault, m.state)
	assert.Nil(t, m.textOverlay)
}

func TestViewShowsSettings(t *testing.T) {
	m := newTestHome(t, t.TempDir())
	require.NoError(t, m.navigate(commands.RouteSettings))

	view := m.View()
	assert.Contains(t, view, "Settings")
	assert.Contains(t, view, m.cfg.User.ID)
	assert.Contains(t, view, m.controller.Debounce().String())
}
