package app

import (
	"strings"

	"taskdeck/cmd"
	"taskdeck/keys"
	"taskdeck/log"
	"taskdeck/ui/overlay"

	"github.com/charmbracelet/lipgloss"
)

type helpText interface {
	// title is shown above the content.
	title() string
	// toContent returns the help UI content.
	toContent(m *home) string
	// mask returns the bit mask for this help text. These are used to track which help screens
	// have been seen in the app state.
	mask() uint32
}

type helpTypeGeneral struct{}

type helpTypeWelcome struct{}

func (h helpTypeGeneral) title() string {
	return "Keyboard Shortcuts"
}

func (h helpTypeGeneral) toContent(m *home) string {
	var palette []string
	for _, b := range keys.ShortHelp() {
		palette = append(palette, keyStyle.Render(b.Help().Key)+" "+descStyle.Render(b.Help().Desc))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.manager.HelpContent(),
		"",
		headerStyle.Render("In the palette:"),
		strings.Join(palette, "  "),
	)
}

func (h helpTypeGeneral) mask() uint32 {
	return 1
}

func (h helpTypeWelcome) title() string {
	return "Welcome to taskdeck"
}

func (h helpTypeWelcome) toContent(m *home) string {
	paletteKey := "ctrl+k"
	if ks := m.registry.GetKeysForCommand("sys.palette"); len(ks) > 0 {
		paletteKey = ks[0]
	}
	helpKey := "?"
	if ks := m.registry.GetKeysForCommand("sys.help"); len(ks) > 0 {
		helpKey = ks[0]
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		descStyle.Render("Everything is one search away."),
		"",
		keyStyle.Render(paletteKey)+descStyle.Render(" opens the command palette. Type to find"),
		descStyle.Render("commands, issues by key or title, places and git branches."),
		"",
		keyStyle.Render(helpKey)+descStyle.Render(" lists every shortcut."),
	)
}

func (h helpTypeWelcome) mask() uint32 {
	return 1 << 1
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#36CFC9"))
	keyStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFCC00"))
	descStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#1a1a1a", Dark: "#FFFFFF"})
)

// showHelpScreen displays the help screen overlay. Screens other than the
// general one are shown only once.
func (m *home) showHelpScreen(helpType helpText, onDismiss func()) {
	_, alwaysShow := helpType.(helpTypeGeneral)

	flag := helpType.mask()
	ui := m.appState.UI
	if !alwaysShow && ui.HelpScreensSeen&flag != 0 {
		if onDismiss != nil {
			onDismiss()
		}
		return
	}

	ui.HelpScreensSeen |= flag
	if err := m.appState.SetUI(ui); err != nil {
		log.WarningLog.Printf("Failed to save help screen state: %v", err)
	}

	m.textOverlay = overlay.NewTextOverlay(helpType.title(), helpType.toContent(m))
	m.textOverlay.SetWidth(min(max(m.width*6/10, 40), 90))
	m.textOverlay.OnDismiss = onDismiss
	m.state = stateHelp
	m.manager.PushScope(cmd.ScopeHelp)
}
