package keys

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyName identifies a key handled by the palette overlay. Application
// keys are bound through the command registry instead.
type KeyName int

const (
	KeyUp KeyName = iota
	KeyDown
	KeyPageUp
	KeyPageDown
	KeySelect
	KeyClose
	KeyComplete // Tab fills the input with the highlighted result's title
	KeyClear
)

// PaletteKeyStringsMap is a global, immutable map string to keybinding.
var PaletteKeyStringsMap = map[string]KeyName{
	"up":     KeyUp,
	"ctrl+p": KeyUp,
	"down":   KeyDown,
	"ctrl+n": KeyDown,
	"pgup":   KeyPageUp,
	"pgdown": KeyPageDown,
	"enter":  KeySelect,
	"esc":    KeyClose,
	"ctrl+c": KeyClose,
	"tab":    KeyComplete,
	"ctrl+u": KeyClear,
}

// PaletteKeyBindings is a global, immutable map of KeyName to keybinding.
var PaletteKeyBindings = map[KeyName]key.Binding{
	KeyUp: key.NewBinding(
		key.WithKeys("up", "ctrl+p"),
		key.WithHelp("↑/^p", "up"),
	),
	KeyDown: key.NewBinding(
		key.WithKeys("down", "ctrl+n"),
		key.WithHelp("↓/^n", "down"),
	),
	KeyPageUp: key.NewBinding(
		key.WithKeys("pgup"),
		key.WithHelp("pgup", "page up"),
	),
	KeyPageDown: key.NewBinding(
		key.WithKeys("pgdown"),
		key.WithHelp("pgdn", "page down"),
	),
	KeySelect: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("↵", "run"),
	),
	KeyClose: key.NewBinding(
		key.WithKeys("esc", "ctrl+c"),
		key.WithHelp("esc", "close"),
	),
	KeyComplete: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "complete"),
	),
	KeyClear: key.NewBinding(
		key.WithKeys("ctrl+u"),
		key.WithHelp("^u", "clear"),
	),
}

// Lookup returns the palette key bound to s
func Lookup(s string) (KeyName, bool) {
	name, ok := PaletteKeyStringsMap[s]
	return name, ok
}
