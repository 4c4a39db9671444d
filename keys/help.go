package keys

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

// shortHelp lists the keys shown in the palette footer, in display order
var shortHelp = []KeyName{KeyUp, KeyDown, KeySelect, KeyComplete, KeyClose}

// ShortHelp returns the bindings shown in the palette footer
func ShortHelp() []key.Binding {
	bindings := make([]key.Binding, 0, len(shortHelp))
	for _, name := range shortHelp {
		bindings = append(bindings, PaletteKeyBindings[name])
	}
	return bindings
}

// HelpLine renders bindings as "key desc" pairs joined by sep
func HelpLine(bindings []key.Binding, sep string) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		if !b.Enabled() {
			continue
		}
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, sep)
}
