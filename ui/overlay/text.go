package overlay

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// TextOverlay shows a read-only block of text, such as the help screen,
// until any key is pressed.
type TextOverlay struct {
	Title     string
	content   string
	Dismissed bool
	OnDismiss func()
	width     int
}

// NewTextOverlay creates a text overlay with the given title and content
func NewTextOverlay(title, content string) *TextOverlay {
	return &TextOverlay{
		Title:   title,
		content: content,
		width:   60,
	}
}

// SetWidth sets the outer width of the box
func (t *TextOverlay) SetWidth(width int) {
	t.width = max(width, 20)
}

// SetContent replaces the displayed text
func (t *TextOverlay) SetContent(content string) {
	t.content = content
}

// HandleKeyPress dismisses the overlay. It returns true when the overlay should be closed.
func (t *TextOverlay) HandleKeyPress(msg tea.KeyMsg) bool {
	t.Dismissed = true
	if t.OnDismiss != nil {
		t.OnDismiss()
	}
	return true
}

// View renders the overlay
func (t *TextOverlay) View() string {
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Padding(1, 2)

	titleStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("62")).
		Bold(true).
		MarginBottom(1)

	hintStyle := lipgloss.NewStyle().
		Foreground(lipgloss.AdaptiveColor{Light: "#A49FA5", Dark: "#777777"})

	content := t.content
	if t.Title != "" {
		content = titleStyle.Render(t.Title) + "\n" + content
	}
	content += "\n\n" + hintStyle.Render("press any key to close")

	return style.Width(max(t.width-style.GetHorizontalBorderSize(), 10)).Render(content)
}
