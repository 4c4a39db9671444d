package ui

import (
	"fmt"
	"strings"

	"taskdeck/cmd/commands"

	"github.com/charmbracelet/lipgloss"
)

var sidebarStyle = lipgloss.NewStyle().
	Padding(1, 1).
	BorderStyle(lipgloss.NormalBorder()).
	BorderRight(true).
	BorderForeground(lipgloss.AdaptiveColor{Light: "#A49FA5", Dark: "#444444"})

var sidebarItemStyle = lipgloss.NewStyle().
	Foreground(lipgloss.AdaptiveColor{Light: "#1a1a1a", Dark: "#dddddd"})

var sidebarCurrentStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("62"))

var sidebarHintStyle = lipgloss.NewStyle().
	Foreground(lipgloss.AdaptiveColor{Light: "#A49FA5", Dark: "#777777"})

// Sidebar lists the application routes with the current one highlighted
type Sidebar struct {
	current       string
	height, width int
	counts        map[string]int
}

// NewSidebar creates a sidebar with current selected
func NewSidebar(current string) *Sidebar {
	return &Sidebar{current: current, counts: make(map[string]int)}
}

// SetSize sets the height and width of the sidebar.
func (s *Sidebar) SetSize(width, height int) {
	s.width = width
	s.height = height
}

// SetCurrent highlights route
func (s *Sidebar) SetCurrent(route string) {
	s.current = route
}

// SetCount shows n next to route; zero hides it
func (s *Sidebar) SetCount(route string, n int) {
	s.counts[route] = n
}

func (s *Sidebar) String() string {
	var b strings.Builder
	for i, route := range commands.Routes {
		style := sidebarItemStyle
		marker := "  "
		if route.Path == s.current {
			style = sidebarCurrentStyle
			marker = "▸ "
		}

		line := marker + route.Title
		if n := s.counts[route.Path]; n > 0 {
			line += fmt.Sprintf(" (%d)", n)
		}
		b.WriteString(style.Render(line))
		b.WriteString(" ")
		b.WriteString(sidebarHintStyle.Render(fmt.Sprintf("%d", i+1)))
		b.WriteString("\n")
	}

	inner := max(s.width-sidebarStyle.GetHorizontalFrameSize(), 0)
	innerHeight := max(s.height-sidebarStyle.GetVerticalFrameSize(), 0)
	return sidebarStyle.Width(inner).Height(innerHeight).Render(b.String())
}
