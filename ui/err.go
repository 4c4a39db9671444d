package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
)

var errStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{
	Light: "#FF0000",
	Dark:  "#FF0000",
})

var infoStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{
	Light: "#51bd73",
	Dark:  "#51bd73",
})

// ErrBox shows one error or notice line below the main view
type ErrBox struct {
	height, width int
	err           error
	info          string
}

func NewErrBox() *ErrBox {
	return &ErrBox{}
}

func (e *ErrBox) SetError(err error) {
	e.err = err
	e.info = ""
}

// SetInfo shows a non-error notice
func (e *ErrBox) SetInfo(msg string) {
	e.err = nil
	e.info = msg
}

func (e *ErrBox) Clear() {
	e.err = nil
	e.info = ""
}

func (e *ErrBox) SetSize(width, height int) {
	e.width = width
	e.height = height
}

func (e *ErrBox) String() string {
	var line string
	style := infoStyle
	switch {
	case e.err != nil:
		line = strings.ReplaceAll(e.err.Error(), "\n", "//")
		style = errStyle
	case e.info != "":
		line = e.info
	}
	if e.width > 3 {
		line = truncate.StringWithTail(line, uint(e.width), "...")
	}
	return lipgloss.Place(e.width, max(e.height, 1), lipgloss.Center, lipgloss.Top, style.Render(line))
}
