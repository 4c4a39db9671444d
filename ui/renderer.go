package ui

import (
	"fmt"
	"strings"

	"taskdeck/issues"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/truncate"
)

const (
	todoIcon       = "○"
	inProgressIcon = "◐"
	doneIcon       = "●"
)

var todoStyle = lipgloss.NewStyle().
	Foreground(lipgloss.AdaptiveColor{Light: "#888888", Dark: "#888888"})

var inProgressStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#ffaa00"))

var doneStyle = lipgloss.NewStyle().
	Foreground(lipgloss.AdaptiveColor{Light: "#51bd73", Dark: "#51bd73"})

var keyStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.AdaptiveColor{Light: "#000080", Dark: "#87CEFA"})

// IssueRenderer renders one issue as a two line list entry
type IssueRenderer struct {
	width int
}

func (r *IssueRenderer) setWidth(width int) {
	r.width = width
}

func statusIcon(status issues.Status) string {
	switch status {
	case issues.StatusInProgress:
		return inProgressStyle.Render(inProgressIcon)
	case issues.StatusDone:
		return doneStyle.Render(doneIcon)
	default:
		return todoStyle.Render(todoIcon)
	}
}

// Render returns the entry for issue. idx is the 1-based position shown as a prefix.
func (r *IssueRenderer) Render(issue issues.Issue, idx int, selected bool) string {
	titleS := titleStyle
	descS := listDescStyle
	if selected {
		titleS = selectedTitleStyle
		descS = selectedDescStyle
	}

	prefix := fmt.Sprintf(" %d. ", idx)
	head := fmt.Sprintf("%s %s ", statusIcon(issue.Status), keyStyle.Render(issue.Key))

	// Padding on both sides of the styles takes 2 columns
	avail := r.width - 2 - runewidth.StringWidth(prefix) - lipgloss.Width(head)
	title := issue.Title
	if avail > 0 {
		title = truncate.StringWithTail(title, uint(avail), "…")
	}

	assignee := issue.Assignee
	if assignee == "" {
		assignee = "unassigned"
	}
	desc := fmt.Sprintf("%s%s · %s", strings.Repeat(" ", runewidth.StringWidth(prefix)), assignee, strings.Join(issue.Labels, ", "))
	if r.width > 2 {
		desc = truncate.StringWithTail(desc, uint(r.width-2), "…")
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		titleS.Width(max(r.width, 0)).Render(prefix+head+title),
		descS.Width(max(r.width, 0)).Render(desc),
	)
}
