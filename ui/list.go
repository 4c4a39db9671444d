package ui

import (
	"strings"

	"taskdeck/issues"

	"github.com/charmbracelet/lipgloss"
)

var titleStyle = lipgloss.NewStyle().
	Padding(1, 1, 0, 1).
	Foreground(lipgloss.AdaptiveColor{Light: "#1a1a1a", Dark: "#dddddd"})

var listDescStyle = lipgloss.NewStyle().
	Padding(0, 1, 1, 1).
	Foreground(lipgloss.AdaptiveColor{Light: "#A49FA5", Dark: "#777777"})

var selectedTitleStyle = lipgloss.NewStyle().
	Padding(1, 1, 0, 1).
	Background(lipgloss.Color("#dde4f0")).
	Foreground(lipgloss.AdaptiveColor{Light: "#1a1a1a", Dark: "#1a1a1a"})

var selectedDescStyle = lipgloss.NewStyle().
	Padding(0, 1, 1, 1).
	Background(lipgloss.Color("#dde4f0")).
	Foreground(lipgloss.AdaptiveColor{Light: "#1a1a1a", Dark: "#1a1a1a"})

var mainTitle = lipgloss.NewStyle().
	Background(lipgloss.Color("62")).
	Foreground(lipgloss.Color("230"))

var emptyStyle = lipgloss.NewStyle().
	Padding(1, 2).
	Foreground(lipgloss.AdaptiveColor{Light: "#A49FA5", Dark: "#777777"})

// entryHeight is the number of rows one rendered issue takes
const entryHeight = 4

// IssueList shows a scrollable list of issues with one selected
type IssueList struct {
	title         string
	items         []issues.Issue
	selectedIdx   int
	scrollOffset  int
	height, width int
	renderer      *IssueRenderer
}

// NewIssueList creates an empty list titled title
func NewIssueList(title string) *IssueList {
	return &IssueList{
		title:    title,
		renderer: &IssueRenderer{},
	}
}

// SetSize sets the height and width of the list.
func (l *IssueList) SetSize(width, height int) {
	l.width = width
	l.height = height
	l.renderer.setWidth(width)
	l.ensureSelectedVisible()
}

// SetTitle changes the heading shown above the list
func (l *IssueList) SetTitle(title string) {
	l.title = title
}

// SetItems replaces the issues, keeping the selection on the same key when
// it is still present.
func (l *IssueList) SetItems(items []issues.Issue) {
	var selectedKey string
	if issue, ok := l.Selected(); ok {
		selectedKey = issue.Key
	}

	l.items = items
	l.selectedIdx = 0
	for i, issue := range items {
		if issue.Key == selectedKey {
			l.selectedIdx = i
			break
		}
	}
	l.ensureSelectedVisible()
}

// Len returns the number of issues shown
func (l *IssueList) Len() int {
	return len(l.items)
}

// Selected returns the highlighted issue
func (l *IssueList) Selected() (issues.Issue, bool) {
	if l.selectedIdx < 0 || l.selectedIdx >= len(l.items) {
		return issues.Issue{}, false
	}
	return l.items[l.selectedIdx], true
}

// Select highlights the issue with key. It returns false when key is not listed.
func (l *IssueList) Select(key string) bool {
	for i, issue := range l.items {
		if strings.EqualFold(issue.Key, key) {
			l.selectedIdx = i
			l.ensureSelectedVisible()
			return true
		}
	}
	return false
}

// Move shifts the selection by delta, clamped to the list
func (l *IssueList) Move(delta int) {
	if len(l.items) == 0 {
		return
	}
	l.selectedIdx = min(max(l.selectedIdx+delta, 0), len(l.items)-1)
	l.ensureSelectedVisible()
}

// Up selects the previous issue
func (l *IssueList) Up() {
	l.Move(-1)
}

// Down selects the next issue
func (l *IssueList) Down() {
	l.Move(1)
}

func (l *IssueList) maxVisibleItems() int {
	// Two rows for the heading
	if l.height <= 2 {
		return len(l.items)
	}
	return max(1, (l.height-2)/entryHeight)
}

func (l *IssueList) ensureSelectedVisible() {
	visible := l.maxVisibleItems()
	if l.selectedIdx < l.scrollOffset {
		l.scrollOffset = l.selectedIdx
	} else if l.selectedIdx >= l.scrollOffset+visible {
		l.scrollOffset = l.selectedIdx - visible + 1
	}
	l.scrollOffset = max(0, l.scrollOffset)
}

func (l *IssueList) String() string {
	var b strings.Builder
	b.WriteString(mainTitle.Render(" " + l.title + " "))
	b.WriteString("\n")

	if len(l.items) == 0 {
		b.WriteString(emptyStyle.Render("No issues here"))
		return lipgloss.Place(l.width, l.height, lipgloss.Left, lipgloss.Top, b.String())
	}

	end := min(len(l.items), l.scrollOffset+l.maxVisibleItems())
	for i := l.scrollOffset; i < end; i++ {
		b.WriteString(l.renderer.Render(l.items[i], i+1, i == l.selectedIdx))
		b.WriteString("\n")
	}
	if end < len(l.items) {
		b.WriteString(emptyStyle.Render("↓ more"))
	}

	return lipgloss.Place(l.width, l.height, lipgloss.Left, lipgloss.Top, b.String())
}

// Width returns the width the list renders at
func (l *IssueList) Width() int {
	return l.width
}
