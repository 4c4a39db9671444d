package ui

import (
	"fmt"
	"sort"
	"strings"

	"taskdeck/issues"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
)

var activeLabelStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#FFFFFF")).
	Background(lipgloss.Color("62")).
	Padding(0, 1)

var inactiveLabelStyle = lipgloss.NewStyle().
	Foreground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#DDDDDD"}).
	Padding(0, 1)

// LabelFilter narrows the issue list to one label
type LabelFilter struct {
	width     int
	active    string
	available map[string]int // label to number of issues carrying it
}

// NewLabelFilter creates a filter with no active label
func NewLabelFilter() *LabelFilter {
	return &LabelFilter{available: make(map[string]int)}
}

// SetWidth sets the width the filter bar may use
func (f *LabelFilter) SetWidth(width int) {
	f.width = width
}

// Active returns the active label, empty when unfiltered
func (f *LabelFilter) Active() string {
	return f.active
}

// SetActive sets the active label
func (f *LabelFilter) SetActive(label string) {
	f.active = label
}

// Clear removes the active label
func (f *LabelFilter) Clear() {
	f.active = ""
}

// Update recounts labels across all issues. An active label no longer
// present is cleared.
func (f *LabelFilter) Update(all []issues.Issue) {
	f.available = make(map[string]int)
	for _, issue := range all {
		for _, label := range issue.Labels {
			f.available[label]++
		}
	}
	if _, ok := f.available[f.active]; !ok {
		f.active = ""
	}
}

func (f *LabelFilter) labels() []string {
	labels := make([]string, 0, len(f.available))
	for label := range f.available {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// Cycle activates the next label in alphabetical order, then no label.
func (f *LabelFilter) Cycle() string {
	labels := f.labels()
	if len(labels) == 0 {
		f.active = ""
		return ""
	}
	if f.active == "" {
		f.active = labels[0]
		return f.active
	}
	i := sort.SearchStrings(labels, f.active)
	if i+1 < len(labels) {
		f.active = labels[i+1]
	} else {
		f.active = ""
	}
	return f.active
}

// Apply returns the issues carrying the active label
func (f *LabelFilter) Apply(all []issues.Issue) []issues.Issue {
	if f.active == "" {
		return all
	}
	filtered := make([]issues.Issue, 0, len(all))
	for _, issue := range all {
		for _, label := range issue.Labels {
			if label == f.active {
				filtered = append(filtered, issue)
				break
			}
		}
	}
	return filtered
}

func (f *LabelFilter) String() string {
	if len(f.available) == 0 {
		return ""
	}

	var sb strings.Builder
	for _, label := range f.labels() {
		text := fmt.Sprintf("%s (%d)", truncate.StringWithTail(label, 15, "…"), f.available[label])
		if label == f.active {
			sb.WriteString(activeLabelStyle.Render(text))
		} else {
			sb.WriteString(inactiveLabelStyle.Render(text))
		}
	}

	out := sb.String()
	if f.width > 0 && lipgloss.Width(out) > f.width {
		out = truncate.StringWithTail(out, uint(f.width), "…")
	}
	return out
}
