package ui

import (
	"fmt"
	"strings"

	"taskdeck/issues"

	"github.com/charmbracelet/lipgloss"
)

var detailsStyle = lipgloss.NewStyle().
	Padding(1, 2).
	BorderStyle(lipgloss.NormalBorder()).
	BorderLeft(true).
	BorderForeground(lipgloss.AdaptiveColor{Light: "#A49FA5", Dark: "#444444"})

var detailsLabelStyle = lipgloss.NewStyle().
	Width(10).
	Foreground(lipgloss.AdaptiveColor{Light: "#A49FA5", Dark: "#777777"})

// Details shows every field of the selected issue
type Details struct {
	height, width int
	issue         *issues.Issue
}

func NewDetails() *Details {
	return &Details{}
}

func (d *Details) SetSize(width, height int) {
	d.width = width
	d.height = height
}

// SetIssue shows issue; nil shows a placeholder
func (d *Details) SetIssue(issue *issues.Issue) {
	d.issue = issue
}

func (d *Details) String() string {
	var b strings.Builder
	if d.issue == nil {
		b.WriteString(emptyStyle.Render("Nothing selected"))
	} else {
		issue := d.issue
		b.WriteString(keyStyle.Render(issue.Key))
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Bold(true).Render(issue.Title))
		b.WriteString("\n\n")

		assignee := issue.Assignee
		if assignee == "" {
			assignee = "unassigned"
		}
		rows := [][2]string{
			{"Status", fmt.Sprintf("%s %s", statusIcon(issue.Status), issue.Status)},
			{"Assignee", assignee},
			{"Labels", strings.Join(issue.Labels, ", ")},
			{"Updated", issue.Updated.Format("2006-01-02 15:04")},
		}
		for _, row := range rows {
			b.WriteString(detailsLabelStyle.Render(row[0]))
			b.WriteString(row[1])
			b.WriteString("\n")
		}
	}

	inner := max(d.width-detailsStyle.GetHorizontalFrameSize(), 0)
	innerHeight := max(d.height-detailsStyle.GetVerticalFrameSize(), 0)
	return detailsStyle.Width(inner).Height(innerHeight).Render(b.String())
}
