package issues

import "time"

// MockIssues returns the demo data set, timestamped relative to now
func MockIssues(now time.Time) []Issue {
	ago := func(h int) time.Time { return now.Add(-time.Duration(h) * time.Hour) }
	return []Issue{
		{Key: "PM-1", Title: "Set up project board columns", Status: StatusDone, Assignee: "u-1", Labels: []string{"board"}, Updated: ago(200)},
		{Key: "PM-2", Title: "Keyboard shortcuts for issue list", Status: StatusInProgress, Assignee: "u-1", Labels: []string{"ux"}, Updated: ago(3)},
		{Key: "PM-3", Title: "Command palette opens slowly on large projects", Status: StatusTodo, Labels: []string{"bug", "performance"}, Updated: ago(1)},
		{Key: "PM-4", Title: "Inbox badge shows stale count", Status: StatusTodo, Assignee: "u-2", Labels: []string{"bug"}, Updated: ago(20)},
		{Key: "PM-5", Title: "Settings page for notification preferences", Status: StatusTodo, Labels: []string{"settings"}, Updated: ago(48)},
		{Key: "PM-6", Title: "Drag issues between board columns", Status: StatusInProgress, Assignee: "u-2", Labels: []string{"board", "ux"}, Updated: ago(6)},
		{Key: "PM-7", Title: "Sidebar collapses on narrow terminals", Status: StatusTodo, Labels: []string{"ux"}, Updated: ago(30)},
		{Key: "PM-8", Title: "Export issues to CSV", Status: StatusDone, Assignee: "u-3", Labels: []string{"export"}, Updated: ago(400)},
		{Key: "PM-9", Title: "Assign reviewers automatically", Status: StatusTodo, Labels: []string{"workflow"}, Updated: ago(12)},
		{Key: "PM-10", Title: "Search issues by label", Status: StatusTodo, Assignee: "u-1", Labels: []string{"search"}, Updated: ago(2)},
		{Key: "PM-11", Title: "Recent items in command palette", Status: StatusTodo, Labels: []string{"palette"}, Updated: ago(8)},
		{Key: "PM-12", Title: "Dark theme contrast fixes", Status: StatusInProgress, Assignee: "u-3", Labels: []string{"ux"}, Updated: ago(15)},
	}
}

// NewMockTracker creates a tracker seeded with the demo data set
func NewMockTracker() *Tracker {
	return NewTracker(MockIssues(time.Now()))
}
