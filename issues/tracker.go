// Package issues is an in-memory issue tracker backing the demo application.
package issues

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"
)

var (
	ErrIssueNotFound = errors.New("issue not found")
	ErrIssueClosed   = errors.New("issue already closed")
)

// Status is the workflow state of an issue
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

// Issue is a single tracked work item
type Issue struct {
	Key      string
	Title    string
	Status   Status
	Assignee string
	Labels   []string
	Updated  time.Time
}

// Open reports whether the issue still needs work
func (i Issue) Open() bool {
	return i.Status != StatusDone
}

func (i Issue) clone() Issue {
	i.Labels = slices.Clone(i.Labels)
	return i
}

// Filter narrows List results. The zero value lists open issues.
type Filter struct {
	Assignee    string
	IncludeDone bool
}

// Tracker stores issues in memory. It is safe for concurrent use.
type Tracker struct {
	mu     sync.RWMutex
	issues []*Issue
	index  map[string]*Issue
	now    func() time.Time
}

// NewTracker creates a tracker holding a copy of seed
func NewTracker(seed []Issue) *Tracker {
	t := &Tracker{
		index: make(map[string]*Issue, len(seed)),
		now:   time.Now,
	}
	for _, issue := range seed {
		issue := issue.clone()
		t.issues = append(t.issues, &issue)
		t.index[strings.ToUpper(issue.Key)] = &issue
	}
	return t
}

// List returns issues matching f, most recently updated first
func (t *Tracker) List(f Filter) []Issue {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var out []Issue
	for _, issue := range t.issues {
		if !f.IncludeDone && !issue.Open() {
			continue
		}
		if f.Assignee != "" && issue.Assignee != f.Assignee {
			continue
		}
		out = append(out, issue.clone())
	}
	slices.SortStableFunc(out, func(a, b Issue) int {
		return b.Updated.Compare(a.Updated)
	})
	return out
}

// Get looks an issue up by key, ignoring case
func (t *Tracker) Get(key string) (Issue, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	issue, ok := t.index[strings.ToUpper(key)]
	if !ok {
		return Issue{}, false
	}
	return issue.clone(), true
}

// Assign sets the assignee and moves a todo issue into progress
func (t *Tracker) Assign(key, userID string) error {
	return t.update(key, func(issue *Issue) error {
		if !issue.Open() {
			return fmt.Errorf("cannot assign %s: %w", issue.Key, ErrIssueClosed)
		}
		issue.Assignee = userID
		if issue.Status == StatusTodo {
			issue.Status = StatusInProgress
		}
		return nil
	})
}

// Close marks an issue done
func (t *Tracker) Close(key string) error {
	return t.update(key, func(issue *Issue) error {
		if !issue.Open() {
			return fmt.Errorf("cannot close %s: %w", issue.Key, ErrIssueClosed)
		}
		issue.Status = StatusDone
		return nil
	})
}

func (t *Tracker) update(key string, fn func(*Issue) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	issue, ok := t.index[strings.ToUpper(key)]
	if !ok {
		return fmt.Errorf("%w: %s", ErrIssueNotFound, key)
	}
	if err := fn(issue); err != nil {
		return err
	}
	issue.Updated = t.now()
	return nil
}

// Len returns the number of issues, open or not
func (t *Tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.issues)
}
