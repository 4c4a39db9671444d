package providers

import (
	"context"
	"fmt"
	"strings"

	"taskdeck/cmd/commands"
	"taskdeck/issues"
	"taskdeck/palette"

	"github.com/agnivade/levenshtein"
)

const (
	IssuesProviderID       = "issues"
	issuesProviderPriority = 10

	// initialIssueCount caps the assigned issues shown before typing
	initialIssueCount = 5
	// typoSimilarity is the lowest word similarity accepted as a typo
	typoSimilarity = 0.7
)

// NewIssueProvider searches the tracker by key, title, label and, for
// longer words, by edit distance so small typos still match. Closed issues
// rank at half score. open is called with the issue key on selection.
func NewIssueProvider(tracker *issues.Tracker, open func(key string) error) palette.Provider {
	result := func(issue issues.Issue, score float64) palette.Result {
		return palette.Result{
			ID:       "issue:" + issue.Key,
			Title:    issue.Key + " " + issue.Title,
			Subtitle: issueSubtitle(issue),
			Group:    "Issues",
			Score:    score,
			OnSelect: func(palette.Context) error {
				if open == nil {
					return nil
				}
				return open(issue.Key)
			},
		}
	}

	return palette.Provider{
		ID:       IssuesProviderID,
		Label:    "Issues",
		Priority: issuesProviderPriority,
		Search: func(ctx context.Context, query string, _ palette.Context) ([]palette.Result, error) {
			query = strings.TrimSpace(query)
			if query == "" {
				return nil, nil
			}

			var out []palette.Result
			for _, issue := range tracker.List(issues.Filter{IncludeDone: true}) {
				if err := ctx.Err(); err != nil {
					return nil, err
				}
				score := scoreIssue(query, issue)
				if score <= 0 {
					continue
				}
				if !issue.Open() {
					score /= 2
				}
				out = append(out, result(issue, score))
			}
			return out, nil
		},
		InitialResults: func(_ context.Context, pc palette.Context) ([]palette.Result, error) {
			var out []palette.Result
			if key, ok := pc.Selected(commands.SelectionIssue); ok {
				if issue, found := tracker.Get(key); found {
					out = append(out, result(issue, 50))
				}
			}
			if pc.User.ID == "" {
				return out, nil
			}
			for i, issue := range tracker.List(issues.Filter{Assignee: pc.User.ID}) {
				if i == initialIssueCount {
					break
				}
				out = append(out, result(issue, float64(initialIssueCount-i)))
			}
			return out, nil
		},
	}
}

func scoreIssue(query string, issue issues.Issue) float64 {
	switch {
	case strings.EqualFold(issue.Key, query):
		return 100
	case len(query) >= 2 && strings.HasPrefix(strings.ToUpper(issue.Key), strings.ToUpper(query)):
		return 90 - float64(len(issue.Key)-len(query))
	}

	best := bestScore(query, 0,
		field{text: issue.Title, weight: 80, min: 0.3},
	)
	for _, label := range issue.Labels {
		if strings.EqualFold(label, query) {
			best = max(best, 70)
		}
	}
	if best == 0 {
		best = typoScore(query, issue.Title) * 60
	}
	return best
}

// typoScore compares query with each word of text by edit distance and
// returns the best similarity, or 0 when no word is close enough.
func typoScore(query, text string) float64 {
	q := strings.ToLower(query)
	if len([]rune(q)) < 4 {
		return 0
	}
	best := 0.0
	for _, word := range strings.Fields(strings.ToLower(text)) {
		if len([]rune(word)) < 4 {
			continue
		}
		dist := levenshtein.ComputeDistance(q, word)
		sim := 1 - float64(dist)/float64(max(len([]rune(q)), len([]rune(word))))
		if sim >= typoSimilarity {
			best = max(best, sim)
		}
	}
	return best
}

func issueSubtitle(issue issues.Issue) string {
	assignee := issue.Assignee
	if assignee == "" {
		assignee = "unassigned"
	}
	return fmt.Sprintf("%s · %s", strings.ReplaceAll(string(issue.Status), "_", " "), assignee)
}
