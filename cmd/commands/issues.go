package commands

import (
	"errors"
	"fmt"

	"taskdeck/cmd/interfaces"

	"github.com/atotto/clipboard"
)

// SelectionIssue is the selection type used for issues
const SelectionIssue = "issue"

// ErrNoIssueSelected is returned by issue commands run without an issue selection
var ErrNoIssueSelected = errors.New("no issue selected")

// IssueHandlers contains handlers for commands acting on the selected issue
type IssueHandlers struct {
	OnAssign func(issueID, userID string) error
	OnClose  func(issueID string) error
	// OnCopy defaults to the system clipboard when nil
	OnCopy func(text string) error
}

// HasIssueSelection reports whether ctx has an issue selected
func HasIssueSelection(ctx interfaces.CommandContext) bool {
	_, ok := ctx.Selected(SelectionIssue)
	return ok
}

// CopyIssueKeyCommand copies the selected issue key to the clipboard
func CopyIssueKeyCommand(h *IssueHandlers) func(ctx interfaces.CommandContext) error {
	return func(ctx interfaces.CommandContext) error {
		id, ok := ctx.Selected(SelectionIssue)
		if !ok {
			return ErrNoIssueSelected
		}
		copyFn := clipboard.WriteAll
		if h != nil && h.OnCopy != nil {
			copyFn = h.OnCopy
		}
		if err := copyFn(id); err != nil {
			return fmt.Errorf("failed to copy %s: %w", id, err)
		}
		return nil
	}
}

// AssignToMeCommand assigns the selected issue to the acting user
func AssignToMeCommand(h *IssueHandlers) func(ctx interfaces.CommandContext) error {
	return func(ctx interfaces.CommandContext) error {
		id, ok := ctx.Selected(SelectionIssue)
		if !ok {
			return ErrNoIssueSelected
		}
		if h != nil && h.OnAssign != nil {
			return h.OnAssign(id, ctx.User.ID)
		}
		return nil
	}
}

// CloseIssueCommand closes the selected issue
func CloseIssueCommand(h *IssueHandlers) func(ctx interfaces.CommandContext) error {
	return func(ctx interfaces.CommandContext) error {
		id, ok := ctx.Selected(SelectionIssue)
		if !ok {
			return ErrNoIssueSelected
		}
		if h != nil && h.OnClose != nil {
			return h.OnClose(id)
		}
		return nil
	}
}
