// Package ui holds helpers for rendering TUI components in tests.
package ui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// TestRenderer captures the rendered output of UI components for testing purposes.
type TestRenderer struct {
	// Path where snapshots will be stored
	SnapshotPath string
	// Whether to update existing snapshots
	UpdateSnapshots bool
	// Whether to strip ANSI color codes from output
	StripColors bool
}

// NewTestRenderer creates a new TestRenderer with default settings. Colors
// are rendered with the ASCII profile so output is stable across terminals.
func NewTestRenderer() *TestRenderer {
	lipgloss.SetColorProfile(termenv.Ascii)
	return &TestRenderer{
		SnapshotPath:    "testdata",
		UpdateSnapshots: os.Getenv("UPDATE_SNAPSHOTS") == "true",
		StripColors:     true,
	}
}

// SetSnapshotPath sets the path where snapshots will be stored
func (r *TestRenderer) SetSnapshotPath(path string) *TestRenderer {
	r.SnapshotPath = path
	return r
}

// RenderComponent renders any UI component that has a View() or String() method
func (r *TestRenderer) RenderComponent(component any) (string, error) {
	var output string

	switch c := component.(type) {
	case interface{ View() string }:
		output = c.View()
	case fmt.Stringer:
		output = c.String()
	default:
		return "", fmt.Errorf("component does not implement View() or String()")
	}

	if r.StripColors {
		output = removeANSIEscapeCodes(output)
	}
	return output, nil
}

// MustRender renders component or fails the test
func (r *TestRenderer) MustRender(t *testing.T, component any) string {
	t.Helper()
	output, err := r.RenderComponent(component)
	if err != nil {
		t.Fatalf("Failed to render component: %v", err)
	}
	return output
}

// CompareComponentWithSnapshot compares a rendered component with a saved
// snapshot. A missing snapshot is written and the test passes.
func (r *TestRenderer) CompareComponentWithSnapshot(t *testing.T, component any, filename string) {
	t.Helper()

	output := r.MustRender(t, component)
	snapshotPath := filepath.Join(r.SnapshotPath, filename)

	expected, err := os.ReadFile(snapshotPath)
	if r.UpdateSnapshots || os.IsNotExist(err) {
		if err := os.MkdirAll(r.SnapshotPath, 0755); err != nil {
			t.Fatalf("Failed to create snapshot directory: %v", err)
		}
		if err := os.WriteFile(snapshotPath, []byte(output), 0644); err != nil {
			t.Fatalf("Failed to update snapshot: %v", err)
		}
		t.Logf("Updated snapshot: %s", filename)
		return
	}
	if err != nil {
		t.Fatalf("Failed to read snapshot: %v", err)
	}

	if output != string(expected) {
		t.Errorf("Rendered output does not match snapshot %s", filename)
		t.Errorf("Diff:\n%s", diffStrings(string(expected), output))
	}
}

// Key builds the key message bubbletea would deliver for key
func Key(key string) tea.KeyMsg {
	switch key {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc", "escape":
		return tea.KeyMsg{Type: tea.KeyEscape}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "pgup":
		return tea.KeyMsg{Type: tea.KeyPgUp}
	case "pgdown":
		return tea.KeyMsg{Type: tea.KeyPgDown}
	case "ctrl+u":
		return tea.KeyMsg{Type: tea.KeyCtrlU}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "ctrl+k":
		return tea.KeyMsg{Type: tea.KeyCtrlK}
	case "ctrl+b":
		return tea.KeyMsg{Type: tea.KeyCtrlB}
	case "ctrl+e":
		return tea.KeyMsg{Type: tea.KeyCtrlE}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
}

// Create a simple text diff between two strings
func diffStrings(expected, actual string) string {
	expectedLines := strings.Split(expected, "\n")
	actualLines := strings.Split(actual, "\n")

	var builder strings.Builder
	for i := range max(len(expectedLines), len(actualLines)) {
		var expectedLine, actualLine string
		if i < len(expectedLines) {
			expectedLine = expectedLines[i]
		}
		if i < len(actualLines) {
			actualLine = actualLines[i]
		}

		if expectedLine != actualLine {
			builder.WriteString(fmt.Sprintf("Line %d:\n", i+1))
			builder.WriteString(fmt.Sprintf("  Expected: %q\n", expectedLine))
			builder.WriteString(fmt.Sprintf("  Actual:   %q\n", actualLine))
		}
	}
	return builder.String()
}

// removeANSIEscapeCodes removes ANSI escape codes from a string
func removeANSIEscapeCodes(str string) string {
	var result strings.Builder
	inEscapeSeq := false

	for _, r := range str {
		if inEscapeSeq {
			// End of escape sequence
			if (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') {
				inEscapeSeq = false
			}
			continue
		}
		if r == '\x1b' {
			inEscapeSeq = true
			continue
		}
		result.WriteRune(r)
	}
	return result.String()
}
