package ui

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

type stringer string

func (s stringer) String() string { return string(s) }

func TestRemoveANSIEscapeCodes(t *testing.T) {
	assert.Equal(t, "plain", removeANSIEscapeCodes("\x1b[1;31mplain\x1b[0m"))
	assert.Equal(t, "a b", removeANSIEscapeCodes("a b"))
}

func TestRenderComponent(t *testing.T) {
	r := NewTestRenderer()

	out, err := r.RenderComponent(stringer(lipgloss.NewStyle().Bold(true).Render("hello")))
	assert.NoError(t, err)
	assert.Equal(t, "hello", out)

	_, err = r.RenderComponent(42)
	assert.Error(t, err)
}

func TestCompareComponentWithSnapshot(t *testing.T) {
	r := NewTestRenderer().SetSnapshotPath(t.TempDir())

	// First run writes the snapshot, second run compares against it
	r.CompareComponentWithSnapshot(t, stringer("line one\nline two"), "two_lines.golden")
	r.CompareComponentWithSnapshot(t, stringer("line one\nline two"), "two_lines.golden")
}

func TestDiffStrings(t *testing.T) {
	diff := diffStrings("a\nb", "a\nc")
	assert.Contains(t, diff, "Line 2:")
	assert.Contains(t, diff, `"b"`)
	assert.Contains(t, diff, `"c"`)
	assert.Empty(t, diffStrings("same", "same"))
}
