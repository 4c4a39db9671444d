package overlay

import (
	"strings"

	"github.com/muesli/ansi"
	"github.com/muesli/reflow/truncate"
)

// PlaceOverlay draws fg on top of bg with its top-left corner at column x,
// row y. With center set, x and y are ignored and fg is centered. Styling of
// bg to the right of fg is preserved.
func PlaceOverlay(x, y int, fg, bg string, center bool) string {
	fgLines, fgWidth := getLines(fg)
	bgLines, bgWidth := getLines(bg)
	fgHeight, bgHeight := len(fgLines), len(bgLines)

	if fgWidth >= bgWidth && fgHeight >= bgHeight {
		return fg
	}

	if center {
		x = (bgWidth - fgWidth) / 2
		y = (bgHeight - fgHeight) / 2
	}
	x = clamp(x, 0, max(bgWidth-fgWidth, 0))
	y = clamp(y, 0, max(bgHeight-fgHeight, 0))

	var b strings.Builder
	for i, bgLine := range bgLines {
		if i > 0 {
			b.WriteByte('\n')
		}
		if i < y || i >= y+fgHeight {
			b.WriteString(bgLine)
			continue
		}

		pos := 0
		if x > 0 {
			left := truncate.String(bgLine, uint(x))
			pos = ansi.PrintableRuneWidth(left)
			b.WriteString(left)
			if pos < x {
				b.WriteString(strings.Repeat(" ", x-pos))
				pos = x
			}
		}

		fgLine := fgLines[i-y]
		b.WriteString(fgLine)
		pos += ansi.PrintableRuneWidth(fgLine)

		b.WriteString(cutLeft(bgLine, pos))
	}
	return b.String()
}

// cutLeft drops the first n printable cells of s. Escape sequences are kept
// so the remainder renders with the styling it had.
func cutLeft(s string, n int) string {
	var b strings.Builder
	width := 0
	inEscape := false
	for _, r := range s {
		switch {
		case r == ansi.Marker:
			inEscape = true
			b.WriteRune(r)
		case inEscape:
			b.WriteRune(r)
			if ansi.IsTerminator(r) {
				inEscape = false
			}
		case width >= n:
			b.WriteRune(r)
		default:
			width += ansi.PrintableRuneWidth(string(r))
			// A wide rune straddling the cut leaves a blank cell
			if width > n {
				b.WriteString(strings.Repeat(" ", width-n))
			}
		}
	}
	return b.String()
}

func getLines(s string) ([]string, int) {
	lines := strings.Split(s, "\n")
	widest := 0
	for _, l := range lines {
		widest = max(widest, ansi.PrintableRuneWidth(l))
	}
	return lines, widest
}

func clamp(v, lower, upper int) int {
	return min(max(v, lower), upper)
}
