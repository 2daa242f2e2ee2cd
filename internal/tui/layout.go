package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

// normalizePane forces s to be exactly width columns wide (ANSI-aware) and height lines tall,
// so overlays and joins line up cell for cell.
func normalizePane(s string, width, height int) string {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}

	lines := strings.Split(s, "\n")
	if height > 0 {
		if len(lines) > height {
			lines = lines[:height]
		}
		for len(lines) < height {
			lines = append(lines, "")
		}
	}

	for i, ln := range lines {
		lines[i] = fitLine(ln, width)
	}
	return strings.Join(lines, "\n")
}

// fitLine truncates (with an ellipsis) or pads ln to exactly width cells.
func fitLine(ln string, width int) string {
	if width <= 0 {
		return ""
	}
	// Bound the cost of measuring pathological lines.
	if len(ln) > 8192 {
		ln = xansi.Cut(ln, 0, width)
	}
	w := xansi.StringWidth(ln)
	if w > width {
		if width == 1 {
			ln = xansi.Cut(ln, 0, 1)
		} else {
			ln = xansi.Cut(ln, 0, width-1) + "…"
		}
		w = xansi.StringWidth(ln)
	}
	if w < width {
		ln += strings.Repeat(" ", width-w)
	}
	return ln
}

// overlayAt draws fg over base with its top-left corner at column x, line y. Cells of base
// outside fg's lines are kept.
func overlayAt(base, fg string, x, y int) string {
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	baseLines := strings.Split(base, "\n")
	for i, fl := range strings.Split(fg, "\n") {
		row := y + i
		if row >= len(baseLines) {
			break
		}
		bl := baseLines[row]
		bw := xansi.StringWidth(bl)
		if bw < x {
			bl += strings.Repeat(" ", x-bw)
			bw = x
		}
		fw := xansi.StringWidth(fl)
		left := xansi.Cut(bl, 0, x)
		right := ""
		if x+fw < bw {
			right = xansi.Cut(bl, x+fw, bw)
		}
		baseLines[row] = left + "\x1b[0m" + fl + "\x1b[0m" + right
	}
	return strings.Join(baseLines, "\n")
}

// inputLine renders a text input as a single padded line of width cells on the input
// background. Cursor styling can push the view past width; the overflow is cut.
func inputLine(width int, view string) string {
	if width < 10 {
		width = 10
	}
	view = strings.NewReplacer("\r", " ", "\n", " ").Replace(view)
	line := lipgloss.PlaceHorizontal(width, lipgloss.Left, " "+view+" ",
		lipgloss.WithWhitespaceBackground(colorInputBg))
	if xansi.StringWidth(line) > width {
		line = xansi.Cut(line, 0, width) + "\x1b[0m"
	}
	return line
}
