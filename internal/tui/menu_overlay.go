package tui

import (
	"strings"

	"propadmin/internal/grid"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

// renderMenu draws the row action menu at exactly menu.Rect() size.
func renderMenu(menu *grid.Menu) string {
	r := menu.Rect()
	inner := r.W - 4
	if inner < 1 {
		inner = 1
	}
	item := lipgloss.NewStyle().Foreground(colorModalSurfaceFg).Background(colorModalSurfaceBg)
	focused := lipgloss.NewStyle().Foreground(colorSelectedFg).Background(colorSelectedBg).Bold(true)

	lines := make([]string, 0, len(menu.Entries()))
	for i, e := range menu.Entries() {
		label := fitLine(e.Label, inner)
		if e.Action == grid.ActionDelete && i != menu.Focus() {
			lines = append(lines, item.Foreground(colorErrorFg).Render(label))
			continue
		}
		if i == menu.Focus() {
			lines = append(lines, focused.Render(label))
			continue
		}
		lines = append(lines, item.Render(label))
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorAccent).
		Background(colorModalSurfaceBg).
		Padding(0, 1).
		Width(r.W - 2)
	out := box.Render(strings.Join(lines, "\n"))

	// Clip to the placement; narrow viewports may leave less room than the labels want.
	rendered := strings.Split(out, "\n")
	for i, ln := range rendered {
		if xansi.StringWidth(ln) > r.W {
			rendered[i] = xansi.Cut(ln, 0, r.W)
		}
	}
	return strings.Join(rendered, "\n")
}
