package tui

import (
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
	lru "github.com/hashicorp/golang-lru"
)

// mdKey identifies a renderer; glamour renderers are bound to one style and wrap width.
type mdKey struct {
	dark  bool
	width int
}

// A resize storm produces one renderer per width; only the recent ones are worth keeping.
var mdRenderers, _ = lru.New(8)

// renderMarkdown renders record markdown for the detail screen. It falls back to the raw
// text if glamour fails. A fixed style is used because WithAutoStyle queries the terminal.
func renderMarkdown(md string, width int) string {
	md = strings.TrimSpace(md)
	if md == "" {
		return ""
	}
	k := mdKey{dark: markdownDark(), width: max(width, 10)}

	var r *glamour.TermRenderer
	if v, ok := mdRenderers.Get(k); ok {
		r = v.(*glamour.TermRenderer)
	} else {
		nr, err := glamour.NewTermRenderer(
			glamour.WithStyles(markdownStyleConfig(k.dark)),
			glamour.WithWordWrap(k.width),
		)
		if err != nil {
			return md
		}
		mdRenderers.Add(k, nr)
		r = nr
	}

	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}

// markdownDark reports whether record text uses glamour's dark style. PROPADMIN_TUI_MD_STYLE
// wins over PROPADMIN_TUI_THEME, which wins over background detection.
func markdownDark() bool {
	for _, env := range []string{"PROPADMIN_TUI_MD_STYLE", "PROPADMIN_TUI_THEME"} {
		switch strings.ToLower(strings.TrimSpace(os.Getenv(env))) {
		case "light":
			return false
		case "dark":
			return true
		}
	}
	return lipgloss.HasDarkBackground()
}

// markdownStyleConfig tints glamour's stock style with the active palette.
func markdownStyleConfig(dark bool) ansi.StyleConfig {
	cfg := styles.LightStyleConfig
	if dark {
		cfg = styles.DarkStyleConfig
	}
	text := paletteHex(colorSurfaceFg, dark)
	link := paletteHex(colorAccent, dark)

	for _, b := range []*ansi.StyleBlock{&cfg.Heading, &cfg.H1, &cfg.H2, &cfg.H3} {
		b.Color = text
	}
	cfg.Text.Color = text
	cfg.Code.Color = text
	cfg.Link.Color = link
	cfg.LinkText.Color = link
	cfg.Link.Underline = ptr(true)
	cfg.Strong.Color = nil
	cfg.Emph.Color = nil
	cfg.BlockQuote.Faint = ptr(false)
	return cfg
}

func paletteHex(c lipgloss.TerminalColor, dark bool) *string {
	switch v := c.(type) {
	case lipgloss.AdaptiveColor:
		if dark {
			return ptr(v.Dark)
		}
		return ptr(v.Light)
	case lipgloss.Color:
		return ptr(string(v))
	}
	return nil
}

func ptr[T any](v T) *T { return &v }

// resetMarkdownRenderers drops cached renderers after a palette change.
func resetMarkdownRenderers() { mdRenderers.Purge() }
