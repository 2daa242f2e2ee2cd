package tui

import (
	"os"
	"strings"
	"sync/atomic"
)

// glyph is a grid affordance with a plain ASCII stand-in for fonts that draw box characters
// or arrows badly (PROPADMIN_TUI_GLYPHS=ascii).
type glyph struct{ unicode, ascii string }

var (
	gTrigger  = glyph{"⋯", ":"}
	gSortAsc  = glyph{"▲", "^"}
	gSortDesc = glyph{"▼", "v"}
	gHRule    = glyph{"─", "-"}
	gRemove   = glyph{"×", "x"}
	gSum      = glyph{"Σ", "="}
)

var asciiGlyphs atomic.Bool

func (g glyph) String() string {
	if asciiGlyphs.Load() {
		return g.ascii
	}
	return g.unicode
}

// applyGlyphPreference reads PROPADMIN_TUI_GLYPHS; unknown values leave the setting alone.
func applyGlyphPreference() {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("PROPADMIN_TUI_GLYPHS"))) {
	case "", "unicode", "utf8":
		asciiGlyphs.Store(false)
	case "ascii":
		asciiGlyphs.Store(true)
	}
}

func glyphTrigger() string  { return gTrigger.String() }
func glyphSortAsc() string  { return gSortAsc.String() }
func glyphSortDesc() string { return gSortDesc.String() }
func glyphHRule() string    { return gHRule.String() }
func glyphRemove() string   { return gRemove.String() }
func glyphSum() string      { return gSum.String() }
