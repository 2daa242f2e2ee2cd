package tui

import (
	"encoding/json"
	"strings"
	"testing"

	"propadmin/internal/grid"
	"propadmin/internal/store"

	xansi "github.com/charmbracelet/x/ansi"
)

func TestFitLine_PadsAndTruncates(t *testing.T) {
	t.Parallel()

	if got := fitLine("ab", 4); got != "ab  " {
		t.Fatalf("expected padding; got %q", got)
	}
	if got := fitLine("abcdef", 4); got != "abc…" {
		t.Fatalf("expected ellipsis; got %q", got)
	}
	if got := fitLine("abc", 0); got != "" {
		t.Fatalf("expected empty; got %q", got)
	}
	if got := xansi.StringWidth(fitLine("\x1b[1mbold text\x1b[0m", 6)); got != 6 {
		t.Fatalf("expected ANSI-aware width 6; got %d", got)
	}
}

func TestNormalizePane_ExactSize(t *testing.T) {
	t.Parallel()

	out := normalizePane("a\nbb\nccc\ndddd", 3, 2)
	lines := strings.Split(out, "\n")
	if len(lines) != 2 || lines[0] != "a  " || lines[1] != "bb " {
		t.Fatalf("unexpected pane %q", out)
	}
}

func TestOverlayAt_SplicesForeground(t *testing.T) {
	t.Parallel()

	base := "..........\n..........\n.........."
	out := xansi.Strip(overlayAt(base, "XX\nYY", 3, 1))
	want := "..........\n...XX.....\n...YY....."
	if out != want {
		t.Fatalf("overlayAt:\n%s\nwant:\n%s", out, want)
	}

	// Lines past the base are dropped; short base lines are padded.
	out = xansi.Strip(overlayAt("ab", "ZZ\nQQ", 4, 0))
	if out != "ab  ZZ" {
		t.Fatalf("unexpected overlay on short base %q", out)
	}
}

func TestInputLine_SingleLineOfWidth(t *testing.T) {
	t.Parallel()

	out := inputLine(20, "/ one\ntwo")
	if strings.Contains(out, "\n") || xansi.StringWidth(out) != 20 {
		t.Fatalf("expected one line of 20 cells; got %q", out)
	}
}

func TestLayoutColumns_FillsAvailableWidth(t *testing.T) {
	t.Parallel()

	cols := []grid.Column{
		{Key: "a", Label: "A", Width: 9},
		{Key: "b", Label: "B", Width: 19},
		{Key: "c", Label: "C", Width: 29},
	}
	slots := layoutColumns(cols, 0, 40)
	if len(slots) != 2 {
		t.Fatalf("expected two columns to fit; got %#v", slots)
	}
	if slots[0].x != markWidth || slots[1].x != markWidth+10 || slots[1].w != 30 {
		t.Fatalf("unexpected slots %#v", slots)
	}

	slots = layoutColumns(cols, 2, 12)
	if len(slots) != 1 || slots[0].idx != 2 || slots[0].w != 12 {
		t.Fatalf("expected the first column squeezed into the space; got %#v", slots)
	}
}

func TestChipAt_MatchesRenderedPositions(t *testing.T) {
	t.Parallel()

	chips := []grid.Chip{
		{Key: "search", Label: "Search", Value: "mayor"},
		{Key: "estado", Label: "Status", Value: "Vacant"},
	}
	first := len([]rune(chipText(chips[0]))) + 2
	if c, ok := chipAt(chips, 0); !ok || c.Key != "search" {
		t.Fatalf("expected search chip at 0")
	}
	if _, ok := chipAt(chips, first); ok {
		t.Fatalf("expected the gap between chips to miss")
	}
	if c, ok := chipAt(chips, first+1); !ok || c.Key != "estado" {
		t.Fatalf("expected status chip after the gap")
	}
	if _, ok := chipAt(chips, 500); ok {
		t.Fatalf("expected nothing far right")
	}
}

func TestRenderMenu_MatchesPlacement(t *testing.T) {
	t.Parallel()

	g := grid.New(grid.Config{Actions: grid.ActionConfig{View: true, Edit: true, Delete: true}})
	g.Apply(g.Begin(), &grid.Page{Data: []grid.Row{{"id": "1"}}, Total: 1}, nil)
	if !g.OpenMenu("1", grid.Rect{X: 77, Y: 5, W: 3, H: 1}, grid.Size{W: 80, H: 24}) {
		t.Fatalf("expected menu open")
	}
	r := g.Menu().Rect()
	out := renderMenu(g.Menu())
	lines := strings.Split(out, "\n")
	if len(lines) != r.H {
		t.Fatalf("expected %d lines; got %d:\n%s", r.H, len(lines), out)
	}
	for _, ln := range lines {
		if w := xansi.StringWidth(ln); w != r.W {
			t.Fatalf("expected width %d; got %d in %q", r.W, w, ln)
		}
	}
	if !strings.Contains(xansi.Strip(out), "Delete") {
		t.Fatalf("expected entries drawn:\n%s", out)
	}
}

func TestFirstURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{" /media/a.pdf ", "/media/a.pdf"},
		{[]any{"", "/media/1.jpg", "/media/2.jpg"}, "/media/1.jpg"},
		{[]any{map[string]any{"src": "https://cdn/x.jpg"}}, "https://cdn/x.jpg"},
		{map[string]any{"url": "/doc"}, "/doc"},
		{json.Number("3"), ""},
	}
	for _, tt := range tests {
		if got := firstURL(tt.in); got != tt.want {
			t.Fatalf("firstURL(%#v)=%q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeFilterValue(t *testing.T) {
	t.Parallel()

	if v, ok := normalizeFilterValue(grid.DateToKey, " 03/15/2024 "); !ok || v != "2024-03-15" {
		t.Fatalf("expected ISO date; got %q ok=%v", v, ok)
	}
	if v, ok := normalizeFilterValue(grid.DateFromKey, "soon"); ok || v != "soon" {
		t.Fatalf("expected rejection; got %q ok=%v", v, ok)
	}
	if v, ok := normalizeFilterValue("ciudad", " Madrid "); !ok || v != "Madrid" {
		t.Fatalf("expected trimmed passthrough; got %q", v)
	}
	if v, ok := normalizeFilterValue(grid.DateFromKey, ""); !ok || v != "" {
		t.Fatalf("expected empty to clear; got %q", v)
	}
}

func TestRecordMarkdown_ColumnsFirstThenRest(t *testing.T) {
	t.Parallel()

	cols := []grid.Column{{Key: "renta", Label: "Rent", Kind: grid.CurrencyKind{}}, {Key: "ref", Label: "Ref"}}
	rec := grid.Row{"ref": "P-1", "renta": json.Number("950"), "zona": "centro", "extra": map[string]any{"a": 1.0}, "nota": "a|b"}
	md := recordMarkdown("Properties · 1", cols, rec)

	iRent, iRef := strings.Index(md, "| Rent |"), strings.Index(md, "| Ref |")
	iExtra, iZona := strings.Index(md, "| extra |"), strings.Index(md, "| zona |")
	if iRent < 0 || iRent > iRef || iRef > iExtra || iExtra > iZona {
		t.Fatalf("unexpected field order:\n%s", md)
	}
	if !strings.Contains(md, `{"a":1}`) || !strings.Contains(md, `a\|b`) {
		t.Fatalf("expected nested JSON and escaped pipes:\n%s", md)
	}
}

func TestDecodeRecord_UnwrapsDataAndKeepsNumbers(t *testing.T) {
	t.Parallel()

	rec, err := decodeRecord([]byte(`{"data":{"id":12345678901234567,"ok":true}}`))
	if err != nil {
		t.Fatalf("decodeRecord: %v", err)
	}
	if rec.ID() != "12345678901234567" {
		t.Fatalf("expected exact id; got %q", rec.ID())
	}
	if _, err := decodeRecord([]byte(`[1,2]`)); err == nil {
		t.Fatalf("expected non-object to fail")
	}
}

func TestShareCommand(t *testing.T) {
	t.Parallel()

	tab := &gridTab{def: store.ViewDef{Name: "properties", Path: "/properties"}}
	tab.g = grid.New(grid.Config{Name: "properties"})
	if got := shareCommand(tab); got != "propadmin browse properties" {
		t.Fatalf("unexpected command %q", got)
	}
	tab.g.SetSearch("mayor")
	if got := shareCommand(tab); got != "propadmin browse properties --query 'search=mayor'" {
		t.Fatalf("unexpected command %q", got)
	}
}
