package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func menuGrid(t *testing.T, cb Callbacks) (*Grid, *fakeFetcher) {
	t.Helper()
	f := &fakeFetcher{pages: []*Page{{
		Data: []Row{
			{"id": "A", "fotos": []any{"1.jpg"}, "pdf": ""},
			{"id": "B", "fotos": []any{}, "pdf": "https://x/b.pdf"},
		},
		Total: 2,
	}}}
	g := New(Config{Actions: ActionConfig{
		View: true, Edit: true, History: true, Delete: true,
		GalleryKey: "fotos", PDFKey: "pdf",
	}}, WithFetcher(f), WithCallbacks(cb))
	require.NoError(t, g.Load(ctx()))
	return g, f
}

func actions(entries []MenuEntry) []string {
	var out []string
	for _, e := range entries {
		out = append(out, e.Action)
	}
	return out
}

var wide = Size{W: 120, H: 40}

func TestMenu_EntriesFollowRowData(t *testing.T) {
	g, _ := menuGrid(t, Callbacks{})

	require.True(t, g.OpenMenu("A", Rect{X: 100, Y: 5, W: 3, H: 1}, wide))
	assert.Equal(t, []string{ActionView, ActionGallery, ActionEdit, ActionHistory, ActionDelete}, actions(g.Menu().Entries()))

	require.True(t, g.OpenMenu("B", Rect{X: 100, Y: 6, W: 3, H: 1}, wide))
	assert.Equal(t, "B", g.Menu().Owner())
	assert.Equal(t, []string{ActionView, ActionPDF, ActionEdit, ActionHistory, ActionDelete}, actions(g.Menu().Entries()))
}

func TestMenu_SameTriggerToggles(t *testing.T) {
	g, _ := menuGrid(t, Callbacks{})
	trig := Rect{X: 100, Y: 5, W: 3, H: 1}

	assert.True(t, g.OpenMenu("A", trig, wide))
	assert.False(t, g.OpenMenu("A", trig, wide))
	assert.False(t, g.Menu().IsOpen())
	assert.Equal(t, "", g.Menu().Owner())
}

func TestMenu_UnknownRowDoesNotOpen(t *testing.T) {
	g, _ := menuGrid(t, Callbacks{})
	assert.False(t, g.OpenMenu("zzz", Rect{}, wide))
	assert.False(t, g.Menu().IsOpen())
}

func TestMenu_PlacementBelowAboveAndNarrow(t *testing.T) {
	entries := []MenuEntry{{Label: "View"}, {Label: "Edit"}, {Label: "Delete"}}
	sz := menuSize(entries)
	require.Equal(t, Size{W: menuMinWidth, H: 5}, sz)

	trig := Rect{X: 100, Y: 10, W: 3, H: 1}
	r := placeMenu(trig, sz, wide)
	assert.Equal(t, Rect{X: 103 - 16, Y: 11, W: 16, H: 5}, r)

	// not enough room below: flip above
	r = placeMenu(Rect{X: 100, Y: 37, W: 3, H: 1}, sz, wide)
	assert.Equal(t, 32, r.Y)

	// exactly fits below
	r = placeMenu(Rect{X: 100, Y: 34, W: 3, H: 1}, sz, wide)
	assert.Equal(t, 35, r.Y)

	// narrow viewport spans near full width
	r = placeMenu(Rect{X: 40, Y: 2, W: 3, H: 1}, sz, Size{W: 50, H: 30})
	assert.Equal(t, Rect{X: 1, Y: 3, W: 48, H: 5}, r)

	// trigger near the left edge never pushes the menu off-screen
	r = placeMenu(Rect{X: 2, Y: 2, W: 3, H: 1}, sz, wide)
	assert.Equal(t, 0, r.X)
}

func TestMenu_KeyboardWraps(t *testing.T) {
	g, _ := menuGrid(t, Callbacks{})
	g.OpenMenu("A", Rect{X: 100, Y: 5, W: 3, H: 1}, wide)
	n := len(g.Menu().Entries())

	g.Menu().MoveFocus(-1)
	assert.Equal(t, n-1, g.Menu().Focus())
	g.Menu().MoveFocus(1)
	assert.Equal(t, 0, g.Menu().Focus())
	g.Menu().MoveFocus(2)
	assert.Equal(t, 2, g.Menu().Focus())
}

func TestMenu_Dismissal(t *testing.T) {
	g, _ := menuGrid(t, Callbacks{})
	trig := Rect{X: 100, Y: 5, W: 3, H: 1}

	g.OpenMenu("A", trig, wide)
	inside := Point{X: g.Menu().Rect().X + 1, Y: g.Menu().Rect().Y + 1}
	_, closed := g.MenuClickOutside(inside)
	assert.False(t, closed)
	_, closed = g.MenuClickOutside(Point{X: 101, Y: 5})
	assert.False(t, closed, "clicks on the trigger are handled by OpenMenu")

	owner, closed := g.MenuClickOutside(Point{X: 0, Y: 0})
	assert.True(t, closed)
	assert.Equal(t, "A", owner)

	g.OpenMenu("A", trig, wide)
	assert.Equal(t, "A", g.MenuScroll())
	assert.False(t, g.Menu().IsOpen())

	g.OpenMenu("B", trig, wide)
	assert.Equal(t, "B", g.MenuEscape())
	assert.Equal(t, "", g.MenuEscape())
}

func TestMenu_SelectInvokesExactlyOneCallback(t *testing.T) {
	var clicked []Row
	type call struct {
		action string
		row    Row
	}
	var calls []call
	g, _ := menuGrid(t, Callbacks{
		OnRowClick: func(r Row) { clicked = append(clicked, r) },
		OnAction:   func(a string, r Row) { calls = append(calls, call{a, r}) },
	})
	trig := Rect{X: 100, Y: 5, W: 3, H: 1}

	g.OpenMenu("A", trig, wide)
	require.True(t, g.MenuSelect())
	require.Len(t, clicked, 1)
	assert.Equal(t, "A", clicked[0].ID())
	assert.Empty(t, calls)
	assert.False(t, g.Menu().IsOpen())

	g.OpenMenu("B", trig, wide)
	g.Menu().MoveFocus(-1)
	require.True(t, g.MenuSelect())
	require.Len(t, calls, 1)
	assert.Equal(t, ActionDelete, calls[0].action)
	assert.Equal(t, "B", calls[0].row.ID())
	assert.Len(t, clicked, 1)

	assert.False(t, g.MenuSelect(), "closed menu selects nothing")
}

func TestMenu_SelectResolvesCurrentRow(t *testing.T) {
	var got Row
	g, f := menuGrid(t, Callbacks{OnAction: func(_ string, r Row) { got = r }})
	g.OpenMenu("A", Rect{X: 100, Y: 5, W: 3, H: 1}, wide)

	// rows refreshed while the menu is open (same ids, new values)
	f.pages = []*Page{{Data: []Row{{"id": "A", "fotos": []any{"1.jpg"}, "name": "fresh"}}, Total: 1}}
	f.calls = nil
	req := g.Begin()
	page, _ := f.List(ctx(), "", req.Params)
	g.Apply(req, page, nil)

	require.True(t, g.Menu().IsOpen())
	require.True(t, g.MenuSelectIndex(1))
	assert.Equal(t, "fresh", got["name"])
}

func TestMenu_ClosesWhenOwnerRowUnloaded(t *testing.T) {
	g, f := menuGrid(t, Callbacks{})
	g.OpenMenu("B", Rect{X: 100, Y: 5, W: 3, H: 1}, wide)

	f.pages = []*Page{{Data: []Row{{"id": "A"}}, Total: 1}}
	f.calls = nil
	require.NoError(t, g.Load(ctx()))
	assert.False(t, g.Menu().IsOpen())
}

func TestMenu_EntryAt(t *testing.T) {
	g, _ := menuGrid(t, Callbacks{})
	g.OpenMenu("A", Rect{X: 100, Y: 5, W: 3, H: 1}, wide)
	r := g.Menu().Rect()

	assert.Equal(t, 0, g.Menu().EntryAt(Point{X: r.X + 2, Y: r.Y + 1}))
	assert.Equal(t, -1, g.Menu().EntryAt(Point{X: r.X + 2, Y: r.Y}))
	assert.Equal(t, -1, g.Menu().EntryAt(Point{X: 0, Y: 0}))
}

func TestMenu_ViewWithoutRowCallsNothing(t *testing.T) {
	var clicked, acted int
	g, _ := menuGrid(t, Callbacks{
		OnRowClick: func(Row) { clicked++ },
		OnAction:   func(string, Row) { acted++ },
	})
	g.OpenMenu("B", Rect{X: 100, Y: 5, W: 3, H: 1}, wide)
	require.Equal(t, ActionView, g.Menu().Entries()[0].Action)

	g.data = rows("A")
	assert.False(t, g.MenuSelectIndex(0))
	assert.False(t, g.Menu().IsOpen())
	assert.Zero(t, clicked)
	assert.Zero(t, acted)
}
