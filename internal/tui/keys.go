package tui

import "github.com/charmbracelet/bubbles/key"

type gridKeyMap struct {
	Up, Down    key.Binding
	Left, Right key.Binding
	NextPage    key.Binding
	PrevPage    key.Binding
	FirstPage   key.Binding
	LastPage    key.Binding
	PerPage     key.Binding
	Sort        key.Binding
	Search      key.Binding
	Filters     key.Binding
	Chips       key.Binding
	Toggle      key.Binding
	ToggleAll   key.Binding
	Menu        key.Binding
	Open        key.Binding
	BulkDelete  key.Binding
	Reload      key.Binding
	Copy        key.Binding
	Appearance  key.Binding
	Views       key.Binding
	Help        key.Binding
	Back        key.Binding
	Quit        key.Binding
}

func newGridKeyMap() gridKeyMap {
	return gridKeyMap{
		Up:         key.NewBinding(key.WithKeys("up", "k", "ctrl+p"), key.WithHelp("↑/k", "up")),
		Down:       key.NewBinding(key.WithKeys("down", "j", "ctrl+n"), key.WithHelp("↓/j", "down")),
		Left:       key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "column")),
		Right:      key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "column")),
		NextPage:   key.NewBinding(key.WithKeys("n", "pgdown"), key.WithHelp("n", "next page")),
		PrevPage:   key.NewBinding(key.WithKeys("p", "pgup"), key.WithHelp("p", "prev page")),
		FirstPage:  key.NewBinding(key.WithKeys("<"), key.WithHelp("<", "first page")),
		LastPage:   key.NewBinding(key.WithKeys(">"), key.WithHelp(">", "last page")),
		PerPage:    key.NewBinding(key.WithKeys("z"), key.WithHelp("z", "page size")),
		Sort:       key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort")),
		Search:     key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Filters:    key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filters")),
		Chips:      key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "chips")),
		Toggle:     key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "select")),
		ToggleAll:  key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "select page")),
		Menu:       key.NewBinding(key.WithKeys("x", "."), key.WithHelp("x", "actions")),
		Open:       key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "view")),
		BulkDelete: key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "delete selected")),
		Reload:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Copy:       key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy address")),
		Appearance: key.NewBinding(key.WithKeys("T"), key.WithHelp("T", "appearance")),
		Views:      key.NewBinding(key.WithKeys("q", "v"), key.WithHelp("q", "views")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Back:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear")),
		Quit:       key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

func (k gridKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Search, k.Filters, k.Sort, k.Menu, k.Toggle, k.NextPage, k.Views, k.Help}
}

func (k gridKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right, k.Reload},
		{k.NextPage, k.PrevPage, k.FirstPage, k.LastPage, k.PerPage},
		{k.Sort, k.Search, k.Filters, k.Chips},
		{k.Toggle, k.ToggleAll, k.Back, k.BulkDelete},
		{k.Menu, k.Open, k.Copy, k.Appearance, k.Views, k.Quit},
	}
}
