package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the application
type KeyMap struct {
	// Navigation
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Home     key.Binding
	End      key.Binding

	// Filters
	Search      key.Binding
	Category    key.Binding
	Type        key.Binding
	Status      key.Binding
	ShowSold    key.Binding
	Price       key.Binding
	MyCondo     key.Binding
	State       key.Binding
	City        key.Binding
	Condominium key.Binding
	Suggest     key.Binding
	Reset       key.Binding

	// Actions
	Retry        key.Binding
	RefreshPrice key.Binding
	Help         key.Binding
	Quit         key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
			key.WithHelp("PgUp", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d"),
			key.WithHelp("PgDn", "page down"),
		),
		Home: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "go to top"),
		),
		End: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "go to bottom"),
		),

		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Category: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "category"),
		),
		Type: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "type"),
		),
		Status: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "status"),
		),
		ShowSold: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "show sold"),
		),
		Price: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "price"),
		),
		MyCondo: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "my condominium"),
		),
		State: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "state"),
		),
		City: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "city"),
		),
		Condominium: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "condominium"),
		),
		Suggest: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "suggest condominium"),
		),
		Reset: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "reset filters"),
		),

		Retry: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "retry"),
		),
		RefreshPrice: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "refresh price range"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// Keys is the global key bindings instance
var Keys = DefaultKeyMap()

// helpGroups orders the bindings shown by the help overlay.
func helpGroups() [][]key.Binding {
	return [][]key.Binding{
		{Keys.Up, Keys.Down, Keys.PageUp, Keys.PageDown, Keys.Home, Keys.End},
		{Keys.Search, Keys.Category, Keys.Type, Keys.Status, Keys.ShowSold, Keys.Price},
		{Keys.MyCondo, Keys.State, Keys.City, Keys.Condominium, Keys.Suggest, Keys.Reset},
		{Keys.Retry, Keys.RefreshPrice, Keys.Help, Keys.Quit},
	}
}
