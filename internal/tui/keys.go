package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the application.
type KeyMap struct {
	Up         key.Binding
	Down       key.Binding
	Top        key.Binding
	Bottom     key.Binding
	FocusNext  key.Binding
	FocusLeft  key.Binding
	FocusRight key.Binding
	Select     key.Binding
	Open       key.Binding
	YankURL    key.Binding

	SectionAll       key.Binding
	SectionFavorites key.Binding
	SectionArchive   key.Binding
	SectionTrash     key.Binding

	AddBookmark   key.Binding
	AddCollection key.Binding
	QuickAdd      key.Binding
	Edit          key.Binding
	Move          key.Binding
	Favorite      key.Binding
	Archive       key.Binding
	Trash         key.Binding
	Restore       key.Binding
	Delete        key.Binding

	Filter     key.Binding
	Search     key.Binding
	ClearTags  key.Binding
	Sort       key.Binding
	FilterType key.Binding
	ViewMode   key.Binding
	Reload     key.Binding
	Help       key.Binding
	Quit       key.Binding
}

// DefaultKeyMap returns the default vim-style key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "move down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("gg", "go to top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G"),
			key.WithHelp("G", "go to bottom"),
		),
		FocusNext: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("Tab", "switch pane"),
		),
		FocusLeft: key.NewBinding(
			key.WithKeys("h", "left"),
			key.WithHelp("h", "sidebar"),
		),
		FocusRight: key.NewBinding(
			key.WithKeys("l", "right"),
			key.WithHelp("l", "bookmarks"),
		),
		Select: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("Space", "select"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "open"),
		),
		YankURL: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "yank URL"),
		),
		SectionAll: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "all"),
		),
		SectionFavorites: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "favorites"),
		),
		SectionArchive: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "archive"),
		),
		SectionTrash: key.NewBinding(
			key.WithKeys("4"),
			key.WithHelp("4", "trash"),
		),
		AddBookmark: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add bookmark"),
		),
		AddCollection: key.NewBinding(
			key.WithKeys("A"),
			key.WithHelp("A", "add collection"),
		),
		QuickAdd: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "quick add"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit"),
		),
		Move: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "move to collection"),
		),
		Favorite: key.NewBinding(
			key.WithKeys("*", "f"),
			key.WithHelp("*", "favorite"),
		),
		Archive: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "archive"),
		),
		Trash: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "trash"),
		),
		Restore: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "restore"),
		),
		Delete: key.NewBinding(
			key.WithKeys("D"),
			key.WithHelp("D", "delete forever"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter"),
		),
		Search: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "fuzzy search"),
		),
		ClearTags: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "clear tags"),
		),
		Sort: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "cycle sort"),
		),
		FilterType: key.NewBinding(
			key.WithKeys("F"),
			key.WithHelp("F", "cycle filter"),
		),
		ViewMode: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "grid/list"),
		),
		Reload: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "reload"),
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
