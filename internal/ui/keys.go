package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the key bindings of the list view
type KeyMap struct {
	Up           key.Binding
	Down         key.Binding
	PageUp       key.Binding
	PageDown     key.Binding
	Home         key.Binding
	End          key.Binding
	Search       key.Binding
	NextCategory key.Binding
	PrevCategory key.Binding
	Details      key.Binding
	Reload       key.Binding
	Help         key.Binding
	Quit         key.Binding

	// active while the query input has focus
	AcceptQuery key.Binding
	ClearQuery  key.Binding
}

// DefaultKeyMap is the standard set of bindings
var DefaultKeyMap = KeyMap{
	Up:           key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:         key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	PageUp:       key.NewBinding(key.WithKeys("pgup", "ctrl+u"), key.WithHelp("pgup", "page up")),
	PageDown:     key.NewBinding(key.WithKeys("pgdown", "ctrl+d"), key.WithHelp("pgdn", "page down")),
	Home:         key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "top")),
	End:          key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "bottom")),
	Search:       key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	NextCategory: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next category")),
	PrevCategory: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous category")),
	Details:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "details")),
	Reload:       key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "reload")),
	Help:         key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:         key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),

	AcceptQuery: key.NewBinding(key.WithKeys("enter", "esc"), key.WithHelp("enter/esc", "done")),
	ClearQuery:  key.NewBinding(key.WithKeys("ctrl+w"), key.WithHelp("ctrl+w", "clear query")),
}

// ShortHelp is shown in the footer
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Search, k.NextCategory, k.Details, k.Help, k.Quit}
}

// FullHelp is shown in the help pager
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown, k.Home, k.End},
		{k.Search, k.AcceptQuery, k.ClearQuery, k.NextCategory, k.PrevCategory},
		{k.Details, k.Reload, k.Help, k.Quit},
	}
}
