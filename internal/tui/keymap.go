package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap holds every binding of the dashboard.
type KeyMap struct {
	Quit     key.Binding
	Up       key.Binding
	Down     key.Binding
	Open     key.Binding
	New      key.Binding
	Search   key.Binding
	Refresh  key.Binding
	Recovery key.Binding
	Delete   key.Binding
	Back     key.Binding

	Reveal       key.Binding
	Hide         key.Binding
	CopySecret   key.Binding
	CopyUsername key.Binding
	Visit        key.Binding

	Next     key.Binding
	Prev     key.Binding
	Generate key.Binding
	Submit   key.Binding

	NewKey    key.Binding
	CopyKey   key.Binding
	ExportKey key.Binding

	Confirm key.Binding
	Cancel  key.Binding
}

// DefaultKeyMap is the binding set used by New.
var DefaultKeyMap = KeyMap{
	Quit:     key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
	Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Open:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
	New:      key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "new")),
	Search:   key.NewBinding(key.WithKeys("ctrl+f", "/"), key.WithHelp("ctrl+f", "search")),
	Refresh:  key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "refresh")),
	Recovery: key.NewBinding(key.WithKeys("ctrl+k"), key.WithHelp("ctrl+k", "recovery key")),
	Delete:   key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete")),
	Back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),

	Reveal:       key.NewBinding(key.WithKeys("r", "enter"), key.WithHelp("r", "reveal")),
	Hide:         key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "hide")),
	CopySecret:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "copy password")),
	CopyUsername: key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "copy username")),
	Visit:        key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "visit site")),

	Next:     key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
	Prev:     key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "previous field")),
	Generate: key.NewBinding(key.WithKeys("ctrl+g"), key.WithHelp("ctrl+g", "generate password")),
	Submit:   key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),

	NewKey:    key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "generate")),
	CopyKey:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "copy")),
	ExportKey: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save to file")),

	Confirm: key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "confirm")),
	Cancel:  key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", "cancel")),
}

// bindings is the help.KeyMap for one view.
type bindings []key.Binding

func (b bindings) ShortHelp() []key.Binding  { return b }
func (b bindings) FullHelp() [][]key.Binding { return [][]key.Binding{b} }

var _ help.KeyMap = bindings(nil)

func (km KeyMap) forView(v view, m Model) help.KeyMap {
	switch v {
	case detailView:
		if m.passphrase.Focused() {
			return bindings{km.Open, km.Back}
		}
		return bindings{km.Reveal, km.Hide, km.CopySecret, km.CopyUsername, km.Visit, km.Delete, km.Back}
	case formView:
		return bindings{km.Next, km.Prev, km.Generate, km.Submit, km.Back}
	case recoveryView:
		return bindings{km.NewKey, km.CopyKey, km.ExportKey, km.Back}
	default:
		if m.confirmDelete {
			return bindings{km.Confirm, km.Cancel}
		}
		if m.searching {
			return bindings{km.Open, km.Back}
		}
		return bindings{km.Up, km.Down, km.Open, km.New, km.Search, km.Refresh, km.Recovery, km.Delete, km.Quit}
	}
}
