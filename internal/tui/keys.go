package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings of the editor.
type KeyMap struct {
	// Navigation.
	Up       key.Binding
	Down     key.Binding
	Collapse key.Binding
	Expand   key.Binding

	// Editing. Edit starts editing the row under the cursor; while
	// editing, Commit ends the edit and appends a new entry to arrays
	// (and objects, when configured), SwitchPart moves between key and
	// value, Cancel leaves the field.
	Edit       key.Binding
	Rename     key.Binding
	Commit     key.Binding
	SwitchPart key.Binding
	Cancel     key.Binding

	// Structure.
	Append key.Binding
	Delete key.Binding
	Toggle key.Binding

	// Document.
	Save  key.Binding
	Reset key.Binding

	Help key.Binding
	Quit key.Binding
}

// DefaultKeyMap is the built-in key binding set. Vim-style navigation
// (j/k/h/l) alongside arrow keys.
var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	Collapse: key.NewBinding(
		key.WithKeys("h", "left"),
		key.WithHelp("h/←", "collapse"),
	),
	Expand: key.NewBinding(
		key.WithKeys("l", "right"),
		key.WithHelp("l/→", "expand"),
	),
	Edit: key.NewBinding(
		key.WithKeys("enter", "e"),
		key.WithHelp("enter", "edit"),
	),
	Rename: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "rename"),
	),
	Commit: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "next entry"),
	),
	SwitchPart: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "key/value"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "done"),
	),
	Append: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "add"),
	),
	Delete: key.NewBinding(
		key.WithKeys("d", "delete"),
		key.WithHelp("d", "delete"),
	),
	Toggle: key.NewBinding(
		key.WithKeys(" ", "space"),
		key.WithHelp("space", "toggle"),
	),
	Save: key.NewBinding(
		key.WithKeys("s", "ctrl+s"),
		key.WithHelp("s", "save"),
	),
	Reset: key.NewBinding(
		key.WithKeys("ctrl+r"),
		key.WithHelp("ctrl+r", "reset"),
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

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Edit, k.Append, k.Delete, k.Save, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Collapse, k.Expand},
		{k.Edit, k.Rename, k.SwitchPart, k.Cancel},
		{k.Append, k.Delete, k.Toggle},
		{k.Save, k.Reset, k.Help, k.Quit},
	}
}

// editingKeys is the help shown while a field is being edited.
type editingKeys struct{ k KeyMap }

func (e editingKeys) ShortHelp() []key.Binding {
	return []key.Binding{e.k.Commit, e.k.SwitchPart, e.k.Cancel}
}

func (e editingKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{e.ShortHelp()}
}
