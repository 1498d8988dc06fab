package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds every binding the console reacts to. Views match keys
// against it and the status bar and help overlay render from it, so a
// rebinding here shows up everywhere.
type keyMap struct {
	// list
	Up           key.Binding
	Down         key.Binding
	Open         key.Binding
	Run          key.Binding
	Refresh      key.Binding
	NewEntity    key.Binding
	NewInput     key.Binding
	NewHarmonize key.Binding
	Status       key.Binding
	Help         key.Binding
	Quit         key.Binding
	ForceQuit    key.Binding

	// forms
	Submit     key.Binding
	Cancel     key.Binding
	NextField  key.Binding
	PrevField  key.Binding
	NextChoice key.Binding
	PrevChoice key.Binding

	// quit confirmation
	Confirm key.Binding
	Deny    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑/↓", "move"),
		),
		Down: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("↓", "move down"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "open"),
		),
		Run: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "run flow"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
		NewEntity: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new entity"),
		),
		NewInput: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "new input flow"),
		),
		NewHarmonize: key.NewBinding(
			key.WithKeys("h"),
			key.WithHelp("h", "new harmonize flow"),
		),
		Status: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "hub status"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "submit"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
		NextField: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("tab", "next field"),
		),
		PrevField: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
			key.WithHelp("shift+tab", "previous field"),
		),
		NextChoice: key.NewBinding(
			key.WithKeys("right", " "),
			key.WithHelp("→", "change"),
		),
		PrevChoice: key.NewBinding(
			key.WithKeys("left"),
			key.WithHelp("←", "change"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "quit"),
		),
		Deny: key.NewBinding(
			key.WithKeys("n", "esc"),
			key.WithHelp("n", "stay"),
		),
	}
}

var keys = defaultKeyMap()

// listHelp is what the help overlay lists, in display order.
func (k keyMap) listHelp() []key.Binding {
	return []key.Binding{
		k.Up, k.Open, k.Run, k.Refresh,
		k.NewEntity, k.NewInput, k.NewHarmonize,
		k.Status, k.Help, k.Quit,
	}
}

// withHelp returns a copy of b labelled desc.
func withHelp(b key.Binding, desc string) key.Binding {
	b.SetHelp(b.Help().Key, desc)
	return b
}
