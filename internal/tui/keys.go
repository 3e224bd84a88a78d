package tui

import "github.com/charmbracelet/bubbles/key"

// Raw key strings used where a binding would be overkill.
const (
	keyEnter = "enter"
	keyEsc   = "esc"
	keyUp    = "up"
	keyDown  = "down"
	keyCtrlC = "ctrl+c"
)

// KeyMap holds the comparison view bindings. It implements help.KeyMap.
type KeyMap struct {
	PickProfile1 key.Binding
	PickProfile2 key.Binding
	Compare      key.Binding
	Filter       key.Binding
	NextTab      key.Binding
	PrevTab      key.Binding
	Toggle       key.Binding
	Dismiss      key.Binding
	Help         key.Binding
	Quit         key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		PickProfile1: key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "profile 1")),
		PickProfile2: key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "profile 2")),
		Compare:      key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "compare")),
		Filter:       key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "all/differences")),
		NextTab:      key.NewBinding(key.WithKeys("tab", "right", "l"), key.WithHelp("tab/→", "next tab")),
		PrevTab:      key.NewBinding(key.WithKeys("shift+tab", "left", "h"), key.WithHelp("shift+tab/←", "prev tab")),
		Toggle:       key.NewBinding(key.WithKeys(keyEnter, " "), key.WithHelp("enter", "expand")),
		Dismiss:      key.NewBinding(key.WithKeys(keyEsc), key.WithHelp("esc", "dismiss")),
		Help:         key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:         key.NewBinding(key.WithKeys("q", keyCtrlC), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.PickProfile1, k.PickProfile2, k.Compare, k.Filter, k.Toggle, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.PickProfile1, k.PickProfile2, k.Compare},
		{k.NextTab, k.PrevTab, k.Toggle, k.Filter},
		{k.Dismiss, k.Help, k.Quit},
	}
}
