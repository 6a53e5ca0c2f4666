package overlay

import "charm.land/bubbles/v2/key"

// KeyMap defines the key bindings handled by the overlay.
type KeyMap struct {
	Dismiss  key.Binding
	Focus    key.Binding
	Activate key.Binding
	Close    key.Binding
	Pin      key.Binding
	Theme    key.Binding
	Copy     key.Binding
	Speak    key.Binding
	Stop     key.Binding
	Refresh  key.Binding
	FontDown key.Binding
	FontUp   key.Binding
}

// DefaultKeyMap returns the default overlay key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Dismiss: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("Esc", "dismiss"),
		),
		Focus: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("Tab", "focus explain"),
		),
		Activate: key.NewBinding(
			key.WithKeys("enter", "space"),
			key.WithHelp("Enter", "explain"),
		),
		Close: key.NewBinding(
			key.WithKeys("ctrl+w"),
			key.WithHelp("Ctrl+w", "close"),
		),
		Pin: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "pin"),
		),
		Theme: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "theme"),
		),
		Copy: key.NewBinding(
			key.WithKeys("c", "y"),
			key.WithHelp("c", "copy"),
		),
		Speak: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "speak/pause"),
		),
		Stop: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "stop"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		FontDown: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "smaller"),
		),
		FontUp: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "larger"),
		),
	}
}

// PanelHelp lists the bindings active while a Panel is open.
func (k KeyMap) PanelHelp() []key.Binding {
	return []key.Binding{k.Dismiss, k.Copy, k.Speak, k.Stop, k.Refresh, k.FontDown, k.FontUp, k.Pin, k.Theme}
}
