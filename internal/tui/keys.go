package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds all key bindings for the TUI.
type keyMap struct {
	Quit      key.Binding
	Refresh   key.Binding
	Help      key.Binding
	Start     key.Binding
	Stop      key.Binding
	Pause     key.Binding
	GPU       key.Binding
	CPU       key.Binding
	Telemetry key.Binding
	Mode      key.Binding
	Dismiss   key.Binding
	Login     key.Binding
	Logout    key.Binding
	Confirm   key.Binding
	Cancel    key.Binding
}

// keys is the global key map.
var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh now"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "toggle help"),
	),
	Start: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "start mining"),
	),
	Stop: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "stop mining"),
	),
	Pause: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "pause mining"),
	),
	GPU: key.NewBinding(
		key.WithKeys("g"),
		key.WithHelp("g", "toggle GPU"),
	),
	CPU: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "toggle CPU"),
	),
	Telemetry: key.NewBinding(
		key.WithKeys("t"),
		key.WithHelp("t", "toggle telemetry"),
	),
	Mode: key.NewBinding(
		key.WithKeys("m"),
		key.WithHelp("m", "cycle mode"),
	),
	Dismiss: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "dismiss error"),
	),
	Login: key.NewBinding(
		key.WithKeys("l"),
		key.WithHelp("l", "airdrop login"),
	),
	Logout: key.NewBinding(
		key.WithKeys("o"),
		key.WithHelp("o", "airdrop logout"),
	),
	Confirm: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "confirm"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("n", "esc"),
		key.WithHelp("n/esc", "cancel"),
	),
}

// helpText is the full help string displayed in the footer when help is toggled on.
const helpText = "s: start  x: stop  p: pause  m: mode  c: CPU  g: GPU  t: telemetry  r: refresh  e: dismiss error  l/o: login/logout  q: quit  ?: toggle help"
