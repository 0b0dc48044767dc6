package tui

import "github.com/charmbracelet/bubbles/key"

// tableKeyMap defines key bindings while the row table has focus
type tableKeyMap struct {
	Up         key.Binding
	Down       key.Binding
	Name       key.Binding
	Deselect   key.Binding
	Ports      key.Binding
	Disconnect key.Binding
	Delete     key.Binding
	Save       key.Binding
	Help       key.Binding
	Quit       key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k tableKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Name, k.Ports, k.Disconnect, k.Delete, k.Save, k.Help, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k tableKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Name, k.Deselect},
		{k.Ports, k.Disconnect},
		{k.Delete, k.Save},
		{k.Help, k.Quit},
	}
}

// inputKeyMap defines key bindings while the name input has focus
type inputKeyMap struct {
	Commit key.Binding
	Up     key.Binding
	Down   key.Binding
	Back   key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k inputKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Commit, k.Up, k.Down, k.Back}
}

// FullHelp returns keybindings for the expanded help view
func (k inputKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Commit, k.Up, k.Down, k.Back}}
}

// portKeyMap defines key bindings for the port picker
type portKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Connect key.Binding
	Rescan  key.Binding
	Back    key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k portKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Connect, k.Rescan, k.Back}
}

// FullHelp returns keybindings for the expanded help view
func (k portKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Connect},
		{k.Rescan, k.Back},
	}
}

// noticeKeyMap defines key bindings while a notice is shown
type noticeKeyMap struct {
	Dismiss key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k noticeKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Dismiss}
}

// FullHelp returns keybindings for the expanded help view
func (k noticeKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Dismiss}}
}

func newTableKeyMap() tableKeyMap {
	return tableKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "move down"),
		),
		Name: key.NewBinding(
			key.WithKeys("enter", "tab", "n"),
			key.WithHelp("enter", "name row"),
		),
		Deselect: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "deselect"),
		),
		Ports: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "ports"),
		),
		Disconnect: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "disconnect"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d", "delete"),
			key.WithHelp("d", "delete row"),
		),
		Save: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "save"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "more"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
	}
}

func newInputKeyMap() inputKeyMap {
	return inputKeyMap{
		Commit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "add name"),
		),
		Up: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑", "previous row"),
		),
		Down: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("↓", "next row"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "tab"),
			key.WithHelp("esc", "back to table"),
		),
	}
}

func newPortKeyMap() portKeyMap {
	return portKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "move down"),
		),
		Connect: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "connect"),
		),
		Rescan: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "rescan"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "q"),
			key.WithHelp("esc", "back"),
		),
	}
}

func newNoticeKeyMap() noticeKeyMap {
	return noticeKeyMap{
		Dismiss: key.NewBinding(
			key.WithKeys("enter", "esc", " "),
			key.WithHelp("enter", "ok"),
		),
	}
}
