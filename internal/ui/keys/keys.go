package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds every binding used by the views
type KeyMap struct {
	Quit   key.Binding
	Back   key.Binding
	Enter  key.Binding
	Tab    key.Binding
	Up     key.Binding
	Down   key.Binding
	Left   key.Binding
	Right  key.Binding
	New    key.Binding
	Edit   key.Binding
	Delete key.Binding
	Help   key.Binding

	ToggleView key.Binding
	Grab       key.Binding

	// Status buttons
	NotStarted key.Binding
	InProgress key.Binding
	Completed  key.Binding
}

// DefaultKeyMap returns the default bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("↵", "select"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "left"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "right"),
		),
		New: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		ToggleView: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "timeline/board"),
		),
		Grab: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "grab/drop"),
		),
		NotStarted: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "not started"),
		),
		InProgress: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "in progress"),
		),
		Completed: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "completed"),
		),
	}
}
