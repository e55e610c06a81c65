package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	PlayPause  key.Binding
	Stop       key.Binding
	Activate   key.Binding
	PrevWord   key.Binding
	NextWord   key.Binding
	SpeedUp    key.Binding
	SpeedDown  key.Binding
	ViewToggle key.Binding
	SkipToggle key.Binding
	Help       key.Binding
	Quit       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		PlayPause: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "play/pause"),
		),
		Stop: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "stop"),
		),
		Activate: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "read from selected word"),
		),
		PrevWord: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "previous word"),
		),
		NextWord: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "next word"),
		),
		SpeedUp: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "faster"),
		),
		SpeedDown: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "slower"),
		),
		ViewToggle: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "text/image view"),
		),
		SkipToggle: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "skip headers/footers"),
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

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.PlayPause, k.Activate, k.SpeedUp, k.SpeedDown, k.ViewToggle, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.PlayPause, k.Stop, k.Activate},
		{k.PrevWord, k.NextWord, k.SpeedUp, k.SpeedDown},
		{k.ViewToggle, k.SkipToggle, k.Help, k.Quit},
	}
}
