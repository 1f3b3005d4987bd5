package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up       key.Binding
	down     key.Binding
	enter    key.Binding
	play     key.Binding
	toggle   key.Binding
	next     key.Binding
	previous key.Binding
	back     key.Binding
	login    key.Binding
	logout   key.Binding
	retry    key.Binding
	quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		play:     key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "start playing")),
		toggle:   key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "play/pause")),
		next:     key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next")),
		previous: key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "previous")),
		back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back to playlists")),
		login:    key.NewBinding(key.WithKeys("l", "enter"), key.WithHelp("l", "connect to spotify")),
		logout:   key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "logout")),
		retry:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "try again")),
		quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter, k.play},
		{k.toggle, k.next, k.previous, k.back},
		{k.login, k.logout, k.retry, k.quit},
	}
}
