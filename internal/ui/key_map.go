package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up       key.Binding
	down     key.Binding
	enter    key.Binding
	back     key.Binding
	fav      key.Binding
	genre    key.Binding
	director key.Binding
	profile  key.Binding
	quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "details")),
		back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		fav:      key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "favorite")),
		genre:    key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "genre")),
		director: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "director")),
		profile:  key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "profile")),
		quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter},
		{k.fav, k.genre, k.director},
		{k.profile, k.back, k.quit},
	}
}
