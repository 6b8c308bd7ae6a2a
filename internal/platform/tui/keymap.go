package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// MenuAction represents a menu-specific action derived from input.
type MenuAction int

const (
	MenuActionNone MenuAction = iota
	MenuActionUp
	MenuActionDown
	MenuActionPrev
	MenuActionNext
	MenuActionSelect
	MenuActionBack
	MenuActionQuit
)

// MapKeyToMenuAction translates a key to a menu action.
func MapKeyToMenuAction(msg tea.KeyMsg) MenuAction {
	switch msg.String() {
	case "ctrl+c", "q":
		return MenuActionQuit
	case "w", "up", "k": // vim-style k for up
		return MenuActionUp
	case "s", "down", "j": // vim-style j for down
		return MenuActionDown
	case "a", "left", "h":
		return MenuActionPrev
	case "d", "right", "l":
		return MenuActionNext
	case "enter", " ":
		return MenuActionSelect
	case "b", "esc":
		return MenuActionBack
	}
	return MenuActionNone
}

// FightKeyMap defines the non-game keys on the fight screen. Everything
// else goes to the controller.
type FightKeyMap struct {
	Quit    key.Binding
	Back    key.Binding
	Moves   key.Binding
	Flip    key.Binding
	Restart key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k FightKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Moves, k.Flip, k.Restart, k.Back, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k FightKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Moves, k.Flip, k.Restart},
		{k.Back, k.Quit},
	}
}

// DefaultFightKeyMap returns default key bindings.
func DefaultFightKeyMap() FightKeyMap {
	return FightKeyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "menu"),
		),
		Moves: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "moves"),
		),
		Flip: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "flip facing"),
		),
		Restart: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "rematch"),
		),
	}
}

// StatsKeyMap defines the key bindings for the statistics screen.
type StatsKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	Back     key.Binding
	Quit     key.Binding
	NextChar key.Binding
	PrevChar key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k StatsKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.NextChar, k.PrevChar, k.Back}
}

// FullHelp returns key bindings for the full help view.
func (k StatsKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextChar, k.PrevChar},
		{k.Back, k.Quit},
	}
}

// DefaultStatsKeyMap returns default key bindings.
func DefaultStatsKeyMap() StatsKeyMap {
	return StatsKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("left/h", "prev character"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("right/l", "next character"),
		),
		NextChar: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next character"),
		),
		PrevChar: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("S-tab", "prev character"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "b"),
			key.WithHelp("esc/b", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}
