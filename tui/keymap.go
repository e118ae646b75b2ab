package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/lectern-player/lectern/color"
	"github.com/lectern-player/lectern/input"
	"github.com/lectern-player/lectern/style"
)

// keymap holds the session keys on top of the player shortcuts. The player
// bindings are read on every call so focus changes show up in the help.
type keymap struct {
	player func() input.KeyMap

	quit, forceQuit,
	retry, reload,
	quality,
	showHelp key.Binding
}

func newKeymap(player func() input.KeyMap) *keymap {
	return &keymap{
		player: player,
		quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		forceQuit: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+d"),
			key.WithHelp("ctrl+c", "quit"),
		),
		retry: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp(style.Fg(color.Orange)("r"), style.Fg(color.Orange)("retry")),
		),
		reload: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "reload"),
		),
		quality: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "change quality"),
		),
		showHelp: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k *keymap) ShortHelp() []key.Binding {
	return append(k.player().ShortHelp(), k.retry, k.quality, k.showHelp, k.quit)
}

// FullHelp implements help.KeyMap.
func (k *keymap) FullHelp() [][]key.Binding {
	return append(k.player().FullHelp(), []key.Binding{k.retry, k.reload, k.quality, k.showHelp, k.quit})
}
