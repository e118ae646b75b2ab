package input

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap holds the player shortcuts.
type KeyMap struct {
	TogglePlay,
	SeekBack, SeekForward,
	VolumeUp, VolumeDown,
	Mute, Fullscreen,
	Decile key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		TogglePlay: key.NewBinding(
			key.WithKeys(" ", "space", "k"),
			key.WithHelp("space/k", "play/pause"),
		),
		SeekBack: key.NewBinding(
			key.WithKeys("left"),
			key.WithHelp("←", "rewind"),
		),
		SeekForward: key.NewBinding(
			key.WithKeys("right"),
			key.WithHelp("→", "forward"),
		),
		VolumeUp: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑", "volume up"),
		),
		VolumeDown: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("↓", "volume down"),
		),
		Mute: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "mute"),
		),
		Fullscreen: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "fullscreen"),
		),
		Decile: key.NewBinding(
			key.WithKeys("0", "1", "2", "3", "4", "5", "6", "7", "8", "9"),
			key.WithHelp("0-9", "jump to 0%-90%"),
		),
	}
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.TogglePlay, k.SeekBack, k.SeekForward, k.Mute}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.TogglePlay, k.SeekBack, k.SeekForward, k.Decile},
		{k.VolumeUp, k.VolumeDown, k.Mute, k.Fullscreen},
	}
}

// SetEnabled turns every binding on or off, which also hides them from help.
func (k *KeyMap) SetEnabled(enabled bool) {
	for _, b := range []*key.Binding{
		&k.TogglePlay,
		&k.SeekBack, &k.SeekForward,
		&k.VolumeUp, &k.VolumeDown,
		&k.Mute, &k.Fullscreen,
		&k.Decile,
	} {
		b.SetEnabled(enabled)
	}
}
