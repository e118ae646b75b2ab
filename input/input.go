// Package input translates keyboard shortcuts into playback intents.
package input

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	DefaultSeekStep   = 10.0
	DefaultVolumeStep = 0.1
)

// Target receives playback intents. playback.Controller implements it.
type Target interface {
	TogglePlay()
	SeekBy(delta float64)
	SeekFraction(f float64)
	AdjustVolume(delta float64)
	ToggleMute()
	ToggleFullscreen()
}

// Controller maps key presses to intents while the player has focus.
type Controller struct {
	target     Target
	keys       KeyMap
	focused    bool
	seekStep   float64
	volumeStep float64
}

// New returns a focused controller. Non-positive steps fall back to 10s and 10%.
func New(target Target, seekStep, volumeStep float64) *Controller {
	if seekStep <= 0 {
		seekStep = DefaultSeekStep
	}
	if volumeStep <= 0 {
		volumeStep = DefaultVolumeStep
	}
	return &Controller{
		target:     target,
		keys:       DefaultKeyMap(),
		focused:    true,
		seekStep:   seekStep,
		volumeStep: volumeStep,
	}
}

func (c *Controller) KeyMap() KeyMap {
	return c.keys
}

func (c *Controller) Focused() bool {
	return c.focused
}

func (c *Controller) Focus() {
	c.focused = true
	c.keys.SetEnabled(true)
}

func (c *Controller) Blur() {
	c.focused = false
	c.keys.SetEnabled(false)
}

// Update handles focus changes and key presses. It reports whether msg was consumed.
func (c *Controller) Update(msg tea.Msg) bool {
	switch msg := msg.(type) {
	case tea.FocusMsg:
		c.Focus()
		return true
	case tea.BlurMsg:
		c.Blur()
		return true
	case tea.KeyMsg:
		return c.HandleKey(msg)
	}
	return false
}

// HandleKey issues the intent bound to msg. Keys are ignored without focus.
func (c *Controller) HandleKey(msg tea.KeyMsg) bool {
	if !c.focused {
		return false
	}

	switch {
	case key.Matches(msg, c.keys.TogglePlay):
		c.target.TogglePlay()
	case key.Matches(msg, c.keys.SeekBack):
		c.target.SeekBy(-c.seekStep)
	case key.Matches(msg, c.keys.SeekForward):
		c.target.SeekBy(c.seekStep)
	case key.Matches(msg, c.keys.VolumeUp):
		c.target.AdjustVolume(c.volumeStep)
	case key.Matches(msg, c.keys.VolumeDown):
		c.target.AdjustVolume(-c.volumeStep)
	case key.Matches(msg, c.keys.Mute):
		c.target.ToggleMute()
	case key.Matches(msg, c.keys.Fullscreen):
		c.target.ToggleFullscreen()
	case key.Matches(msg, c.keys.Decile):
		digit := msg.String()[0] - '0'
		c.target.SeekFraction(float64(digit) / 10)
	default:
		return false
	}
	return true
}
