package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/lectern-player/lectern/icon"
	"github.com/lectern-player/lectern/input"
	"github.com/lectern-player/lectern/internal/ui"
	"github.com/lectern-player/lectern/playback"
	"github.com/samber/lo"
)

type model struct {
	player  Player
	options *Options
	input   *input.Controller
	keymap  *keymap

	// components
	spinnerC  spinner.Model
	progressC progress.Model
	helpC     help.Model
	notifier  *ui.Notifier

	// last status seen through a state callback
	status   playback.Status
	complete bool

	width, height int
}

func newModel(player Player, options *Options) *model {
	in := input.New(player, options.SeekStep, options.VolumeStep)

	s := spinner.New()
	s.Spinner = spinner.Dot

	return &model{
		player:    player,
		options:   options,
		input:     in,
		keymap:    newKeymap(in.KeyMap),
		spinnerC:  s,
		progressC: progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		helpC:     help.New(),
		notifier:  &ui.Notifier{},
		status:    player.State().Status,
	}
}

func (m *model) Init() tea.Cmd {
	return m.spinnerC.Tick
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	if cmd := m.notifier.Update(msg); cmd != nil {
		cmds = append(cmds, cmd)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinnerC, cmd = m.spinnerC.Update(msg)
		cmds = append(cmds, cmd)
	case stateMsg:
		cmds = append(cmds, m.onState(msg.state))
	case readyMsg:
		m.complete = false
	case completeMsg:
		m.complete = true
		cmds = append(cmds, ui.Notify(icon.Get(icon.Success)+" lecture complete"))
	case faultMsg:
		m.status = playback.Errored
	case tea.FocusMsg, tea.BlurMsg:
		m.input.Update(msg)
	case tea.KeyMsg:
		if cmd, handled := m.onKey(msg); handled {
			return m, tea.Batch(append(cmds, cmd)...)
		}
		m.input.Update(msg)
	}

	m.keymap.retry.SetEnabled(m.player.State().Status == playback.Errored)
	return m, tea.Batch(cmds...)
}

func (m *model) onKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keymap.forceQuit), key.Matches(msg, m.keymap.quit):
		return tea.Quit, true
	case key.Matches(msg, m.keymap.showHelp):
		m.helpC.ShowAll = !m.helpC.ShowAll
		return nil, true
	case key.Matches(msg, m.keymap.retry):
		m.player.Retry()
		return nil, true
	case key.Matches(msg, m.keymap.reload):
		m.player.Reload()
		return ui.Notify(icon.Get(icon.Retry) + " reloading"), true
	case key.Matches(msg, m.keymap.quality):
		next, ok := m.nextQuality()
		if !ok {
			return nil, true
		}
		m.player.SetQuality(next)
		return ui.Notify("quality: " + next), true
	}
	return nil, false
}

func (m *model) onState(s playback.State) tea.Cmd {
	prev := m.status
	m.status = s.Status

	switch {
	case prev == playback.Errored && s.Status == playback.Loading:
		if attempt := m.player.State().Attempt; attempt > 0 {
			return ui.Notify(fmt.Sprintf("%s retrying (attempt %d)", icon.Get(icon.Retry), attempt))
		}
	case s.Status == playback.Buffering:
		return ui.Notify(icon.Get(icon.Buffering) + " buffering")
	}
	return nil
}

// nextQuality returns the quality after the current one, wrapping around.
func (m *model) nextQuality() (string, bool) {
	qualities := m.options.Qualities
	if len(qualities) < 2 {
		return "", false
	}

	_, i, found := lo.FindIndexOf(qualities, func(q string) bool {
		return q == m.player.State().Quality
	})
	if !found {
		return qualities[0], true
	}
	return qualities[(i+1)%len(qualities)], true
}

func (m *model) resize(width, height int) {
	m.width, m.height = width, height
	m.helpC.Width = width

	const padding = 4
	m.progressC.Width = max(width-padding*2-20, 10)
}
