// Package tui is the terminal front end of a playback session.
package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lectern-player/lectern/fault"
	"github.com/lectern-player/lectern/input"
	"github.com/lectern-player/lectern/playback"
	"github.com/lectern-player/lectern/util"
)

// Player is the part of playback.Controller the interface drives.
type Player interface {
	input.Target

	State() playback.State
	Retry()
	Reload()
	SetQuality(quality string)
}

// Options configure the terminal front end.
type Options struct {
	Title string
	// Qualities are cycled through by the quality key, in order.
	Qualities []string

	SeekStep   float64
	VolumeStep float64
}

// Run blocks until the viewer quits. The caller disposes the player afterwards.
func Run(player Player, bridge *Bridge, options *Options) error {
	m := newModel(player, options)
	if w, h, err := util.TerminalSize(); err == nil {
		m.resize(w, h)
	}

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithReportFocus())

	bridge.attach(p)
	defer bridge.detach()

	_, err := p.Run()
	return err
}

// Bridge forwards controller callbacks into the running program.
// Callbacks fired before Run or after it returns are dropped.
type Bridge struct {
	mu      sync.Mutex
	program *tea.Program
}

func NewBridge() *Bridge {
	return &Bridge{}
}

func (b *Bridge) attach(p *tea.Program) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.program = p
}

func (b *Bridge) detach() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.program = nil
}

func (b *Bridge) send(msg tea.Msg) {
	b.mu.Lock()
	p := b.program
	b.mu.Unlock()

	if p != nil {
		p.Send(msg)
	}
}

// Callbacks returns controller callbacks that refresh the interface.
func (b *Bridge) Callbacks() playback.Callbacks {
	return playback.Callbacks{
		OnReady:       func() { b.send(readyMsg{}) },
		OnComplete:    func() { b.send(completeMsg{}) },
		OnError:       func(err *fault.Error) { b.send(faultMsg{err: err}) },
		OnStateChange: func(s playback.State) { b.send(stateMsg{state: s}) },
	}
}

type (
	readyMsg    struct{}
	completeMsg struct{}
	faultMsg    struct{ err *fault.Error }
	stateMsg    struct{ state playback.State }
)
