// Package playertest provides an in-memory player.Element for tests.
package playertest

import (
	"sync"

	"github.com/lectern-player/lectern/fault"
	"github.com/lectern-player/lectern/player"
)

// Element records every command and lets tests emit native events.
type Element struct {
	player.Emitter

	mu sync.Mutex

	Adaptive bool
	// LoadErr, when set, is returned by Load.
	LoadErr error

	Loads      []string
	Seeks      []float64
	Plays      int
	Pauses     int
	Volume     float64
	Muted      bool
	Rate       float64
	Fullscreen bool
	Closed     bool
}

var _ player.Element = (*Element)(nil)

func New() *Element {
	return &Element{Adaptive: true, Volume: 1, Rate: 1}
}

func (e *Element) Load(url string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Loads = append(e.Loads, url)
	return e.LoadErr
}

func (e *Element) Play() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Plays++
	return nil
}

func (e *Element) Pause() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Pauses++
	return nil
}

func (e *Element) Seek(seconds float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Seeks = append(e.Seeks, seconds)
	return nil
}

func (e *Element) SetVolume(volume float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Volume = volume
	return nil
}

func (e *Element) SetMuted(muted bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Muted = muted
	return nil
}

func (e *Element) SetRate(rate float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Rate = rate
	return nil
}

func (e *Element) SetFullscreen(on bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Fullscreen = on
	return nil
}

func (e *Element) SupportsAdaptive() bool { return e.Adaptive }

func (e *Element) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Closed = true
	return nil
}

// LastLoad returns the most recently loaded URL.
func (e *Element) LastLoad() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.Loads) == 0 {
		return ""
	}
	return e.Loads[len(e.Loads)-1]
}

// LastSeek returns the most recent seek target, or -1.
func (e *Element) LastSeek() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.Seeks) == 0 {
		return -1
	}
	return e.Seeks[len(e.Seeks)-1]
}

func (e *Element) CanPlay()           { e.Emit(player.Event{Kind: player.EventCanPlay}) }
func (e *Element) Playing()           { e.Emit(player.Event{Kind: player.EventPlaying}) }
func (e *Element) Paused()            { e.Emit(player.Event{Kind: player.EventPause}) }
func (e *Element) Waiting()           { e.Emit(player.Event{Kind: player.EventWaiting}) }
func (e *Element) Seeked()            { e.Emit(player.Event{Kind: player.EventSeeked}) }
func (e *Element) Ended()             { e.Emit(player.Event{Kind: player.EventEnded}) }
func (e *Element) Time(t float64)     { e.Emit(player.Event{Kind: player.EventTimeUpdate, Time: t}) }
func (e *Element) Buffered(f float64) { e.Emit(player.Event{Kind: player.EventProgress, Buffered: f}) }

func (e *Element) Duration(d float64) {
	e.Emit(player.Event{Kind: player.EventDurationChange, Duration: d})
}

func (e *Element) Fail(code fault.Code, message string) {
	e.Emit(player.Event{Kind: player.EventError, Fault: fault.Raw{Code: code, Message: message}})
}
