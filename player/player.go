// Package player defines the native media element the playback engine drives.
// The shipped backend targets mpv through its JSON-IPC interface.
package player

import (
	"sync"

	"github.com/lectern-player/lectern/fault"
)

// Element is a native media engine instance. Exactly one controller owns it.
type Element interface {
	// Load binds the element to url and starts fetching it.
	Load(url string) error

	Play() error
	Pause() error

	// Seek moves playback to an absolute position in seconds.
	Seek(seconds float64) error

	// SetVolume sets the output volume in [0, 1].
	SetVolume(volume float64) error
	SetMuted(muted bool) error
	SetRate(rate float64) error
	SetFullscreen(on bool) error

	// SupportsAdaptive reports whether adaptive (HLS) manifests can be played.
	SupportsAdaptive() bool

	// On registers fn for events of kind and returns its release function.
	On(kind EventKind, fn Listener) (release func())

	// Close terminates the engine and releases every system resource.
	Close() error
}

// EventKind enumerates native media events.
type EventKind int

const (
	EventCanPlay EventKind = iota
	EventPlaying
	EventPause
	EventWaiting
	EventTimeUpdate
	EventDurationChange
	EventProgress
	EventSeeked
	EventEnded
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventCanPlay:
		return "canplay"
	case EventPlaying:
		return "playing"
	case EventPause:
		return "pause"
	case EventWaiting:
		return "waiting"
	case EventTimeUpdate:
		return "timeupdate"
	case EventDurationChange:
		return "durationchange"
	case EventProgress:
		return "progress"
	case EventSeeked:
		return "seeked"
	case EventEnded:
		return "ended"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is a native media event. Only the fields relevant to Kind are set.
type Event struct {
	Kind     EventKind
	Time     float64
	Duration float64
	// Buffered is the loaded fraction of the media in [0, 1].
	Buffered float64
	Fault    fault.Raw
}

// Listener receives native events. It may be called from any goroutine.
type Listener func(Event)

// Emitter is a listener registry that backends embed to implement Element.On.
type Emitter struct {
	mu        sync.Mutex
	next      int
	listeners map[EventKind]map[int]Listener
}

// On registers fn and returns a release function that is safe to call twice.
func (e *Emitter) On(kind EventKind, fn Listener) func() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.listeners == nil {
		e.listeners = make(map[EventKind]map[int]Listener)
	}
	if e.listeners[kind] == nil {
		e.listeners[kind] = make(map[int]Listener)
	}

	id := e.next
	e.next++
	e.listeners[kind][id] = fn

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.listeners[kind], id)
	}
}

// Emit delivers ev to every listener registered for its kind.
func (e *Emitter) Emit(ev Event) {
	e.mu.Lock()
	fns := make([]Listener, 0, len(e.listeners[ev.Kind]))
	for _, fn := range e.listeners[ev.Kind] {
		fns = append(fns, fn)
	}
	e.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// Listeners counts the registered listeners across all kinds.
func (e *Emitter) Listeners() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	n := 0
	for _, m := range e.listeners {
		n += len(m)
	}
	return n
}
