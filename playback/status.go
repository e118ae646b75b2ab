package playback

// Status is the playback status of a session. Exactly one is active at a time.
type Status int

const (
	Idle Status = iota
	Loading
	Ready
	Playing
	Paused
	Buffering
	Ended
	Errored
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	case Buffering:
		return "buffering"
	case Ended:
		return "ended"
	case Errored:
		return "errored"
	default:
		return "unknown"
	}
}

// transitions lists every allowed status change. Anything else is rejected.
var transitions = map[Status][]Status{
	Idle:      {Loading, Errored},
	Loading:   {Ready, Errored},
	Ready:     {Playing, Paused, Buffering, Ended, Loading, Errored},
	Playing:   {Paused, Buffering, Ended, Loading, Errored},
	Paused:    {Playing, Buffering, Ended, Loading, Errored},
	Buffering: {Playing, Paused, Ended, Loading, Errored},
	Ended:     {Playing, Paused, Loading},
	Errored:   {Loading},
}

// CanTransition reports whether from may move to to.
func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// accepts reports whether s has bound media that intents may act on.
func (s Status) accepts() bool {
	switch s {
	case Idle, Loading, Errored:
		return false
	default:
		return true
	}
}

// active reports whether s is moving media over the network.
func (s Status) active() bool {
	return s == Loading || s == Playing || s == Buffering
}
