// Package retry implements the bounded, linearly delayed automatic retry policy.
//
// State is a plain value. Every transition returns the next State together with
// the effects the caller must carry out, so the policy holds no timers or
// callbacks of its own.
package retry

import (
	"time"

	"github.com/lectern-player/lectern/fault"
)

const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = time.Second
)

// Config tunes the policy.
type Config struct {
	MaxAttempts int
	BaseDelay   time.Duration
	AutoRetry   bool
}

// DefaultConfig returns three attempts at 1s, 2s and 3s with auto retry on.
func DefaultConfig() Config {
	return Config{MaxAttempts: DefaultMaxAttempts, BaseDelay: DefaultBaseDelay, AutoRetry: true}
}

// Session tracks one run of consecutive failures.
type Session struct {
	Attempt     int
	MaxAttempts int
	NextDelay   time.Duration
}

// Effect is an instruction produced by a transition.
type Effect interface{ effect() }

// Incident marks the first fault of a new failure run.
type Incident struct{ Err *fault.Error }

// Schedule asks for a timer that calls State.Fire after Delay.
type Schedule struct {
	Attempt int
	Delay   time.Duration
}

// Cancel asks for the pending timer to be stopped.
type Cancel struct{}

// Reload asks for the last source to be loaded again.
type Reload struct{ Attempt int }

// Notify asks for the error to be surfaced to the caller.
type Notify struct{ Err *fault.Error }

func (Incident) effect() {}
func (Schedule) effect() {}
func (Cancel) effect()   {}
func (Reload) effect()   {}
func (Notify) effect()   {}

// State is the retry policy state of one player session.
type State struct {
	cfg       Config
	session   *Session
	last      *fault.Error
	pending   bool
	exhausted bool
	offline   bool
}

// New returns an idle policy. Non-positive limits fall back to the defaults.
func New(cfg Config) State {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = DefaultBaseDelay
	}
	return State{cfg: cfg}
}

// Delay returns the wait before attempt n.
func (s State) Delay(n int) time.Duration {
	return time.Duration(n) * s.cfg.BaseDelay
}

func (s State) Config() Config { return s.cfg }

// Session returns a copy of the active session.
func (s State) Session() (Session, bool) {
	if s.session == nil {
		return Session{}, false
	}
	return *s.session, true
}

func (s State) Exhausted() bool { return s.exhausted }
func (s State) Pending() bool   { return s.pending }
func (s State) Last() *fault.Error {
	return s.last
}

func (s State) withSession(sess Session) State {
	s.session = &sess
	return s
}

// Reset discards the session. A new load starts from scratch.
func (s State) Reset() (State, []Effect) {
	var effects []Effect
	if s.pending {
		effects = append(effects, Cancel{})
	}
	return State{cfg: s.cfg, offline: s.offline}, effects
}

// Fail records a classified fault.
func (s State) Fail(err *fault.Error) (State, []Effect) {
	if s.exhausted {
		return s, nil
	}

	var effects []Effect
	if s.session == nil {
		effects = append(effects, Incident{Err: err})
	}
	s.last = err

	if !err.Retryable || !s.cfg.AutoRetry {
		if s.pending {
			effects = append(effects, Cancel{})
			s.pending = false
		}
		return s, append(effects, Notify{Err: err})
	}

	sess := Session{MaxAttempts: s.cfg.MaxAttempts}
	if s.session != nil {
		sess = *s.session
	}

	if sess.Attempt >= sess.MaxAttempts {
		s.exhausted = true
		s.pending = false
		return s.withSession(sess), append(effects, Notify{Err: fault.Exhausted(err, sess.MaxAttempts)})
	}

	next := sess.Attempt + 1
	sess.NextDelay = s.Delay(next)
	s.pending = true

	return s.withSession(sess), append(effects, Schedule{Attempt: next, Delay: sess.NextDelay})
}

// Fire handles the retry timer. While offline the attempt is held back until
// connectivity returns.
func (s State) Fire() (State, []Effect) {
	if !s.pending || s.offline {
		return s, nil
	}
	return s.attempt()
}

// Online records connectivity changes. Regaining it while a network fault is
// pending retries at once.
func (s State) Online(online bool) (State, []Effect) {
	s.offline = !online
	if !online || !s.pending || s.last == nil || s.last.Kind != fault.KindNetwork {
		return s, nil
	}

	s, effects := s.attempt()
	return s, append([]Effect{Cancel{}}, effects...)
}

// Manual handles an explicit retry request. After exhaustion it is a no-op.
func (s State) Manual() (State, []Effect) {
	if s.exhausted {
		return s, nil
	}

	sess := Session{MaxAttempts: s.cfg.MaxAttempts}
	if s.session != nil {
		sess = *s.session
	}
	if sess.Attempt >= sess.MaxAttempts {
		return s, nil
	}

	var effects []Effect
	if s.pending {
		effects = append(effects, Cancel{})
	}

	s = s.withSession(sess)
	s.pending = true
	s, more := s.attempt()
	return s, append(effects, more...)
}

// Recovered ends the session after the source became ready again.
func (s State) Recovered() State {
	if s.exhausted {
		return s
	}
	return State{cfg: s.cfg, offline: s.offline}
}

func (s State) attempt() (State, []Effect) {
	sess := *s.session
	sess.Attempt++
	sess.NextDelay = s.Delay(sess.Attempt + 1)
	s.pending = false
	return s.withSession(sess), []Effect{Reload{Attempt: sess.Attempt}}
}
