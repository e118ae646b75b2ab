// Package playback is the state machine wrapping the native media element.
//
// A Controller owns its element, timers and subscriptions. Every mutation runs
// on its Executor, so callbacks and element events never race each other.
package playback

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/lectern-player/lectern/analytics"
	"github.com/lectern-player/lectern/fault"
	"github.com/lectern-player/lectern/media"
	"github.com/lectern-player/lectern/network"
	"github.com/lectern-player/lectern/player"
	"github.com/lectern-player/lectern/retry"
	"github.com/samber/mo"
)

var ErrEmptySource = errors.New("source has no url")

// State is a snapshot of the session's playback state.
type State struct {
	Status           Status
	CurrentTime      float64
	Duration         float64
	BufferedFraction float64
	Volume           float64
	Muted            bool
	PlaybackRate     float64
	Quality          string
	Fullscreen       bool
	Err              *fault.Error

	// Attempt is the retry attempt of the current failure run, zero when healthy.
	Attempt int
	// RetryPending is set while an automatic retry is scheduled.
	RetryPending bool
}

// Progress is the played and loaded fraction of the media, both in [0, 1].
type Progress struct {
	Played float64
	Loaded float64
}

// Callbacks are invoked on the controller's executor. Nil callbacks are skipped.
type Callbacks struct {
	OnReady          func()
	OnTimeUpdate     func(t float64)
	OnDurationChange func(d float64)
	OnProgress       func(Progress)
	OnComplete       func()
	OnError          func(*fault.Error)
	OnStateChange    func(State)
}

// Options configure a Controller. Zero values fall back to sane defaults.
type Options struct {
	VideoID         string
	InitialPosition float64
	Autoplay        bool
	Quality         string
	PreferAdaptive  bool

	Retry           retry.Config
	PersistInterval time.Duration

	// Store receives resume positions. Nil disables persistence.
	Store PositionStore
	// Sink receives the analytics snapshot on Dispose.
	Sink analytics.Sink
	// Monitor feeds connectivity changes. Nil disables them.
	Monitor *network.Monitor
	// Probe validates source reachability after an unexplained fault.
	Probe func(ctx context.Context, url string) (fault.Raw, bool)

	// Executor serializes all state changes. When nil the controller runs
	// its own Loop and closes it on Dispose.
	Executor  Executor
	Scheduler Scheduler
	Now       func() time.Time

	Callbacks Callbacks
}

// restorePoint is where a reload should resume and whether it was playing.
type restorePoint struct {
	time float64
	play bool
}

// Controller drives one player.Element for one session.
type Controller struct {
	el    player.Element
	opts  Options
	exec  Executor
	own   *Loop
	sched Scheduler
	cb    Callbacks

	// guarded by mu, read by State and Analytics
	mu       sync.Mutex
	snapshot State
	stats    analytics.Snapshot

	// owned by the executor
	state      State
	candidates []media.Source
	source     mo.Option[media.Source]
	restore    mo.Option[restorePoint]
	retry      retry.State
	retryTimer Timer
	retryGen   int
	tickTimer  Timer
	tickGen    int
	persister  *Persister
	agg        *analytics.Aggregator
	subs       []func()
	loadGen    int
	probing    bool
	completed  bool
	disposed   bool

	ctx    context.Context
	cancel context.CancelFunc
}

// New wraps el. The controller takes ownership of el and closes it on Dispose.
func New(el player.Element, opts Options) *Controller {
	var own *Loop
	if opts.Executor == nil {
		own = NewLoop()
		opts.Executor = own
	}
	if opts.Scheduler == nil {
		opts.Scheduler = TimeScheduler{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Quality == "" {
		opts.Quality = media.QualityAuto
	}

	ctx, cancel := context.WithCancel(context.Background())

	c := &Controller{
		el:     el,
		opts:   opts,
		exec:   opts.Executor,
		own:    own,
		sched:  opts.Scheduler,
		cb:     opts.Callbacks,
		retry:  retry.New(opts.Retry),
		agg:    analytics.New(opts.VideoID, opts.Now()),
		ctx:    ctx,
		cancel: cancel,
		state: State{
			Status:       Idle,
			Volume:       1,
			PlaybackRate: 1,
			Quality:      opts.Quality,
		},
	}

	c.persister = NewPersister(opts.Store, opts.VideoID, opts.InitialPosition, opts.PersistInterval, opts.Now)

	for _, kind := range []player.EventKind{
		player.EventCanPlay,
		player.EventPlaying,
		player.EventPause,
		player.EventWaiting,
		player.EventTimeUpdate,
		player.EventDurationChange,
		player.EventProgress,
		player.EventSeeked,
		player.EventEnded,
		player.EventError,
	} {
		c.subs = append(c.subs, el.On(kind, func(ev player.Event) {
			c.do(func() { c.handle(ev) })
		}))
	}

	if opts.Monitor != nil {
		if !opts.Monitor.Online() {
			c.retry, _ = c.retry.Online(false)
		}
		c.subs = append(c.subs, opts.Monitor.Subscribe(func(online bool) {
			c.do(func() { c.connectivity(online) })
		}))
	}

	c.publish()
	return c
}

// do runs fn on the executor unless the controller was disposed.
func (c *Controller) do(fn func()) {
	c.exec.Post(func() {
		if c.disposed {
			return
		}
		fn()
		c.publish()
	})
}

func (c *Controller) publish() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshot = c.state
	c.snapshot.Attempt = 0
	if sess, ok := c.retry.Session(); ok {
		c.snapshot.Attempt = sess.Attempt
	}
	c.snapshot.RetryPending = c.retry.Pending()
	c.stats = c.agg.Snapshot()
}

// State returns the latest published state. Safe from any goroutine.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot
}

// Analytics returns the latest published analytics snapshot.
func (c *Controller) Analytics() analytics.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// ResumePosition returns the position the session will resume from.
func (c *Controller) ResumePosition() float64 {
	return c.persister.Initial()
}

// Load binds the element to src, starting a fresh retry session.
func (c *Controller) Load(src media.Source) error {
	if src.URL == "" {
		return ErrEmptySource
	}
	c.do(func() {
		c.restore = mo.None[restorePoint]()
		c.load(src, true)
	})
	return nil
}

// Open resolves the preferred source among candidates and loads it.
func (c *Controller) Open(candidates []media.Source) error {
	src, err := media.Resolve(candidates, c.opts.Quality, c.capabilities())
	if err != nil {
		return err
	}
	c.do(func() {
		c.candidates = candidates
		c.restore = mo.None[restorePoint]()
		c.load(src, true)
	})
	return nil
}

func (c *Controller) Play()       { c.do(c.play) }
func (c *Controller) Pause()      { c.do(c.pause) }
func (c *Controller) TogglePlay() { c.do(c.togglePlay) }

// SeekTo moves to t seconds, clamped to the media duration.
func (c *Controller) SeekTo(t float64) {
	c.do(func() { c.seekTo(t) })
}

// SeekBy moves relative to the current position.
func (c *Controller) SeekBy(delta float64) {
	c.do(func() { c.seekTo(c.state.CurrentTime + delta) })
}

// SeekFraction moves to fraction f of the duration.
func (c *Controller) SeekFraction(f float64) {
	c.do(func() {
		if c.state.Duration > 0 {
			c.seekTo(f * c.state.Duration)
		}
	})
}

// SetQuality switches to the source matching quality, keeping position and play state.
func (c *Controller) SetQuality(quality string) {
	c.do(func() { c.setQuality(quality) })
}

// Retry reloads the last source after an error. It is a no-op outside Errored
// and after the retry budget is exhausted.
func (c *Controller) Retry() {
	c.do(func() {
		if c.state.Status != Errored {
			return
		}
		var effects []retry.Effect
		c.retry, effects = c.retry.Manual()
		c.apply(effects)
	})
}

// Reload is the full reload fallback: the current source is loaded again as a
// new session, resuming where it stopped.
func (c *Controller) Reload() {
	c.do(func() {
		src, ok := c.source.Get()
		if !ok {
			return
		}
		c.keepRestore()
		c.load(src, true)
	})
}

// SetVolume sets the volume in [0, 1].
func (c *Controller) SetVolume(v float64) {
	c.do(func() { c.setVolume(v) })
}

// AdjustVolume changes the volume by delta.
func (c *Controller) AdjustVolume(delta float64) {
	c.do(func() { c.setVolume(c.state.Volume + delta) })
}

func (c *Controller) ToggleMute() {
	c.do(func() {
		muted := !c.state.Muted
		if err := c.el.SetMuted(muted); err != nil {
			c.warn("mute", err)
			return
		}
		c.state.Muted = muted
	})
}

func (c *Controller) ToggleFullscreen() {
	c.do(func() {
		on := !c.state.Fullscreen
		if err := c.el.SetFullscreen(on); err != nil {
			c.warn("fullscreen", err)
			return
		}
		c.state.Fullscreen = on
	})
}

// SetRate sets the playback speed.
func (c *Controller) SetRate(rate float64) {
	c.do(func() {
		if rate <= 0 {
			return
		}
		if err := c.el.SetRate(rate); err != nil {
			c.warn("rate", err)
			return
		}
		c.state.PlaybackRate = rate
	})
}

// Dispose cancels every timer, releases every subscription, flushes analytics
// and closes the element. It blocks until teardown has run and must not be
// called from a callback.
func (c *Controller) Dispose() {
	done := make(chan struct{})
	teardown := func() {
		defer close(done)
		c.teardown()
	}
	if !c.exec.Post(teardown) {
		teardown()
	}
	<-done

	if c.own != nil {
		c.own.Close()
	}
}

func (c *Controller) teardown() {
	if c.disposed {
		return
	}
	c.disposed = true

	c.cancelRetryTimer()
	c.stopTicker()
	c.cancel()

	for _, release := range c.subs {
		release()
	}
	c.subs = nil

	snap := c.agg.Flush(c.opts.Now())
	if c.opts.Sink != nil {
		if err := c.opts.Sink.Record(snap); err != nil {
			c.warn("record analytics", err)
		}
	}

	if err := c.el.Close(); err != nil {
		c.warn("close element", err)
	}

	c.publish()
}

func (c *Controller) capabilities() media.Capabilities {
	return media.Capabilities{Adaptive: c.opts.PreferAdaptive && c.el.SupportsAdaptive()}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
