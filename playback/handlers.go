package playback

import (
	"time"

	"github.com/lectern-player/lectern/fault"
	"github.com/lectern-player/lectern/log"
	"github.com/lectern-player/lectern/media"
	"github.com/lectern-player/lectern/player"
	"github.com/lectern-player/lectern/retry"
	"github.com/samber/mo"
)

const tickInterval = time.Second

func (c *Controller) fields() log.Fields {
	return log.Fields{
		"video_id": c.opts.VideoID,
		"status":   c.state.Status.String(),
	}
}

func (c *Controller) warn(action string, err error) {
	log.WithFields(c.fields()).Warnf("%s: %v", action, err)
}

// transition moves to status to if the table allows it.
func (c *Controller) transition(to Status) bool {
	from := c.state.Status
	if from == to {
		return false
	}
	if !CanTransition(from, to) {
		log.WithFields(c.fields()).Debugf("rejected transition %s -> %s", from, to)
		return false
	}

	c.state.Status = to
	if to != Errored {
		c.state.Err = nil
	}
	if to == Buffering {
		c.agg.BufferingStarted()
	}

	c.agg.SetPlaying(to == Playing)
	if to == Playing {
		c.startTicker()
	} else {
		c.stopTicker()
	}

	log.WithFields(c.fields()).Debugf("status %s -> %s", from, to)

	c.publish()
	if c.cb.OnStateChange != nil {
		c.cb.OnStateChange(c.state)
	}
	return true
}

func (c *Controller) load(src media.Source, reset bool) {
	if reset {
		var effects []retry.Effect
		c.retry, effects = c.retry.Reset()
		c.apply(effects)
	}

	c.loadGen++
	c.probing = false
	c.completed = false
	c.source = mo.Some(src)
	c.state.Quality = src.Quality
	c.state.BufferedFraction = 0

	if c.state.Status == Loading {
		// superseded load: status is unchanged but listeners should know
		c.publish()
	} else {
		c.transition(Loading)
	}

	log.WithFields(c.fields()).WithField("url", src.URL).Info("loading source")

	if err := c.el.Load(src.URL); err != nil {
		c.fault(fault.Raw{Message: err.Error(), Err: err})
	}
}

// keepRestore remembers the current position and play state for the next load.
func (c *Controller) keepRestore() {
	if c.restore.IsPresent() || !c.state.Status.accepts() {
		return
	}
	c.restore = mo.Some(restorePoint{
		time: c.state.CurrentTime,
		play: c.state.Status == Playing || c.state.Status == Buffering,
	})
}

func (c *Controller) handle(ev player.Event) {
	switch ev.Kind {
	case player.EventCanPlay:
		c.canPlay()
	case player.EventPlaying:
		switch c.state.Status {
		case Ready, Paused, Buffering:
			c.transition(Playing)
		}
	case player.EventPause:
		switch c.state.Status {
		case Ready, Playing, Buffering:
			c.transition(Paused)
		}
	case player.EventWaiting:
		switch c.state.Status {
		case Ready, Playing:
			c.transition(Buffering)
		}
	case player.EventTimeUpdate:
		c.timeUpdate(ev.Time)
	case player.EventDurationChange:
		c.state.Duration = ev.Duration
		if c.cb.OnDurationChange != nil {
			c.cb.OnDurationChange(ev.Duration)
		}
	case player.EventProgress:
		c.state.BufferedFraction = clamp(ev.Buffered, 0, 1)
		c.progress()
	case player.EventSeeked:
		if c.state.Status.accepts() && c.cb.OnTimeUpdate != nil {
			c.cb.OnTimeUpdate(c.state.CurrentTime)
		}
	case player.EventEnded:
		c.ended()
	case player.EventError:
		c.fault(ev.Fault)
	}
}

func (c *Controller) canPlay() {
	first := c.state.Status == Loading
	if !first && !c.state.Status.accepts() {
		return
	}

	if first {
		c.transition(Ready)
		c.retry = c.retry.Recovered()
		if c.cb.OnReady != nil {
			c.cb.OnReady()
		}
	}

	// guarded inside the persister, so a duplicate readiness never seeks twice
	if pos, ok := c.persister.Resume(); ok {
		c.seek(pos)
	}

	if !first {
		return
	}

	play := c.opts.Autoplay
	if r, ok := c.restore.Get(); ok {
		c.restore = mo.None[restorePoint]()
		if r.time > 0 {
			c.seek(r.time)
		}
		play = r.play
		if !play {
			c.pause()
			return
		}
	}

	if play {
		c.play()
	}
}

func (c *Controller) timeUpdate(t float64) {
	if !c.state.Status.accepts() {
		return
	}

	c.state.CurrentTime = t
	if c.state.Status == Playing {
		c.agg.Progress(t, c.state.Duration)
		c.persister.Tick(t)
	}

	if c.cb.OnTimeUpdate != nil {
		c.cb.OnTimeUpdate(t)
	}
	c.progress()
}

func (c *Controller) progress() {
	if c.cb.OnProgress == nil {
		return
	}
	var played float64
	if c.state.Duration > 0 {
		played = clamp(c.state.CurrentTime/c.state.Duration, 0, 1)
	}
	c.cb.OnProgress(Progress{Played: played, Loaded: c.state.BufferedFraction})
}

func (c *Controller) ended() {
	if c.completed {
		return
	}
	switch c.state.Status {
	case Ready, Playing, Paused, Buffering:
	default:
		return
	}

	if c.state.Duration > 0 {
		c.state.CurrentTime = c.state.Duration
	}
	c.transition(Ended)
	c.completed = true
	c.agg.Completed()

	if c.cb.OnComplete != nil {
		c.cb.OnComplete()
	}
}

func (c *Controller) play() {
	switch c.state.Status {
	case Ready, Paused:
	case Ended:
		// a new playthrough
		c.seek(0)
		c.persister.Seeked(c.state.CurrentTime)
		c.completed = false
	default:
		return
	}

	if err := c.el.Play(); err != nil {
		// failing to start is not fatal, the session stays paused
		c.warn("play", err)
		c.transition(Paused)
		return
	}
	c.transition(Playing)
}

func (c *Controller) pause() {
	switch c.state.Status {
	case Ready, Playing, Buffering:
	default:
		return
	}

	if err := c.el.Pause(); err != nil {
		c.warn("pause", err)
	}
	c.transition(Paused)
}

func (c *Controller) togglePlay() {
	switch c.state.Status {
	case Playing, Buffering:
		c.pause()
	default:
		c.play()
	}
}

// seekTo is an explicit user seek.
func (c *Controller) seekTo(t float64) {
	if !c.state.Status.accepts() {
		return
	}

	t = c.clampTime(t)
	c.seek(t)
	c.persister.Seeked(t)

	if c.state.Status == Ended && t < c.state.Duration {
		c.completed = false
		c.transition(Paused)
	}

	if c.cb.OnTimeUpdate != nil {
		c.cb.OnTimeUpdate(t)
	}
	c.progress()
}

// seek moves the element without treating it as a user seek.
func (c *Controller) seek(t float64) {
	t = c.clampTime(t)
	if err := c.el.Seek(t); err != nil {
		c.warn("seek", err)
		return
	}
	c.state.CurrentTime = t
	c.persister.Moved(t)
}

// clampTime bounds t to [0, duration]. Before the duration is known only the
// lower bound applies.
func (c *Controller) clampTime(t float64) float64 {
	if c.state.Duration > 0 {
		return clamp(t, 0, c.state.Duration)
	}
	return clamp(t, 0, t)
}

func (c *Controller) setQuality(quality string) {
	if len(c.candidates) == 0 {
		return
	}

	src, err := media.Resolve(c.candidates, quality, c.capabilities())
	if err != nil {
		c.warn("resolve quality", err)
		return
	}

	current, loaded := c.source.Get()
	if loaded && src.URL == current.URL && quality == c.state.Quality {
		return
	}

	c.agg.QualityChanged()
	log.WithFields(c.fields()).Infof("quality %s -> %s", c.state.Quality, quality)

	if loaded && src.URL == current.URL {
		// the adaptive stream picks its own renditions
		c.state.Quality = quality
		return
	}

	c.keepRestore()
	c.load(src, true)
}

func (c *Controller) setVolume(v float64) {
	v = clamp(v, 0, 1)
	if err := c.el.SetVolume(v); err != nil {
		c.warn("volume", err)
		return
	}
	c.state.Volume = v
}

// fault handles a raw fault, probing the source first when the fault carries
// no explanation of its own.
func (c *Controller) fault(raw fault.Raw) {
	if !CanTransition(c.state.Status, Errored) || c.probing {
		return
	}

	src, ok := c.source.Get()
	if !ok || c.opts.Probe == nil || raw.Offline || raw.Status != 0 ||
		(raw.Code != fault.CodeNetwork && raw.Code != fault.CodeNone) {
		c.fail(raw)
		return
	}

	c.probing = true
	gen := c.loadGen
	go func() {
		probed, bad := c.opts.Probe(c.ctx, src.URL)
		c.do(func() {
			if gen != c.loadGen || !c.probing {
				return
			}
			c.probing = false
			if bad && probed.Status != 0 {
				raw.Status = probed.Status
				raw.Message = probed.Message
			}
			c.fail(raw)
		})
	}()
}

func (c *Controller) fail(raw fault.Raw) {
	if c.state.Status == Errored {
		return
	}

	err := fault.Classify(raw)

	entry := log.WithFields(c.fields()).WithFields(log.Fields{
		"raw":       raw.String(),
		"kind":      string(err.Kind),
		"retryable": err.Retryable,
	})
	if !CanTransition(c.state.Status, Errored) {
		entry.Info("fault ignored")
		return
	}
	entry.Warn("playback fault")

	c.keepRestore()

	c.state.Err = err
	c.transition(Errored)

	var effects []retry.Effect
	c.retry, effects = c.retry.Fail(err)
	c.apply(effects)
}

func (c *Controller) connectivity(online bool) {
	var effects []retry.Effect
	c.retry, effects = c.retry.Online(online)

	if !online {
		if c.state.Status.active() {
			c.fail(fault.Raw{Offline: true})
		}
		return
	}

	c.apply(effects)
}

// apply carries out retry effects in order.
func (c *Controller) apply(effects []retry.Effect) {
	for _, effect := range effects {
		switch e := effect.(type) {
		case retry.Incident:
			c.agg.ErrorOccurred()
		case retry.Schedule:
			c.scheduleRetry(e.Delay)
		case retry.Cancel:
			c.cancelRetryTimer()
		case retry.Reload:
			src, ok := c.source.Get()
			if !ok {
				continue
			}
			log.WithFields(c.fields()).Infof("retry attempt %d", e.Attempt)
			c.load(src, false)
		case retry.Notify:
			c.state.Err = e.Err
			c.publish()
			if c.cb.OnError != nil {
				c.cb.OnError(e.Err)
			}
		}
	}
}

func (c *Controller) scheduleRetry(delay time.Duration) {
	c.cancelRetryTimer()

	gen := c.retryGen
	c.retryTimer = c.sched.AfterFunc(delay, func() {
		c.do(func() {
			if gen != c.retryGen {
				return
			}
			c.retryTimer = nil

			var effects []retry.Effect
			c.retry, effects = c.retry.Fire()
			c.apply(effects)
		})
	})
}

func (c *Controller) cancelRetryTimer() {
	c.retryGen++
	if c.retryTimer != nil {
		c.retryTimer.Stop()
		c.retryTimer = nil
	}
}

func (c *Controller) startTicker() {
	if c.tickTimer != nil {
		return
	}
	gen := c.tickGen
	c.tickTimer = c.sched.AfterFunc(tickInterval, func() {
		c.do(func() {
			if gen != c.tickGen {
				return
			}
			c.tickTimer = nil
			c.agg.Tick()
			if c.state.Status == Playing {
				c.startTicker()
			}
		})
	})
}

func (c *Controller) stopTicker() {
	c.tickGen++
	if c.tickTimer != nil {
		c.tickTimer.Stop()
		c.tickTimer = nil
	}
}
