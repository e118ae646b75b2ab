package playback

import (
	"context"
	"errors"
	"math"
	"net/http"
	"testing"
	"time"

	"github.com/lectern-player/lectern/fault"
	"github.com/lectern-player/lectern/history"
	"github.com/lectern-player/lectern/media"
	"github.com/lectern-player/lectern/network"
	"github.com/lectern-player/lectern/player/playertest"
	"github.com/lectern-player/lectern/retry"
	. "github.com/smartystreets/goconvey/convey"
	"go.uber.org/goleak"
)

var (
	lowSource  = media.Source{URL: "https://cdn.example.com/lec-480.mp4", Kind: media.KindResolution, Quality: "480p"}
	highSource = media.Source{URL: "https://cdn.example.com/lec-720.mp4", Kind: media.KindResolution, Quality: "720p"}
	hlsSource  = media.Source{URL: "https://cdn.example.com/lec.m3u8", Kind: media.KindHLS, Quality: media.QualityAuto}
)

type harness struct {
	el      *playertest.Element
	sched   *manualScheduler
	store   *memoryStore
	sink    *memorySink
	monitor *network.Monitor
	c       *Controller

	ready     int
	completes int
	errs      []*fault.Error
	statuses  []Status
}

func newHarness(configure func(*Options)) *harness {
	h := &harness{
		el:      playertest.New(),
		sched:   &manualScheduler{},
		store:   newMemoryStore(),
		sink:    &memorySink{},
		monitor: network.NewMonitor(true),
	}

	opts := Options{
		VideoID:        "lec-1",
		Autoplay:       true,
		PreferAdaptive: true,
		Retry:          retry.DefaultConfig(),
		Store:          h.store,
		Sink:           h.sink,
		Monitor:        h.monitor,
		Executor:       Inline{},
		Scheduler:      h.sched,
		Now:            fixedNow,
		Callbacks: Callbacks{
			OnReady:       func() { h.ready++ },
			OnComplete:    func() { h.completes++ },
			OnError:       func(err *fault.Error) { h.errs = append(h.errs, err) },
			OnStateChange: func(s State) { h.statuses = append(h.statuses, s.Status) },
		},
	}
	if configure != nil {
		configure(&opts)
	}

	h.c = New(h.el, opts)
	return h
}

// start loads src and drives the element to Playing.
func (h *harness) start(src media.Source) {
	So(h.c.Load(src), ShouldBeNil)
	h.el.Duration(120)
	h.el.CanPlay()
	So(h.c.State().Status, ShouldEqual, Playing)
}

func TestLoad(t *testing.T) {
	Convey("Given a controller", t, func() {
		h := newHarness(nil)

		Convey("It should start idle", func() {
			So(h.c.State().Status, ShouldEqual, Idle)
			So(h.c.State().Volume, ShouldEqual, 1.0)
		})

		Convey("An empty source should be rejected", func() {
			So(h.c.Load(media.Source{}), ShouldEqual, ErrEmptySource)
			So(h.el.Loads, ShouldBeEmpty)
		})

		Convey("Loading should bind the element and wait for readiness", func() {
			So(h.c.Load(lowSource), ShouldBeNil)
			So(h.el.LastLoad(), ShouldEqual, lowSource.URL)
			So(h.c.State().Status, ShouldEqual, Loading)
			So(h.c.State().Quality, ShouldEqual, "480p")

			Convey("Intents should be ignored while loading", func() {
				h.c.Play()
				h.c.SeekTo(30)
				So(h.el.Plays, ShouldEqual, 0)
				So(h.el.Seeks, ShouldBeEmpty)
			})

			Convey("Can-play should make it ready and autoplay", func() {
				h.el.CanPlay()
				So(h.ready, ShouldEqual, 1)
				So(h.el.Plays, ShouldEqual, 1)
				So(h.c.State().Status, ShouldEqual, Playing)
				So(h.statuses, ShouldResemble, []Status{Loading, Ready, Playing})
			})
		})

		Convey("Open should resolve the adaptive stream first", func() {
			So(h.c.Open([]media.Source{hlsSource, lowSource, highSource}), ShouldBeNil)
			So(h.el.LastLoad(), ShouldEqual, hlsSource.URL)
		})

		Convey("Open with nothing playable should fail", func() {
			So(h.c.Open(nil), ShouldEqual, media.ErrNoSource)
		})
	})

	Convey("Given autoplay is off", t, func() {
		h := newHarness(func(o *Options) { o.Autoplay = false })
		So(h.c.Load(lowSource), ShouldBeNil)
		h.el.CanPlay()

		Convey("It should stay ready until asked to play", func() {
			So(h.c.State().Status, ShouldEqual, Ready)
			h.c.Play()
			So(h.c.State().Status, ShouldEqual, Playing)
		})
	})

	Convey("Given the element refuses to autoplay", t, func() {
		h := newHarness(nil)
		h.c.el = &refusingElement{Element: h.el}
		So(h.c.Load(lowSource), ShouldBeNil)
		h.el.CanPlay()

		Convey("The session should stay paused without an error", func() {
			So(h.c.State().Status, ShouldEqual, Paused)
			So(h.errs, ShouldBeEmpty)
		})
	})
}

type refusingElement struct {
	*playertest.Element
}

func (r *refusingElement) Play() error {
	return errors.New("autoplay blocked")
}

func TestIntents(t *testing.T) {
	Convey("Given a playing session", t, func() {
		h := newHarness(nil)
		h.start(lowSource)

		Convey("Play while playing should be a no-op", func() {
			h.c.Play()
			So(h.el.Plays, ShouldEqual, 1)
		})

		Convey("Pause then toggle should resume", func() {
			h.c.Pause()
			So(h.c.State().Status, ShouldEqual, Paused)
			h.c.Pause()
			So(h.el.Pauses, ShouldEqual, 1)

			h.c.TogglePlay()
			So(h.c.State().Status, ShouldEqual, Playing)
		})

		Convey("Seeks should clamp to the duration", func() {
			h.c.SeekTo(500)
			So(h.el.LastSeek(), ShouldEqual, 120.0)
			h.c.SeekTo(-3)
			So(h.el.LastSeek(), ShouldEqual, 0.0)

			h.c.SeekTo(60)
			h.c.SeekBy(-10)
			So(h.el.LastSeek(), ShouldEqual, 50.0)

			h.c.SeekFraction(0.3)
			So(h.el.LastSeek(), ShouldEqual, 36.0)
		})

		Convey("Volume should clamp to [0, 1]", func() {
			h.c.AdjustVolume(0.5)
			So(h.c.State().Volume, ShouldEqual, 1.0)
			h.c.SetVolume(0.3)
			h.c.AdjustVolume(-0.5)
			So(h.c.State().Volume, ShouldEqual, 0.0)
			So(h.el.Volume, ShouldEqual, 0.0)
		})

		Convey("Mute and fullscreen should toggle", func() {
			h.c.ToggleMute()
			h.c.ToggleFullscreen()
			So(h.c.State().Muted, ShouldBeTrue)
			So(h.c.State().Fullscreen, ShouldBeTrue)
			So(h.el.Muted, ShouldBeTrue)

			h.c.ToggleMute()
			So(h.c.State().Muted, ShouldBeFalse)
		})

		Convey("Waiting should count a buffering event and playing should leave it", func() {
			h.el.Waiting()
			So(h.c.State().Status, ShouldEqual, Buffering)
			h.el.Waiting()
			h.el.Playing()
			So(h.c.State().Status, ShouldEqual, Playing)
			So(h.c.Analytics().BufferingEvents, ShouldEqual, 1)
		})

		Convey("Time updates should be reported with progress", func() {
			var got []Progress
			h.c.cb.OnProgress = func(p Progress) { got = append(got, p) }

			h.el.Buffered(0.5)
			h.el.Time(30)
			So(h.c.State().CurrentTime, ShouldEqual, 30.0)
			So(got[len(got)-1], ShouldResemble, Progress{Played: 0.25, Loaded: 0.5})
		})

		Convey("Ended should complete once per playthrough", func() {
			h.el.Ended()
			h.el.Ended()
			So(h.completes, ShouldEqual, 1)
			So(h.c.State().Status, ShouldEqual, Ended)
			So(h.c.Analytics().CompletionRatePercent, ShouldEqual, 100.0)

			Convey("Play should restart from the beginning", func() {
				h.c.Play()
				So(h.el.LastSeek(), ShouldEqual, 0.0)
				So(h.c.State().Status, ShouldEqual, Playing)

				h.el.Ended()
				So(h.completes, ShouldEqual, 2)
			})

			Convey("A late fault should neither error nor schedule a reload", func() {
				h.el.Fail(fault.CodeNetwork, "connection reset")
				So(h.c.State().Status, ShouldEqual, Ended)
				So(h.c.State().Err, ShouldBeNil)
				So(h.c.State().RetryPending, ShouldBeFalse)
				So(h.c.Analytics().ErrorCount, ShouldEqual, 0)

				h.sched.Advance(5 * time.Second)
				So(len(h.el.Loads), ShouldEqual, 1)
				So(h.errs, ShouldBeEmpty)
			})
		})

		Convey("Retry outside of Errored should be ignored", func() {
			h.c.Retry()
			So(len(h.el.Loads), ShouldEqual, 1)
		})
	})
}

func TestResumeSeek(t *testing.T) {
	Convey("Given initialPosition=45", t, func() {
		h := newHarness(func(o *Options) { o.InitialPosition = 45 })
		So(h.c.Load(lowSource), ShouldBeNil)

		Convey("A duplicate ready signal should seek exactly once", func() {
			h.el.CanPlay()
			h.el.CanPlay()

			So(h.el.Seeks, ShouldResemble, []float64{45})
			So(h.ready, ShouldEqual, 1)
			So(h.c.State().CurrentTime, ShouldEqual, 45.0)
		})

		Convey("A reload should restore the current position, not the initial one", func() {
			h.el.CanPlay()
			h.el.Time(60)
			h.c.Reload()
			h.el.CanPlay()
			So(h.el.Seeks, ShouldResemble, []float64{45, 60})
			So(h.c.State().Status, ShouldEqual, Playing)
		})
	})

	Convey("Given a stored position and no explicit one", t, func() {
		h := newHarness(func(o *Options) {
			store := newMemoryStore()
			store.saved["lec-1"] = history.WatchPosition{VideoID: "lec-1", Position: 80, LastPersistedAt: fixedNow()}
			o.Store = store
		})

		So(h.c.ResumePosition(), ShouldEqual, 80.0)
	})
}

func TestPersistenceThroughController(t *testing.T) {
	Convey("Given a playing session", t, func() {
		h := newHarness(nil)
		h.start(lowSource)

		Convey("Crossing 5, 10 and 15 seconds should write at exactly those values", func() {
			for s := 1; s <= 16; s++ {
				h.el.Time(float64(s))
			}
			So(h.store.writes, ShouldResemble, []float64{5, 10, 15})
		})

		Convey("A backward seek should persist immediately", func() {
			for s := 1; s <= 12; s++ {
				h.el.Time(float64(s))
			}
			h.c.SeekTo(2)
			So(h.store.writes, ShouldResemble, []float64{5, 10, 2})
		})

		Convey("Replaying after the end should restart the stored position at 0", func() {
			for s := 1; s <= 16; s++ {
				h.el.Time(float64(s))
			}
			h.el.Ended()
			h.c.Play()
			for s := 1; s <= 6; s++ {
				h.el.Time(float64(s))
			}
			So(h.store.writes, ShouldResemble, []float64{5, 10, 15, 0, 5})
		})

		Convey("Ticks while paused should not write", func() {
			h.c.Pause()
			h.el.Time(7)
			So(h.store.writes, ShouldBeEmpty)
		})
	})
}

func TestQualitySwitch(t *testing.T) {
	Convey("Given a session opened at 480p without adaptive support", t, func() {
		h := newHarness(func(o *Options) { o.Quality = "480p" })
		h.el.Adaptive = false

		So(h.c.Open([]media.Source{hlsSource, lowSource, highSource}), ShouldBeNil)
		So(h.el.LastLoad(), ShouldEqual, lowSource.URL)
		h.el.Duration(120)
		h.el.CanPlay()
		h.el.Time(42.5)

		Convey("Switching while playing should keep position and keep playing", func() {
			h.c.SetQuality("720p")
			So(h.el.LastLoad(), ShouldEqual, highSource.URL)
			So(h.c.State().Status, ShouldEqual, Loading)

			h.el.CanPlay()
			So(math.Abs(h.c.State().CurrentTime-42.5), ShouldBeLessThan, 0.01)
			So(h.el.LastSeek(), ShouldEqual, 42.5)
			So(h.c.State().Status, ShouldEqual, Playing)
			So(h.c.State().Quality, ShouldEqual, "720p")
			So(h.c.Analytics().QualityChanges, ShouldEqual, 1)
		})

		Convey("Switching while paused should stay paused", func() {
			h.c.Pause()
			h.c.SetQuality("720p")
			h.el.CanPlay()

			So(h.c.State().Status, ShouldEqual, Paused)
			So(h.el.LastSeek(), ShouldEqual, 42.5)
		})

		Convey("Asking for the active quality should change nothing", func() {
			h.c.SetQuality("480p")
			So(len(h.el.Loads), ShouldEqual, 1)
			So(h.c.Analytics().QualityChanges, ShouldEqual, 0)
		})
	})

	Convey("Given an adaptive session", t, func() {
		h := newHarness(nil)
		So(h.c.Open([]media.Source{hlsSource, lowSource}), ShouldBeNil)
		h.el.CanPlay()

		Convey("A quality switch should only relabel the stream", func() {
			h.c.SetQuality("480p")
			So(len(h.el.Loads), ShouldEqual, 1)
			So(h.c.State().Quality, ShouldEqual, "480p")
			So(h.c.Analytics().QualityChanges, ShouldEqual, 1)
		})
	})
}

func TestOfflineScenario(t *testing.T) {
	Convey("Given a playing session that goes offline", t, func() {
		h := newHarness(nil)
		h.start(lowSource)
		h.el.Time(20)

		h.monitor.Set(false)

		Convey("It should become Errored(network, retryable) without surfacing", func() {
			st := h.c.State()
			So(st.Status, ShouldEqual, Errored)
			So(st.Err.Kind, ShouldEqual, fault.KindNetwork)
			So(st.Err.Retryable, ShouldBeTrue)
			So(h.errs, ShouldBeEmpty)
			So(h.c.Analytics().ErrorCount, ShouldEqual, 1)
		})

		Convey("The delayed retry should wait for connectivity", func() {
			h.sched.Advance(5 * time.Second)
			So(len(h.el.Loads), ShouldEqual, 1)
		})

		Convey("Coming back online should retry at once and resume playing", func() {
			h.monitor.Set(true)
			So(len(h.el.Loads), ShouldEqual, 2)
			So(h.c.State().Status, ShouldEqual, Loading)

			h.el.CanPlay()
			So(h.c.State().Status, ShouldEqual, Playing)
			So(h.el.LastSeek(), ShouldEqual, 20.0)

			Convey("And the cancelled timer should never fire", func() {
				h.sched.Advance(10 * time.Second)
				So(len(h.el.Loads), ShouldEqual, 2)
			})
		})
	})

	Convey("Given auto retry is off", t, func() {
		h := newHarness(func(o *Options) { o.Retry.AutoRetry = false })
		h.start(lowSource)
		h.monitor.Set(false)
		h.monitor.Set(true)

		Convey("Coming back online should not retry", func() {
			So(len(h.el.Loads), ShouldEqual, 1)
			So(len(h.errs), ShouldEqual, 1)
		})
	})
}

func TestDecodeScenario(t *testing.T) {
	Convey("Given a decode fault while playing", t, func() {
		h := newHarness(nil)
		h.start(lowSource)
		h.el.Fail(fault.CodeDecode, "bad frame")

		Convey("It should surface a non-retryable format error at once", func() {
			So(h.c.State().Status, ShouldEqual, Errored)
			So(len(h.errs), ShouldEqual, 1)
			So(h.errs[0].Kind, ShouldEqual, fault.KindFormat)
			So(h.errs[0].Retryable, ShouldBeFalse)
			So(h.sched.Pending(), ShouldEqual, 0)
		})

		Convey("Intents other than retry should be ignored", func() {
			h.c.Play()
			h.c.SeekTo(10)
			So(h.c.State().Status, ShouldEqual, Errored)
		})

		Convey("A manual retry should reload", func() {
			h.c.Retry()
			So(len(h.el.Loads), ShouldEqual, 2)
			So(h.c.State().Status, ShouldEqual, Loading)
		})
	})
}

func TestExhaustionScenario(t *testing.T) {
	Convey("Given maxRetries=3 and a source that keeps failing", t, func() {
		h := newHarness(func(o *Options) {
			o.Retry = retry.Config{MaxAttempts: 3, BaseDelay: time.Second, AutoRetry: true}
		})
		So(h.c.Load(lowSource), ShouldBeNil)

		for attempt := 1; attempt <= 3; attempt++ {
			h.el.Fail(fault.CodeNetwork, "connection reset")
			So(h.errs, ShouldBeEmpty)
			h.sched.Advance(time.Duration(attempt) * time.Second)
			So(len(h.el.Loads), ShouldEqual, attempt+1)
		}
		h.el.Fail(fault.CodeNetwork, "connection reset")

		Convey("The 3rd failed retry should end in a terminal error", func() {
			st := h.c.State()
			So(st.Status, ShouldEqual, Errored)
			So(st.Err.Retryable, ShouldBeFalse)
			So(st.Err.Message, ShouldContainSubstring, "maximum retry attempts (3) reached")
			So(len(h.errs), ShouldEqual, 1)
			So(h.c.Analytics().ErrorCount, ShouldEqual, 1)
			So(h.sched.Pending(), ShouldEqual, 0)
			So(st.Attempt, ShouldEqual, 3)
			So(st.RetryPending, ShouldBeFalse)
		})

		Convey("Manual retry should be a no-op", func() {
			h.c.Retry()
			So(len(h.el.Loads), ShouldEqual, 4)
		})

		Convey("Coming back online should not retry", func() {
			h.monitor.Set(false)
			h.monitor.Set(true)
			So(len(h.el.Loads), ShouldEqual, 4)
		})

		Convey("A new load should reset the budget", func() {
			So(h.c.Load(lowSource), ShouldBeNil)
			h.el.Fail(fault.CodeNetwork, "connection reset")
			So(h.sched.Pending(), ShouldEqual, 1)
			So(h.c.State().RetryPending, ShouldBeTrue)
			So(h.c.State().Attempt, ShouldEqual, 0)
		})

		Convey("Reload should offer a full fresh session", func() {
			h.c.Reload()
			So(len(h.el.Loads), ShouldEqual, 5)
			h.el.CanPlay()
			So(h.c.State().Status, ShouldEqual, Playing)
			So(h.c.State().Err, ShouldBeNil)
		})
	})
}

func TestProbe(t *testing.T) {
	Convey("Given a probe that reports the source as forbidden", t, func() {
		loop := NewLoop()
		defer loop.Close()

		probed := make(chan struct{}, 1)
		errs := make(chan *fault.Error, 1)
		h := newHarness(func(o *Options) {
			o.Executor = loop
			o.Probe = func(ctx context.Context, url string) (fault.Raw, bool) {
				probed <- struct{}{}
				return fault.Raw{Status: http.StatusForbidden, Message: "forbidden"}, true
			}
			o.Callbacks.OnError = func(err *fault.Error) { errs <- err }
		})
		So(h.c.Load(lowSource), ShouldBeNil)
		h.el.Fail(fault.CodeNetwork, "loading failed")

		Convey("The fault should be classified as permission", func() {
			select {
			case <-probed:
			case <-time.After(2 * time.Second):
			}

			var err *fault.Error
			select {
			case err = <-errs:
			case <-time.After(2 * time.Second):
			}

			So(err, ShouldNotBeNil)
			So(err.Kind, ShouldEqual, fault.KindPermission)
			So(err.Retryable, ShouldBeFalse)

			h.c.Dispose()
		})
	})
}

func TestDispose(t *testing.T) {
	Convey("Given a session with a pending retry and a running ticker", t, func() {
		h := newHarness(nil)
		h.start(lowSource)
		h.sched.Advance(3 * time.Second)
		So(h.c.Analytics().WatchTimeSeconds, ShouldEqual, 3)

		h.el.Fail(fault.CodeNetwork, "reset")
		So(h.sched.Pending(), ShouldEqual, 1)

		h.c.Dispose()

		Convey("Every timer should be cancelled", func() {
			So(h.sched.Pending(), ShouldEqual, 0)
			h.sched.Advance(time.Minute)
			So(len(h.el.Loads), ShouldEqual, 1)
		})

		Convey("Every subscription should be released", func() {
			So(h.el.Listeners(), ShouldEqual, 0)
			So(h.monitor.Subscribers(), ShouldEqual, 0)
		})

		Convey("Late events should not mutate state", func() {
			before := h.c.State()
			h.el.CanPlay()
			h.monitor.Set(false)
			So(h.c.State(), ShouldResemble, before)
		})

		Convey("The analytics snapshot should be flushed once and the element closed", func() {
			So(len(h.sink.snapshots), ShouldEqual, 1)
			So(h.sink.snapshots[0].WatchTimeSeconds, ShouldEqual, 3)
			So(h.sink.snapshots[0].SessionEnd, ShouldEqual, fixedNow())
			So(h.el.Closed, ShouldBeTrue)

			h.c.Dispose()
			So(len(h.sink.snapshots), ShouldEqual, 1)
		})
	})
}

func TestAnalyticsThroughController(t *testing.T) {
	Convey("Given a playing session", t, func() {
		h := newHarness(nil)
		h.start(lowSource)

		Convey("Watch time should only grow while playing", func() {
			h.sched.Advance(2 * time.Second)
			h.c.Pause()
			h.sched.Advance(5 * time.Second)
			h.c.Play()
			h.sched.Advance(time.Second)

			So(h.c.Analytics().WatchTimeSeconds, ShouldEqual, 3)
		})

		Convey("Completion should stay within [0, 100]", func() {
			for _, ts := range []float64{-5, 0, 30, 60, 119, 500} {
				h.el.Time(ts)
				rate := h.c.Analytics().CompletionRatePercent
				So(rate, ShouldBeBetweenOrEqual, 0.0, 100.0)
			}
		})
	})
}

func TestOwnLoop(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	Convey("Given no executor", t, func() {
		el := playertest.New()
		c := New(el, Options{VideoID: "lec-1", Scheduler: &manualScheduler{}, Now: fixedNow})

		Convey("Dispose should stop the controller's own loop and close the element", func() {
			So(c.Load(lowSource), ShouldBeNil)
			c.Dispose()
			So(el.Closed, ShouldBeTrue)
		})
	})
}
