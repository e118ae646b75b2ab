package retry

import (
	"testing"
	"time"

	"github.com/lectern-player/lectern/fault"
	. "github.com/smartystreets/goconvey/convey"
)

var (
	networkFault = fault.Classify(fault.Raw{Code: fault.CodeNetwork})
	decodeFault  = fault.Classify(fault.Raw{Code: fault.CodeDecode})
)

func TestLinearSchedule(t *testing.T) {
	Convey("Given the default policy", t, func() {
		s := New(DefaultConfig())

		Convey("Delays should grow linearly", func() {
			So(s.Delay(1), ShouldEqual, time.Second)
			So(s.Delay(2), ShouldEqual, 2*time.Second)
			So(s.Delay(3), ShouldEqual, 3*time.Second)
		})

		Convey("A first retryable fault should open an incident and schedule attempt 1", func() {
			s, effects := s.Fail(networkFault)
			So(effects, ShouldResemble, []Effect{
				Incident{Err: networkFault},
				Schedule{Attempt: 1, Delay: time.Second},
			})

			sess, ok := s.Session()
			So(ok, ShouldBeTrue)
			So(sess.Attempt, ShouldEqual, 0)
			So(s.Pending(), ShouldBeTrue)

			Convey("Firing the timer should reload and count the attempt", func() {
				s, effects := s.Fire()
				So(effects, ShouldResemble, []Effect{Reload{Attempt: 1}})
				sess, _ := s.Session()
				So(sess.Attempt, ShouldEqual, 1)
				So(s.Pending(), ShouldBeFalse)

				Convey("A second fault should not open a new incident", func() {
					_, effects := s.Fail(networkFault)
					So(effects, ShouldResemble, []Effect{Schedule{Attempt: 2, Delay: 2 * time.Second}})
				})
			})
		})
	})
}

func TestExhaustion(t *testing.T) {
	Convey("Given max attempts of 3 and repeated network faults", t, func() {
		s := New(Config{MaxAttempts: 3, BaseDelay: time.Second, AutoRetry: true})

		var effects []Effect
		for i := 0; i < 3; i++ {
			s, _ = s.Fail(networkFault)
			s, _ = s.Fire()
			sess, _ := s.Session()
			So(sess.Attempt, ShouldBeLessThanOrEqualTo, 3)
		}
		s, effects = s.Fail(networkFault)

		Convey("The 4th fault should exhaust the session with a terminal error", func() {
			So(s.Exhausted(), ShouldBeTrue)
			So(len(effects), ShouldEqual, 1)

			notify, ok := effects[0].(Notify)
			So(ok, ShouldBeTrue)
			So(notify.Err.Retryable, ShouldBeFalse)
			So(notify.Err.Message, ShouldContainSubstring, "maximum retry attempts (3) reached")

			sess, _ := s.Session()
			So(sess.Attempt, ShouldEqual, 3)
		})

		Convey("Manual retry after exhaustion should be a no-op", func() {
			_, effects := s.Manual()
			So(effects, ShouldBeEmpty)
		})

		Convey("Going online after exhaustion should not retry", func() {
			_, effects := s.Online(true)
			So(effects, ShouldBeEmpty)
		})

		Convey("Reset should start a fresh session", func() {
			s, _ := s.Reset()
			So(s.Exhausted(), ShouldBeFalse)
			_, ok := s.Session()
			So(ok, ShouldBeFalse)
		})
	})
}

func TestNonRetryable(t *testing.T) {
	Convey("Given a format fault", t, func() {
		s, effects := New(DefaultConfig()).Fail(decodeFault)

		Convey("It should be surfaced with no schedule", func() {
			So(effects, ShouldResemble, []Effect{Incident{Err: decodeFault}, Notify{Err: decodeFault}})
			So(s.Pending(), ShouldBeFalse)
		})

		Convey("A manual retry should still be allowed", func() {
			s, effects := s.Manual()
			So(effects, ShouldResemble, []Effect{Reload{Attempt: 1}})
			sess, _ := s.Session()
			So(sess.Attempt, ShouldEqual, 1)
		})
	})

	Convey("Given auto retry is disabled", t, func() {
		s := New(Config{MaxAttempts: 3, AutoRetry: false})
		s, effects := s.Fail(networkFault)
		So(effects, ShouldResemble, []Effect{Incident{Err: networkFault}, Notify{Err: networkFault}})

		_, effects = s.Online(true)
		So(effects, ShouldBeEmpty)
	})
}

func TestConnectivity(t *testing.T) {
	Convey("Given an offline network fault with a pending timer", t, func() {
		s := New(DefaultConfig())
		s, _ = s.Online(false)
		s, _ = s.Fail(fault.Classify(fault.Raw{Offline: true}))

		Convey("The timer firing while offline should not consume an attempt", func() {
			s, effects := s.Fire()
			So(effects, ShouldBeEmpty)
			So(s.Pending(), ShouldBeTrue)
			sess, _ := s.Session()
			So(sess.Attempt, ShouldEqual, 0)
		})

		Convey("Coming back online should cancel the timer and retry at once", func() {
			s, effects := s.Online(true)
			So(effects, ShouldResemble, []Effect{Cancel{}, Reload{Attempt: 1}})
			So(s.Pending(), ShouldBeFalse)
		})
	})

	Convey("Given a pending unknown fault", t, func() {
		s, _ := New(DefaultConfig()).Fail(fault.Classify(fault.Raw{}))
		_, effects := s.Online(true)
		So(effects, ShouldBeEmpty)
	})
}

func TestRecovered(t *testing.T) {
	Convey("Recovered should clear the session", t, func() {
		s, _ := New(DefaultConfig()).Fail(networkFault)
		s, _ = s.Fire()
		s = s.Recovered()

		_, ok := s.Session()
		So(ok, ShouldBeFalse)

		_, effects := s.Fail(networkFault)
		So(effects[0], ShouldResemble, Incident{Err: networkFault})
	})
}
