package playback

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"go.uber.org/goleak"
)

func TestLoop(t *testing.T) {
	Convey("Given a running loop", t, func() {
		l := NewLoop()

		Convey("Closures should run in posting order on one goroutine", func() {
			var got []int
			for i := 0; i < 100; i++ {
				i := i
				So(l.Post(func() { got = append(got, i) }), ShouldBeTrue)
			}

			l.Close()
			select {
			case <-l.Done():
			case <-time.After(2 * time.Second):
			}

			So(len(got), ShouldEqual, 100)
			for i, v := range got {
				So(v, ShouldEqual, i)
			}
		})

		Convey("Posting after Close should be refused", func() {
			l.Close()
			<-l.Done()
			So(l.Post(func() {}), ShouldBeFalse)
		})
	})
}

func TestLoopExits(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	l := NewLoop()
	ran := make(chan struct{})
	l.Post(func() { close(ran) })
	<-ran

	l.Close()
	<-l.Done()
}
