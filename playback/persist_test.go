package playback

import (
	"testing"
	"time"

	"github.com/lectern-player/lectern/history"
	. "github.com/smartystreets/goconvey/convey"
)

func TestPersister(t *testing.T) {
	Convey("Given a persister with a 5 second interval", t, func() {
		store := newMemoryStore()
		p := NewPersister(store, "lec-1", 0, 5*time.Second, fixedNow)

		Convey("Crossing 5, 10 and 15 seconds should write exactly at those ticks", func() {
			for s := 1; s <= 17; s++ {
				p.Tick(float64(s))
			}
			So(store.writes, ShouldResemble, []float64{5, 10, 15})
		})

		Convey("A skipped boundary should still be written once", func() {
			p.Tick(4.8)
			p.Tick(5.9)
			p.Tick(6.1)
			p.Tick(11.2)
			So(store.writes, ShouldResemble, []float64{5.9, 11.2})
		})

		Convey("A backward seek should write the lower position at once", func() {
			p.Tick(12)
			p.Seeked(3)
			So(store.writes, ShouldResemble, []float64{12, 3})

			Convey("And the next boundary follows the new position", func() {
				p.Tick(4)
				p.Tick(5)
				So(store.writes, ShouldResemble, []float64{12, 3, 5})
			})
		})

		Convey("A forward seek should not write", func() {
			p.Seeked(42)
			So(store.writes, ShouldBeEmpty)
			p.Tick(44)
			p.Tick(45)
			So(store.writes, ShouldResemble, []float64{45})
		})

		Convey("Written positions should be non-decreasing without backward seeks", func() {
			for s := 0.0; s < 60; s += 0.7 {
				p.Tick(s)
			}
			for i := 1; i < len(store.writes); i++ {
				So(store.writes[i], ShouldBeGreaterThan, store.writes[i-1])
			}
		})

		Convey("Moving back without a user seek should not store lower positions", func() {
			p.Tick(16)
			p.Moved(0)
			for s := 1; s <= 21; s++ {
				p.Tick(float64(s))
			}
			So(store.writes, ShouldResemble, []float64{16, 20})
		})

		Convey("Nothing to resume should yield no resume seek", func() {
			_, ok := p.Resume()
			So(ok, ShouldBeFalse)
		})
	})

	Convey("Given a stored position", t, func() {
		store := newMemoryStore()
		So(store.Save(history.WatchPosition{VideoID: "lec-1", Position: 30}), ShouldBeNil)
		store.writes = nil

		Convey("It should be read once and resumed once", func() {
			p := NewPersister(store, "lec-1", 0, 5*time.Second, fixedNow)
			So(store.reads, ShouldEqual, 1)

			pos, ok := p.Resume()
			So(ok, ShouldBeTrue)
			So(pos, ShouldEqual, 30.0)

			_, ok = p.Resume()
			So(ok, ShouldBeFalse)
		})

		Convey("An explicit initial position should win without reading", func() {
			p := NewPersister(store, "lec-1", 45, 5*time.Second, fixedNow)
			So(store.reads, ShouldEqual, 0)
			So(p.Initial(), ShouldEqual, 45.0)

			Convey("And the first write should be the boundary after it", func() {
				p.Tick(46)
				p.Tick(50)
				So(store.writes, ShouldResemble, []float64{50})
			})
		})
	})

	Convey("Given no store", t, func() {
		p := NewPersister(nil, "lec-1", 12, 0, nil)

		Convey("Ticks should be harmless and resume still works", func() {
			p.Tick(20)
			pos, ok := p.Resume()
			So(ok, ShouldBeTrue)
			So(pos, ShouldEqual, 12.0)
		})
	})
}
