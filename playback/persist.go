package playback

import (
	"math"
	"time"

	"github.com/lectern-player/lectern/history"
	"github.com/lectern-player/lectern/log"
	"github.com/samber/mo"
)

// DefaultPersistInterval is the playback distance between resume writes.
const DefaultPersistInterval = 5 * time.Second

// PositionStore is the external key-value store of resume positions.
type PositionStore interface {
	Get(videoID string) (mo.Option[history.WatchPosition], error)
	Save(pos history.WatchPosition) error
}

// Persister writes the resume position at most once per interval boundary and
// performs the resume seek at most once.
type Persister struct {
	store    PositionStore
	videoID  string
	interval float64
	now      func() time.Time

	initial     float64
	resumed     bool
	next        float64 // next unwritten boundary, in seconds
	lastWritten float64
}

// NewPersister reads the store once. A positive initial position wins over
// the stored one. A nil store disables writes.
func NewPersister(store PositionStore, videoID string, initial float64, interval time.Duration, now func() time.Time) *Persister {
	if interval <= 0 {
		interval = DefaultPersistInterval
	}
	if now == nil {
		now = time.Now
	}

	p := &Persister{
		store:    store,
		videoID:  videoID,
		interval: interval.Seconds(),
		now:      now,
		initial:  math.Max(0, initial),
	}

	if p.initial == 0 && store != nil && videoID != "" {
		saved, err := store.Get(videoID)
		if err != nil {
			log.WithFields(log.Fields{"video_id": videoID}).Warnf("read resume position: %v", err)
		} else if pos, ok := saved.Get(); ok {
			p.initial = math.Max(0, pos.Position)
		}
	}

	p.lastWritten = p.initial
	p.next = p.boundaryAfter(p.initial)
	return p
}

// Initial returns the resume position chosen at construction.
func (p *Persister) Initial() float64 {
	return p.initial
}

// Resume returns the position to seek to on the first readiness only.
func (p *Persister) Resume() (float64, bool) {
	if p.resumed {
		return 0, false
	}
	p.resumed = true
	return p.initial, p.initial > 0
}

// Tick is called on every progress tick and writes once the next unwritten
// boundary has been reached, even if ticks skipped over it. Positions at or
// below the last write are only stored through Seeked.
func (p *Persister) Tick(t float64) {
	if t < p.next || t <= p.lastWritten {
		return
	}
	p.write(t)
}

// Seeked records an explicit seek. Seeking back persists the lower position at once.
func (p *Persister) Seeked(t float64) {
	if t < p.lastWritten {
		p.write(t)
		return
	}
	p.next = p.boundaryAfter(t)
}

// Moved re-aligns the boundary after a seek the user did not ask for. The
// boundary never drops below the last written position.
func (p *Persister) Moved(t float64) {
	p.next = p.boundaryAfter(math.Max(t, p.lastWritten))
}

func (p *Persister) write(t float64) {
	p.lastWritten = t
	p.next = p.boundaryAfter(t)

	if p.store == nil || p.videoID == "" {
		return
	}

	err := p.store.Save(history.WatchPosition{
		VideoID:         p.videoID,
		Position:        t,
		LastPersistedAt: p.now(),
	})
	if err != nil {
		log.WithFields(log.Fields{"video_id": p.videoID, "position": t}).Warnf("save resume position: %v", err)
	}
}

// boundaryAfter returns the first interval multiple strictly greater than t.
func (p *Persister) boundaryAfter(t float64) float64 {
	return (math.Floor(t/p.interval) + 1) * p.interval
}
