package playback

import (
	"sort"
	"sync"
	"time"

	"github.com/lectern-player/lectern/analytics"
	"github.com/lectern-player/lectern/history"
	"github.com/samber/mo"
)

// manualScheduler fires timers only when the test advances its clock.
type manualScheduler struct {
	now    time.Duration
	timers []*manualTimer
}

type manualTimer struct {
	s       *manualScheduler
	at      time.Duration
	fn      func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

func (s *manualScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	t := &manualTimer{s: s, at: s.now + d, fn: fn}
	s.timers = append(s.timers, t)
	return t
}

// Advance moves the clock forward, firing due timers in deadline order.
func (s *manualScheduler) Advance(d time.Duration) {
	target := s.now + d
	for {
		due := s.due(target)
		if due == nil {
			break
		}
		s.now = due.at
		due.fired = true
		due.fn()
	}
	s.now = target
}

func (s *manualScheduler) due(target time.Duration) *manualTimer {
	var live []*manualTimer
	for _, t := range s.timers {
		if !t.stopped && !t.fired && t.at <= target {
			live = append(live, t)
		}
	}
	if len(live) == 0 {
		return nil
	}
	sort.SliceStable(live, func(i, j int) bool { return live[i].at < live[j].at })
	return live[0]
}

// Pending counts timers that have neither fired nor been stopped.
func (s *manualScheduler) Pending() int {
	n := 0
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

type memoryStore struct {
	mu     sync.Mutex
	saved  map[string]history.WatchPosition
	writes []float64
	reads  int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{saved: make(map[string]history.WatchPosition)}
}

func (m *memoryStore) Get(videoID string) (mo.Option[history.WatchPosition], error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads++
	if pos, ok := m.saved[videoID]; ok {
		return mo.Some(pos), nil
	}
	return mo.None[history.WatchPosition](), nil
}

func (m *memoryStore) Save(pos history.WatchPosition) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved[pos.VideoID] = pos
	m.writes = append(m.writes, pos.Position)
	return nil
}

type memorySink struct {
	snapshots []analytics.Snapshot
}

func (m *memorySink) Record(s analytics.Snapshot) error {
	m.snapshots = append(m.snapshots, s)
	return nil
}

func fixedNow() time.Time {
	return time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
}
