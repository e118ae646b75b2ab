package network

import (
	"context"
	"sync"
	"time"

	"github.com/lectern-player/lectern/log"
)

// Monitor tracks connectivity and notifies subscribers on transitions.
type Monitor struct {
	mu     sync.Mutex
	online bool
	next   int
	subs   map[int]func(online bool)
}

// NewMonitor returns a monitor with the given initial connectivity.
func NewMonitor(online bool) *Monitor {
	return &Monitor{
		online: online,
		subs:   make(map[int]func(bool)),
	}
}

var defaultMonitor = sync.OnceValue(func() *Monitor {
	return NewMonitor(true)
})

// Default returns the process-wide monitor.
func Default() *Monitor {
	return defaultMonitor()
}

func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// Subscribe registers fn for connectivity transitions and returns its
// unsubscribe function, which is safe to call more than once.
func (m *Monitor) Subscribe(fn func(online bool)) (unsubscribe func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.next
	m.next++
	m.subs[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			delete(m.subs, id)
		})
	}
}

// Subscribers returns the number of live subscriptions.
func (m *Monitor) Subscribers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subs)
}

// Set records the current connectivity. Subscribers only hear about changes.
func (m *Monitor) Set(online bool) {
	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return
	}
	m.online = online

	fns := make([]func(bool), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	log.WithFields(log.Fields{"online": online}).Info("connectivity changed")

	for _, fn := range fns {
		fn(online)
	}
}

// Watch probes url every interval until ctx is done. Any HTTP response counts
// as online; a transport failure counts as offline.
func (m *Monitor) Watch(ctx context.Context, url string, interval time.Duration) {
	if url == "" || interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		m.probe(ctx, url, interval)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (m *Monitor) probe(ctx context.Context, url string, timeout time.Duration) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	_, err := Probe(ctx, url)
	if ctx.Err() != nil && err != nil {
		// the parent was canceled or the probe ran out of time
		if ctx.Err() == context.DeadlineExceeded {
			m.Set(false)
		}
		return
	}
	m.Set(err == nil)
}
