// Package history persists resume positions keyed by video id.
package history

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/lectern-player/lectern/filesystem"
	"github.com/lectern-player/lectern/where"
	"github.com/metafates/gache"
	"github.com/samber/mo"
)

// WatchPosition is the last known playback offset of a video.
type WatchPosition struct {
	VideoID         string    `json:"video_id"`
	Position        float64   `json:"position"`
	LastPersistedAt time.Time `json:"last_persisted_at"`
}

func (w *WatchPosition) String() string {
	return fmt.Sprintf("%s @ %s", w.VideoID, FormatSeconds(w.Position))
}

// FormatSeconds renders a position as h:mm:ss or m:ss.
func FormatSeconds(seconds float64) string {
	s := int(seconds)
	if s < 0 {
		s = 0
	}
	h, m, sec := s/3600, (s%3600)/60, s%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, sec)
	}
	return fmt.Sprintf("%d:%02d", m, sec)
}

// Store is a disk-backed key-value store of resume positions.
type Store struct {
	cacher *gache.Cache[map[string]*WatchPosition]
	mu     sync.Mutex
}

// New opens the store persisted at path.
func New(path string) *Store {
	return &Store{
		cacher: gache.New[map[string]*WatchPosition](
			&gache.Options{
				Path:       path,
				FileSystem: &filesystem.GacheFs{},
			},
		),
	}
}

var defaultStore = sync.OnceValue(func() *Store {
	return New(where.Positions())
})

// Default returns the store at where.Positions().
func Default() *Store {
	return defaultStore()
}

func (s *Store) all() (map[string]*WatchPosition, error) {
	cached, expired, err := s.cacher.Get()
	if err != nil {
		return nil, err
	}
	if expired || cached == nil {
		return make(map[string]*WatchPosition), nil
	}
	return cached, nil
}

// Get returns the saved position for videoID.
func (s *Store) Get(videoID string) (mo.Option[WatchPosition], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved, err := s.all()
	if err != nil {
		return mo.None[WatchPosition](), err
	}

	if pos, ok := saved[videoID]; ok {
		return mo.Some(*pos), nil
	}
	return mo.None[WatchPosition](), nil
}

// Save records pos. A record persisted later than pos is kept, so replays of
// an older write are harmless.
func (s *Store) Save(pos WatchPosition) error {
	if pos.VideoID == "" {
		return fmt.Errorf("save position: empty video id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	saved, err := s.all()
	if err != nil {
		return err
	}

	if existing, ok := saved[pos.VideoID]; ok && existing.LastPersistedAt.After(pos.LastPersistedAt) {
		return nil
	}

	saved[pos.VideoID] = &pos
	return s.cacher.Set(saved)
}

// List returns every saved position, most recently persisted first.
func (s *Store) List() ([]*WatchPosition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved, err := s.all()
	if err != nil {
		return nil, err
	}

	positions := make([]*WatchPosition, 0, len(saved))
	for _, p := range saved {
		positions = append(positions, p)
	}

	sort.Slice(positions, func(i, j int) bool {
		return positions[i].LastPersistedAt.After(positions[j].LastPersistedAt)
	})

	return positions, nil
}

// Remove deletes the position of videoID.
func (s *Store) Remove(videoID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved, err := s.all()
	if err != nil {
		return err
	}

	delete(saved, videoID)
	return s.cacher.Set(saved)
}
