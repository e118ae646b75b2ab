package analytics

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/lectern-player/lectern/filesystem"
)

// Sink receives finished session snapshots.
type Sink interface {
	Record(Snapshot) error
}

// Queue is a JSON-lines file of snapshots waiting to be uploaded.
type Queue struct {
	path string
	mu   sync.Mutex
}

func NewQueue(path string) *Queue {
	return &Queue{path: path}
}

func (q *Queue) Path() string {
	return q.path
}

// Record appends s to the queue.
func (q *Queue) Record(s Snapshot) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if err := filesystem.API().MkdirAll(filepath.Dir(q.path), os.ModePerm); err != nil {
		return err
	}

	f, err := filesystem.API().OpenFile(q.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	return json.NewEncoder(f).Encode(s)
}

// Pending returns the queued snapshots. Lines that fail to decode are skipped.
func (q *Queue) Pending() ([]Snapshot, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.read()
}

func (q *Queue) read() ([]Snapshot, error) {
	content, err := filesystem.API().ReadFile(q.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var snapshots []Snapshot
	decoder := json.NewDecoder(bytes.NewReader(content))
	for decoder.More() {
		var s Snapshot
		if err := decoder.Decode(&s); err != nil {
			break
		}
		snapshots = append(snapshots, s)
	}

	return snapshots, nil
}

// Drop removes the first n snapshots, keeping anything recorded after them.
func (q *Queue) Drop(n int) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	snapshots, err := q.read()
	if err != nil || len(snapshots) == 0 {
		return err
	}

	return q.rewrite(snapshots[min(n, len(snapshots)):])
}

// Clear empties the queue.
func (q *Queue) Clear() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	exists, err := filesystem.API().Exists(q.path)
	if err != nil || !exists {
		return err
	}

	return q.rewrite(nil)
}

func (q *Queue) rewrite(snapshots []Snapshot) error {
	f, err := filesystem.API().OpenFile(q.path, os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	for _, s := range snapshots {
		if err := encoder.Encode(s); err != nil {
			return err
		}
	}
	return nil
}
