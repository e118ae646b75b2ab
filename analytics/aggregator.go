// Package analytics aggregates per-session watch statistics and queues them
// for upload.
package analytics

import (
	"math"
	"time"
)

// Snapshot is the state of one viewing session.
type Snapshot struct {
	VideoID               string    `json:"video_id"`
	WatchTimeSeconds      int       `json:"watch_time_seconds"`
	CompletionRatePercent float64   `json:"completion_rate_percent"`
	BufferingEvents       int       `json:"buffering_events"`
	QualityChanges        int       `json:"quality_changes"`
	ErrorCount            int       `json:"error_count"`
	SessionStart          time.Time `json:"session_start"`
	SessionEnd            time.Time `json:"session_end,omitzero"`
}

// Aggregator accumulates a Snapshot. Every counter only grows.
// It is not safe for concurrent use; the playback loop owns it.
type Aggregator struct {
	snap    Snapshot
	playing bool
}

func New(videoID string, start time.Time) *Aggregator {
	return &Aggregator{snap: Snapshot{VideoID: videoID, SessionStart: start}}
}

// SetPlaying tells the aggregator whether playback is currently running.
func (a *Aggregator) SetPlaying(playing bool) {
	a.playing = playing
}

// Tick adds one second of watch time while playing.
func (a *Aggregator) Tick() {
	if a.playing {
		a.snap.WatchTimeSeconds++
	}
}

// Progress updates the completion rate from a playback position. The rate
// keeps its maximum so seeking back never lowers it.
func (a *Aggregator) Progress(current, duration float64) {
	if !a.playing {
		return
	}
	if rate := Completion(current, duration); rate > a.snap.CompletionRatePercent {
		a.snap.CompletionRatePercent = rate
	}
}

// Completed marks the whole video as watched.
func (a *Aggregator) Completed() {
	a.snap.CompletionRatePercent = 100
}

func (a *Aggregator) BufferingStarted() { a.snap.BufferingEvents++ }
func (a *Aggregator) QualityChanged()   { a.snap.QualityChanges++ }
func (a *Aggregator) ErrorOccurred()    { a.snap.ErrorCount++ }

func (a *Aggregator) Snapshot() Snapshot {
	return a.snap
}

// Flush closes the session at end and returns the final snapshot.
func (a *Aggregator) Flush(end time.Time) Snapshot {
	a.playing = false
	a.snap.SessionEnd = end
	return a.snap
}

// Completion returns current/duration as a percentage clamped to [0, 100].
func Completion(current, duration float64) float64 {
	if duration <= 0 || math.IsNaN(current) || math.IsNaN(duration) || math.IsInf(duration, 0) {
		return 0
	}
	return math.Max(0, math.Min(100, current/duration*100))
}
