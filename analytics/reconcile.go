package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/lectern-player/lectern/constant"
	"github.com/lectern-player/lectern/log"
	"github.com/lectern-player/lectern/network"
)

// backoff is the pause before upload i: doubling from 100ms with up to 100ms of jitter, capped at 5s.
var backoff = func(i int) time.Duration {
	d := time.Duration(1<<min(i, 6)) * 100 * time.Millisecond
	d = min(d, 5*time.Second)
	return d + time.Duration(rand.Intn(100))*time.Millisecond
}

// Reconcile uploads every queued snapshot to endpoint and drops them from the
// queue when all of them were accepted. Snapshots recorded meanwhile stay
// queued. It returns the number of accepted uploads.
func Reconcile(ctx context.Context, q *Queue, endpoint, token string) (int, error) {
	snapshots, err := q.Pending()
	if err != nil {
		return 0, err
	}
	if len(snapshots) == 0 {
		return 0, nil
	}

	sent := 0
	for i, s := range snapshots {
		if err := ctx.Err(); err != nil {
			return sent, err
		}

		select {
		case <-ctx.Done():
			return sent, ctx.Err()
		case <-time.After(backoff(i)):
		}

		if err := upload(ctx, endpoint, token, s); err != nil {
			log.WithFields(log.Fields{
				"video_id": s.VideoID,
				"endpoint": endpoint,
			}).Warnf("analytics upload failed: %v", err)
			continue
		}
		sent++
	}

	if sent == len(snapshots) {
		return sent, q.Drop(len(snapshots))
	}

	return sent, fmt.Errorf("%d of %d snapshots were not accepted", len(snapshots)-sent, len(snapshots))
}

func upload(ctx context.Context, endpoint, token string, s Snapshot) error {
	body, err := json.Marshal(s)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", constant.UserAgent)

	resp, err := network.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	return nil
}
