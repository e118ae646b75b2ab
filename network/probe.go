package network

import (
	"context"
	"fmt"
	"net/http"

	"github.com/lectern-player/lectern/constant"
	"github.com/lectern-player/lectern/fault"
)

// Probe issues a HEAD request to url and returns the response status.
// A non-nil error means the host could not be reached at all.
func Probe(ctx context.Context, url string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", constant.UserAgent)

	resp, err := Client.Do(req)
	if err != nil {
		return 0, err
	}
	resp.Body.Close()

	return resp.StatusCode, nil
}

// ProbeFault checks that url is reachable and playable over HTTP.
// It returns the raw fault to classify, or false when the source looks fine.
func ProbeFault(ctx context.Context, url string) (fault.Raw, bool) {
	status, err := Probe(ctx, url)
	if err != nil {
		if ctx.Err() != nil {
			return fault.Raw{Code: fault.CodeAborted, Message: "probe canceled", Err: err}, true
		}
		return fault.Raw{Code: fault.CodeNetwork, Message: "source unreachable", Err: err}, true
	}

	// some CDNs refuse HEAD outright
	if status < http.StatusBadRequest || status == http.StatusMethodNotAllowed {
		return fault.Raw{}, false
	}

	return fault.Raw{
		Status:  status,
		Message: fmt.Sprintf("source responded %s", http.StatusText(status)),
	}, true
}
