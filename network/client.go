// Package network holds the shared HTTP client, source reachability probes and
// the process-wide connectivity monitor.
package network

import (
	"net/http"
	"net/http/cookiejar"
	"time"

	"golang.org/x/net/publicsuffix"
)

// Client is shared by probes and analytics uploads. The cookie jar keeps
// signed CDN cookies between the manifest probe and later requests.
var Client = &http.Client{
	Timeout:   time.Minute,
	Transport: newTransport(),
	Jar:       newJar(),
}

func newTransport() *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 20
	t.MaxIdleConnsPerHost = 10
	t.IdleConnTimeout = 30 * time.Second
	t.ResponseHeaderTimeout = 15 * time.Second
	t.ExpectContinueTimeout = 5 * time.Second
	return t
}

func newJar() http.CookieJar {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil
	}
	return jar
}
