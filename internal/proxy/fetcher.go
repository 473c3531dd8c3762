// Package proxy fetches origin pages through a CORS-bypass relay using a
// gocolly collector. One GET per call, no retries; retry policy belongs to
// callers.
package proxy

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/gocolly/colly/v2"
)

// Config controls relay addressing and collector behavior.
type Config struct {
	// RelayHost is the relay endpoint, e.g. "https://api.allorigins.win/raw".
	RelayHost string
	// RelayParam is the query parameter carrying the percent-encoded target
	// URL. Defaults to "url".
	RelayParam string
	UserAgent  string
	Timeout    time.Duration
}

// Response is the raw relay answer for a successful fetch.
type Response struct {
	Body        []byte
	ContentType string
	StatusCode  int
}

// Fetcher issues single GETs through the relay.
type Fetcher struct {
	cfg           Config
	transport     http.RoundTripper
	baseCollector *colly.Collector
}

// New builds a Fetcher around a shared base collector; each Fetch clones it.
func New(cfg Config) *Fetcher {
	if cfg.RelayParam == "" {
		cfg.RelayParam = "url"
	}
	c := colly.NewCollector(colly.Async(false))
	// The relay is an API endpoint, not a crawl target.
	c.IgnoreRobotsTxt = true
	transport := newHTTPTransport()
	c.WithTransport(transport)
	return &Fetcher{cfg: cfg, transport: transport, baseCollector: c}
}

// RelayURL wraps a target origin URL into its relay form.
func (f *Fetcher) RelayURL(target string) string {
	return f.cfg.RelayHost + "?" + f.cfg.RelayParam + "=" + url.QueryEscape(target)
}

// Fetch GETs target through the relay and returns the raw body. Transport
// failures surface as *NetworkError, non-success statuses as *HTTPError.
func (f *Fetcher) Fetch(ctx context.Context, target string) (Response, error) {
	collector := f.baseCollector.Clone()
	collector.IgnoreRobotsTxt = true
	collector.WithTransport(f.transport)
	if f.cfg.UserAgent != "" {
		collector.UserAgent = f.cfg.UserAgent
	}
	timeout := f.cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	collector.SetRequestTimeout(timeout)

	var (
		result     Response
		gotBody    bool
		failStatus int
		fetchErr   error
	)
	collector.OnResponse(func(r *colly.Response) {
		result = Response{
			Body:        append([]byte(nil), r.Body...),
			ContentType: r.Headers.Get("Content-Type"),
			StatusCode:  r.StatusCode,
		}
		gotBody = true
	})
	collector.OnError(func(r *colly.Response, err error) {
		if r != nil {
			failStatus = r.StatusCode
		}
		fetchErr = err
	})

	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(f.RelayURL(target))
	}()

	var visitErr error
	select {
	case <-ctx.Done():
		return Response{}, &NetworkError{Target: target, Err: ctx.Err()}
	case visitErr = <-done:
	}

	switch {
	case gotBody:
		return result, nil
	case failStatus >= http.StatusBadRequest:
		return Response{}, &HTTPError{Target: target, Status: failStatus}
	case fetchErr != nil:
		return Response{}, &NetworkError{Target: target, Err: fetchErr}
	case visitErr != nil:
		return Response{}, &NetworkError{Target: target, Err: visitErr}
	}
	return Response{}, &NetworkError{Target: target, Err: errNoResponse}
}

var errNoResponse = errors.New("no response received")

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
