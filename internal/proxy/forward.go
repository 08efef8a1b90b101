package proxy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultForwardTimeout bounds a single backend request.
const DefaultForwardTimeout = 30 * time.Second

// Headers dropped from the inbound request before it reaches the backend.
// Host is replaced by the transport with the backend's; stripping
// Cache-Control keeps clients from steering the backend's own caches.
var requestHeaderFilter = []string{"Host", "Connection", "Cache-Control"}

// Headers dropped from the backend response before it is cached or replayed.
var responseHeaderFilter = []string{"Connection", "Keep-Alive", "Transfer-Encoding"}

// ForwardResult is a fully-buffered backend response.
type ForwardResult struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Forwarder issues the equivalent of an inbound request against the
// configured backend base URL.
type Forwarder struct {
	base   *url.URL
	client *http.Client
}

// NewForwarder creates a forwarder for the given backend base URL.
// A zero timeout falls back to DefaultForwardTimeout.
func NewForwarder(base *url.URL, timeout time.Duration) *Forwarder {
	if timeout <= 0 {
		timeout = DefaultForwardTimeout
	}
	return &Forwarder{
		base:   base,
		client: &http.Client{Timeout: timeout},
	}
}

// Forward sends method/path/query/headers/body to the backend and buffers
// the response. Exactly one attempt; the caller decides what a failure
// looks like to the client.
func (f *Forwarder) Forward(ctx context.Context, r *http.Request, body io.Reader) (*ForwardResult, error) {
	target := f.targetURL(r)
	logrus.Debugf("Forwarding %s %s", r.Method, target)

	req, err := http.NewRequestWithContext(ctx, r.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("building backend request: %w", err)
	}

	copyFilteredHeaders(req.Header, r.Header, requestHeaderFilter)

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading backend response: %w", err)
	}

	header := make(http.Header, len(resp.Header))
	copyFilteredHeaders(header, resp.Header, responseHeaderFilter)

	logrus.Debugf("Backend answered %d for %s %s in %s", resp.StatusCode, r.Method, target, time.Since(start))
	return &ForwardResult{
		StatusCode: resp.StatusCode,
		Header:     header,
		Body:       respBody,
	}, nil
}

// IsTimeout reports whether a forward failure was a timeout rather than a
// connection problem.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func (f *Forwarder) targetURL(r *http.Request) string {
	u := *f.base
	u.Path = strings.TrimSuffix(u.Path, "/") + r.URL.Path
	u.RawQuery = r.URL.RawQuery
	return u.String()
}

func copyFilteredHeaders(dst, src http.Header, filter []string) {
	for key, values := range src {
		if headerFiltered(key, filter) {
			continue
		}
		for _, value := range values {
			dst.Add(key, value)
		}
	}
}

func headerFiltered(key string, filter []string) bool {
	for _, f := range filter {
		if strings.EqualFold(key, f) {
			return true
		}
	}
	return false
}
