package proxy

import (
	"fmt"
	"net/http"

	"github.com/jammie-jelly/Roadmap.sh-009/internal/cache"

	"github.com/sirupsen/logrus"
)

// CacheStatusHeader tells the client whether its response came from the
// store (HIT), a live backend call (MISS), or a failed one (ERROR).
const CacheStatusHeader = "X-Cache"

// Cache status values.
const (
	StatusHit   = "HIT"
	StatusMiss  = "MISS"
	StatusError = "ERROR"
)

// Engine orchestrates the per-request flow: build key, consult the store,
// replay on a hit, forward and store on a miss.
type Engine struct {
	store     cache.Store
	forwarder *Forwarder
}

// NewEngine wires an engine with its store and forwarder.
func NewEngine(store cache.Store, forwarder *Forwarder) *Engine {
	return &Engine{
		store:     store,
		forwarder: forwarder,
	}
}

// ServeHTTP implements http.Handler. Every request gets exactly one
// well-formed response carrying the cache-status header.
func (e *Engine) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := cache.Key(r.Method, r.URL.Path, r.URL.Query())
	logrus.Debugf("Cache key for %s %s: %q", r.Method, r.URL.RequestURI(), key)

	if entry, ok := e.store.Get(key); ok {
		e.serveHit(w, r, entry)
		return
	}

	e.serveMiss(w, r, key)
}

func (e *Engine) serveHit(w http.ResponseWriter, r *http.Request, entry *cache.Entry) {
	logrus.Infof("Serving from cache: %s %s", r.Method, r.URL.RequestURI())

	entry.WriteTo(w)
	// Overwrites any stored copy of the header from a prior run.
	w.Header().Set(CacheStatusHeader, StatusHit)
	w.WriteHeader(entry.StatusCode)
	if _, err := w.Write(entry.Body); err != nil {
		logrus.Errorf("Failed to write cached response: %v", err)
	}
}

func (e *Engine) serveMiss(w http.ResponseWriter, r *http.Request, key string) {
	result, err := e.forwarder.Forward(r.Context(), r, r.Body)
	if err != nil {
		e.serveUpstreamError(w, r, err)
		return
	}

	// Caching is best-effort: a failed put never degrades the response.
	if cacheable(r, result) {
		entry := cache.NewEntry(result.StatusCode, result.Header, result.Body)
		if err := e.store.Put(key, entry); err != nil {
			logrus.Errorf("Failed to cache response for %s: %v", r.URL.RequestURI(), err)
		}
	}

	for k, values := range result.Header {
		for _, value := range values {
			w.Header().Add(k, value)
		}
	}
	w.Header().Set(CacheStatusHeader, StatusMiss)
	w.WriteHeader(result.StatusCode)
	if _, err := w.Write(result.Body); err != nil {
		logrus.Errorf("Failed to write response body: %v", err)
	}

	logrus.Infof("Forwarded request: %s %s -> %d", r.Method, r.URL.RequestURI(), result.StatusCode)
}

func (e *Engine) serveUpstreamError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusBadGateway
	if IsTimeout(err) {
		status = http.StatusGatewayTimeout
	}
	logrus.Errorf("Forward failed for %s %s: %v", r.Method, r.URL.RequestURI(), err)

	w.Header().Set(CacheStatusHeader, StatusError)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	fmt.Fprintf(w, "%d upstream request failed\n", status)
}

// cacheable reports whether a forwarded response should be stored.
// Only successful GETs are kept.
func cacheable(r *http.Request, result *ForwardResult) bool {
	return r.Method == http.MethodGet && result.StatusCode == http.StatusOK
}
