package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var metrics = struct {
	hits      prometheus.Counter
	misses    prometheus.Counter
	evictions prometheus.Counter
	errors    *prometheus.CounterVec
}{
	hits: promauto.NewCounter(prometheus.CounterOpts{
		Name: "proxy_cache_hits_total",
		Help: "Total number of cache hits",
	}),
	misses: promauto.NewCounter(prometheus.CounterOpts{
		Name: "proxy_cache_misses_total",
		Help: "Total number of cache misses",
	}),
	evictions: promauto.NewCounter(prometheus.CounterOpts{
		Name: "proxy_cache_evictions_total",
		Help: "Total number of entries evicted on expiry",
	}),
	errors: promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "proxy_cache_errors_total",
		Help: "Total number of cache operation errors",
	}, []string{"operation"}), // "get", "put", "clear"
}
