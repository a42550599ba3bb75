// Package metrics exposes Prometheus counters for a migration run.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	ResultResolved   = "resolved"
	ResultUnresolved = "unresolved"
)

// Collector implements the cache, embed and post recorders of the pipeline.
type Collector struct {
	cacheHits    prometheus.Counter
	cacheMisses  prometheus.Counter
	posts        *prometheus.CounterVec
	embeds       *prometheus.CounterVec
	taskDuration *prometheus.HistogramVec
}

// NewCollector registers the run metrics on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mediumwxr_cache_hits_total",
			Help: "Content cache lookups served from disk",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mediumwxr_cache_misses_total",
			Help: "Content cache lookups that went to the network",
		}),
		posts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mediumwxr_posts_total",
			Help: "Rendered posts by outcome",
		}, []string{"status"}),
		embeds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mediumwxr_embeds_total",
			Help: "Embeds seen by the resolver by kind and result",
		}, []string{"kind", "result"}),
		taskDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mediumwxr_task_duration_seconds",
			Help:    "Pipeline task duration",
			Buckets: prometheus.DefBuckets,
		}, []string{"task"}),
	}

	reg.MustRegister(c.cacheHits, c.cacheMisses, c.posts, c.embeds, c.taskDuration)

	return c
}

func (c *Collector) RecordLookup(url, cacheKey string, hit bool) {
	if hit {
		c.cacheHits.Inc()
	} else {
		c.cacheMisses.Inc()
	}
}

func (c *Collector) RecordEmbed(kind string, resolved bool) {
	result := ResultUnresolved
	if resolved {
		result = ResultResolved
	}
	c.embeds.WithLabelValues(kind, result).Inc()
}

func (c *Collector) RecordPost(status string) {
	c.posts.WithLabelValues(status).Inc()
}

func (c *Collector) RecordTask(task string, duration time.Duration) {
	c.taskDuration.WithLabelValues(task).Observe(duration.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
