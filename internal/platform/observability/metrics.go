package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	LinksProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "relay_links_processed_total",
		Help: "The total number of message links processed, by terminal status",
	}, []string{"status"})

	FetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "relay_fetches_total",
		Help: "The total number of fetch attempts, by provider and outcome",
	}, []string{"provider", "status"})

	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "relay_cache_hits_total",
		Help: "The total number of content cache hits",
	})

	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "relay_cache_misses_total",
		Help: "The total number of content cache misses",
	})

	DeliveriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "relay_deliveries_total",
		Help: "The total number of completed deliveries, by content kind",
	}, []string{"kind"})

	MediaFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "relay_media_fallbacks_total",
		Help: "The total number of media sends that fell back to text",
	})

	MediaDownloadBytes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "relay_media_download_bytes",
		Help:    "Size of media payloads downloaded for relaying",
		Buckets: prometheus.ExponentialBuckets(1024, 4, 10),
	})
)
