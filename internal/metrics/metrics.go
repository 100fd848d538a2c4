// Package metrics holds the prometheus collectors of the client
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	PreviewDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vidgrab_preview_duration_seconds",
			Help:    "Duration of preview requests in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"platform"},
	)
	PreviewsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidgrab_previews_total",
			Help: "Total number of preview requests, labeled by result.",
		},
		[]string{"platform", "result"},
	)
	DownloadsStarted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidgrab_downloads_started_total",
			Help: "Total number of download runs started.",
		},
		[]string{"platform"},
	)
	DownloadOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidgrab_download_outcomes_total",
			Help: "Total number of finished download runs, labeled by outcome.",
		},
		[]string{"platform", "outcome"},
	)
	StreamReconnects = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidgrab_stream_reconnects_total",
			Help: "Total number of progress stream reconnect attempts.",
		},
		[]string{"platform"},
	)
	ActiveStreams = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "vidgrab_active_streams",
			Help: "Number of download runs currently in progress.",
		},
	)
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidgrab_http_requests_total",
			Help: "Total number of local API requests, labeled by route and status code.",
		},
		[]string{"method", "route", "status_code"},
	)
)

func init() {
	prometheus.MustRegister(PreviewDuration)
	prometheus.MustRegister(PreviewsTotal)
	prometheus.MustRegister(DownloadsStarted)
	prometheus.MustRegister(DownloadOutcomes)
	prometheus.MustRegister(StreamReconnects)
	prometheus.MustRegister(ActiveStreams)
	prometheus.MustRegister(HTTPRequests)
}

// Handler serves the default registry in the text exposition format
func Handler() http.Handler {
	return promhttp.Handler()
}
