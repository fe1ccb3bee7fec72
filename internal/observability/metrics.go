package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the map service.
type Metrics struct {
	// Feed fetch metrics.
	FeedRequests      *prometheus.CounterVec   // labels: feed={earthquakes,plates}, outcome={success,error}
	FeedFetchDuration *prometheus.HistogramVec // labels: feed={earthquakes,plates}
	FeaturesSkipped   prometheus.Counter

	// Rendering metrics.
	MarkersRendered *prometheus.CounterVec // labels: bin={0..5}
	RenderDuration  prometheus.Histogram
	LayerErrors     *prometheus.CounterVec // labels: layer={earthquakes,plates}

	// Marker publishing metrics.
	MarkersPublished prometheus.Counter
	PublishErrors    prometheus.Counter

	TileTokenValid prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.FeedRequests,
		m.FeedFetchDuration,
		m.FeaturesSkipped,
		m.MarkersRendered,
		m.RenderDuration,
		m.LayerErrors,
		m.MarkersPublished,
		m.PublishErrors,
		m.TileTokenValid,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		FeedRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quakemap",
			Name:      "feed_requests_total",
			Help:      "Feed fetches by feed and outcome.",
		}, []string{"feed", "outcome"}),
		FeedFetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "quakemap",
			Name:      "feed_fetch_duration_seconds",
			Help:      "Duration of a feed fetch including decode.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"feed"}),
		FeaturesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quakemap",
			Name:      "features_skipped_total",
			Help:      "Earthquake features dropped for missing point coordinates.",
		}),
		MarkersRendered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quakemap",
			Name:      "markers_rendered_total",
			Help:      "Earthquake markers rendered by legend bin.",
		}, []string{"bin"}),
		RenderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "quakemap",
			Name:      "render_duration_seconds",
			Help:      "Duration of a full scene render (both layers).",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		LayerErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quakemap",
			Name:      "layer_errors_total",
			Help:      "Layers left empty because their feed failed.",
		}, []string{"layer"}),
		MarkersPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quakemap",
			Name:      "markers_published_total",
			Help:      "Markers written to the marker topic.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quakemap",
			Name:      "publish_errors_total",
			Help:      "Failed marker batch publishes.",
		}),
		TileTokenValid: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "quakemap",
			Name:      "tile_token_valid",
			Help:      "1 when the tile provider accepted the access token at startup, 0 otherwise.",
		}),
	}
}
