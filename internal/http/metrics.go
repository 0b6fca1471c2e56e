package http

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the extractor's Prometheus series. It implements soundcloud.Recorder.
type Metrics struct {
	FetchTotal     *prometheus.CounterVec
	BridgeTotal    *prometheus.CounterVec
	StreamDuration *prometheus.HistogramVec
	RequestsTotal  *prometheus.CounterVec
}

// NewMetrics creates the metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	metrics := &Metrics{
		FetchTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "soundbridge_fetch_total",
				Help: "Total number of remote SoundCloud fetches by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		BridgeTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "soundbridge_bridge_total",
				Help: "Total number of bridge attempts by outcome",
			},
			[]string{"outcome"},
		),
		StreamDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "soundbridge_stream_duration_seconds",
				Help:    "Time spent resolving playable streams",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"outcome"},
		),
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "soundbridge_http_requests_total",
				Help: "Total number of API requests by route and status code",
			},
			[]string{"route", "code"},
		),
	}

	reg.MustRegister(
		metrics.FetchTotal,
		metrics.BridgeTotal,
		metrics.StreamDuration,
		metrics.RequestsTotal,
	)

	return metrics
}

// RegisterHistorySize exports the number of URLs held by history as a gauge.
func RegisterHistorySize(reg prometheus.Registerer, history interface{ Len() int }) {
	reg.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "soundbridge_history_size",
			Help: "Number of track URLs currently remembered by the play history",
		},
		func() float64 { return float64(history.Len()) },
	))
}

func (m *Metrics) ObserveFetch(operation, outcome string) {
	m.FetchTotal.WithLabelValues(operation, outcome).Inc()
}

func (m *Metrics) ObserveBridge(outcome string) {
	m.BridgeTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveStream(outcome string, elapsed time.Duration) {
	m.StreamDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

func (m *Metrics) recordRequest(route string, code int) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(route, statusLabel(code)).Inc()
}

func statusLabel(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
