package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "beacon",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"node", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "beacon",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"node", "method", "path", "status"},
	)
	codecDecodes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "beacon",
			Subsystem: "codec",
			Name:      "decode_total",
			Help:      "Decode attempts by codec, profile and result reason.",
		},
		[]string{"codec", "profile", "result"},
	)
	codecEncodes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "beacon",
			Subsystem: "codec",
			Name:      "encode_total",
			Help:      "Successful encodes by codec and profile.",
		},
		[]string{"codec", "profile"},
	)
	codecPayloadBytes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "beacon",
			Subsystem: "codec",
			Name:      "payload_bytes",
			Help:      "Encoded payload size in bytes.",
			Buckets:   prometheus.ExponentialBuckets(8, 2, 8),
		},
		[]string{"codec", "direction"},
	)
	transportPublishes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "beacon",
			Subsystem: "transport",
			Name:      "publish_total",
			Help:      "Hand-offs of encoded payloads to a transport.",
		},
		[]string{"transport", "result"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, codecDecodes, codecEncodes, codecPayloadBytes, transportPublishes)
	})
}

func RecordHTTPRequest(node, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(node, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(node, method, path, statusLabel).Observe(duration.Seconds())
}

// RecordDecode counts one decode attempt. result is a protocol.Reason label.
func RecordDecode(codec, profile, result string, size int) {
	RegisterMetrics()
	codecDecodes.WithLabelValues(codec, profile, result).Inc()
	codecPayloadBytes.WithLabelValues(codec, "decode").Observe(float64(size))
}

func RecordEncode(codec, profile string, size int) {
	RegisterMetrics()
	codecEncodes.WithLabelValues(codec, profile).Inc()
	codecPayloadBytes.WithLabelValues(codec, "encode").Observe(float64(size))
}

func RecordPublish(transport string, err error) {
	RegisterMetrics()
	result := "ok"
	if err != nil {
		result = "error"
	}
	transportPublishes.WithLabelValues(transport, result).Inc()
}
