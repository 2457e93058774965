package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	methodsEncoded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "amqpwire",
			Subsystem: "method",
			Name:      "encoded_total",
			Help:      "Method payloads encoded.",
		},
		[]string{"method"},
	)
	methodBytes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "amqpwire",
			Subsystem: "method",
			Name:      "encoded_bytes_total",
			Help:      "Bytes written for encoded method payloads.",
		},
		[]string{"method"},
	)
	methodFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "amqpwire",
			Subsystem: "method",
			Name:      "encode_failures_total",
			Help:      "Method payloads that failed to encode.",
		},
		[]string{"method", "reason"},
	)
)

// Registry holds the encoder collectors. It is separate from the default
// registry so importing this package has no global side effects.
var Registry = prometheus.NewRegistry()

func RegisterMetrics() {
	registerOnce.Do(func() {
		Registry.MustRegister(methodsEncoded, methodBytes, methodFailures)
	})
}

func RecordEncode(method string, bytes uint64) {
	RegisterMetrics()
	methodsEncoded.WithLabelValues(method).Inc()
	methodBytes.WithLabelValues(method).Add(float64(bytes))
}

func RecordEncodeFailure(method, reason string) {
	RegisterMetrics()
	methodFailures.WithLabelValues(method, reason).Inc()
}
