// Package observability provides Prometheus metrics for chat client calls
// and HTTP middleware for the mock backend.
package observability

import (
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// LLMBuckets defines histogram buckets suited for completion latencies,
// ranging from 100ms to 120s.
var LLMBuckets = []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120}

var (
	// ClientRequestsTotal counts chat completion calls by model, mode
	// (buffered/stream) and status class.
	ClientRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatgpt_client_requests_total",
			Help: "Chat completion requests",
		},
		[]string{"model", "mode", "status"},
	)

	// ClientRequestDuration records time until response headers arrive.
	ClientRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chatgpt_client_request_duration_seconds",
			Help:    "Time to response headers",
			Buckets: LLMBuckets,
		},
		[]string{"model", "mode"},
	)

	// ClientStreamsActive tracks stream bodies handed out and not yet closed.
	ClientStreamsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "chatgpt_client_streams_active",
			Help: "Open streaming response bodies",
		},
	)

	// ClientTokensTotal counts tokens reported by buffered responses.
	ClientTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatgpt_client_tokens_total",
			Help: "Token count",
		},
		[]string{"model", "direction"},
	)

	// ServerRequestsTotal counts requests served by MetricsMiddleware.
	ServerRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatgpt_mock_requests_total",
			Help: "Mock backend requests",
		},
		[]string{"method", "status"},
	)

	// ServerRequestDuration records request duration in MetricsMiddleware.
	ServerRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chatgpt_mock_request_duration_seconds",
			Help:    "Mock backend request duration",
			Buckets: LLMBuckets,
		},
		[]string{"method"},
	)
)

func init() {
	prometheus.MustRegister(
		ClientRequestsTotal,
		ClientRequestDuration,
		ClientStreamsActive,
		ClientTokensTotal,
		ServerRequestsTotal,
		ServerRequestDuration,
	)
}

// StatusClass turns an HTTP status into a label like "2xx". Zero means the
// request never got a response.
func StatusClass(code int) string {
	if code == 0 {
		return "error"
	}
	return strconv.Itoa(code/100) + "xx"
}

// ObserveRequest records one chat completion call.
func ObserveRequest(model, mode string, status int, d time.Duration) {
	ClientRequestsTotal.WithLabelValues(model, mode, StatusClass(status)).Inc()
	ClientRequestDuration.WithLabelValues(model, mode).Observe(d.Seconds())
}

// RecordUsage adds the token counters of a buffered response.
func RecordUsage(model string, promptTokens, completionTokens int) {
	if promptTokens > 0 {
		ClientTokensTotal.WithLabelValues(model, "input").Add(float64(promptTokens))
	}
	if completionTokens > 0 {
		ClientTokensTotal.WithLabelValues(model, "output").Add(float64(completionTokens))
	}
}

// TrackStream increments ClientStreamsActive and returns body wrapped so the
// gauge is decremented exactly once on Close. Reads pass through untouched.
func TrackStream(body io.ReadCloser) io.ReadCloser {
	ClientStreamsActive.Inc()
	return &trackedBody{ReadCloser: body}
}

type trackedBody struct {
	io.ReadCloser
	once sync.Once
}

func (b *trackedBody) Close() error {
	b.once.Do(ClientStreamsActive.Dec)
	return b.ReadCloser.Close()
}
