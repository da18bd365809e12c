package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Result labels for CaptionRequestsTotal and CaptionDurationSeconds.
const (
	ResultSuccess       = "success"
	ResultBadRequest    = "bad_request"
	ResultMisconfigured = "misconfigured"
	ResultTimeout       = "timeout"
	ResultUpstreamError = "upstream_error"
	ResultBadResponse   = "bad_response"
	ResultError         = "error"
)

var (
	once sync.Once

	// CaptionRequestsTotal counts caption requests by outcome.
	CaptionRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "caption",
		Subsystem: "relay",
		Name:      "requests_total",
		Help:      "Total number of caption requests handled by the relay, labeled by result.",
	}, []string{"result"})

	// CaptionDurationSeconds is the time spent waiting on the provider per request.
	CaptionDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "caption",
		Subsystem: "relay",
		Name:      "provider_duration_seconds",
		Help:      "Time spent in the outbound captioning call, labeled by result.",
		Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60, 120},
	}, []string{"result"})

	// UpstreamResponsesTotal counts provider replies by HTTP status code.
	UpstreamResponsesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "caption",
		Subsystem: "relay",
		Name:      "upstream_responses_total",
		Help:      "Total number of responses received from the captioning provider, labeled by status code.",
	}, []string{"provider", "code"})

	// UploadBytes is the size of accepted image uploads.
	UploadBytes = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "caption",
		Subsystem: "relay",
		Name:      "upload_bytes",
		Help:      "Size in bytes of images accepted for captioning.",
		Buckets:   prometheus.ExponentialBuckets(16<<10, 4, 7),
	})
)

// Register registers relay metrics with the default Prometheus registry.
// Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			CaptionRequestsTotal,
			CaptionDurationSeconds,
			UpstreamResponsesTotal,
			UploadBytes,
		)
	})
}

// ObserveUpstream records one provider reply.
func ObserveUpstream(provider string, statusCode int) {
	UpstreamResponsesTotal.WithLabelValues(provider, strconv.Itoa(statusCode)).Inc()
}
