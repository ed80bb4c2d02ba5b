// Package observe provides application-wide observability primitives for
// Synthia: OpenTelemetry metrics, distributed tracing, and the provider
// setup that exposes them for Prometheus scraping.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [InitProvider] so that metrics can still
// be scraped via the standard /metrics endpoint. A package-level default
// [Metrics] instance ([DefaultMetrics]) is provided for convenience; tests
// should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all Synthia metrics.
const meterName = "github.com/executiveusa/synthia"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation. A nil *Metrics is valid and records nothing,
// which keeps call sites free of guards.
type Metrics struct {
	// --- Latency histograms per call-pipeline stage ---

	// STTDuration tracks speech-to-text transcription latency.
	STTDuration metric.Float64Histogram

	// LLMDuration tracks reasoning (LLM completion) latency.
	LLMDuration metric.Float64Histogram

	// TTSDuration tracks text-to-speech synthesis latency.
	TTSDuration metric.Float64Histogram

	// TurnDuration tracks end-to-end utterance-to-audio latency.
	TurnDuration metric.Float64Histogram

	// --- Counters ---

	// ProviderRequests counts provider API calls. Use with attributes:
	//   attribute.String("provider", ...), attribute.String("kind", ...), attribute.String("status", ...)
	ProviderRequests metric.Int64Counter

	// UtteranceBytes counts μ-law bytes of completed caller utterances.
	UtteranceBytes metric.Int64Counter

	// JobsDispatched counts pipeline jobs submitted after calls.
	JobsDispatched metric.Int64Counter

	// ProviderErrors counts provider errors. Use with attributes:
	//   attribute.String("provider", ...), attribute.String("kind", ...)
	ProviderErrors metric.Int64Counter

	// --- Gauges ---

	// ActiveCalls tracks the number of live phone calls.
	ActiveCalls metric.Int64UpDownCounter

	// HTTPRequestDuration tracks HTTP request processing time. Use with
	// attributes: attribute.String("method", ...), attribute.String("path", ...)
	HTTPRequestDuration metric.Float64Histogram
}

// latencyBuckets defines histogram bucket boundaries (in seconds) optimised
// for voice-pipeline latencies.
var latencyBuckets = []float64{
	0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	// Histograms.
	if met.STTDuration, err = m.Float64Histogram("synthia.stt.duration",
		metric.WithDescription("Latency of speech-to-text transcription."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.LLMDuration, err = m.Float64Histogram("synthia.llm.duration",
		metric.WithDescription("Latency of reasoning completions."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.TTSDuration, err = m.Float64Histogram("synthia.tts.duration",
		metric.WithDescription("Latency of text-to-speech synthesis."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.TurnDuration, err = m.Float64Histogram("synthia.turn.duration",
		metric.WithDescription("End-to-end latency from complete utterance to response audio."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	// Counters.
	if met.ProviderRequests, err = m.Int64Counter("synthia.provider.requests",
		metric.WithDescription("Total provider API requests by provider, kind, and status."),
	); err != nil {
		return nil, err
	}
	if met.UtteranceBytes, err = m.Int64Counter("synthia.utterance.bytes",
		metric.WithDescription("Total μ-law bytes of completed caller utterances."),
		metric.WithUnit("By"),
	); err != nil {
		return nil, err
	}
	if met.JobsDispatched, err = m.Int64Counter("synthia.jobs.dispatched",
		metric.WithDescription("Total pipeline jobs dispatched after calls."),
	); err != nil {
		return nil, err
	}
	if met.ProviderErrors, err = m.Int64Counter("synthia.provider.errors",
		metric.WithDescription("Total provider errors by provider and kind."),
	); err != nil {
		return nil, err
	}

	// Gauges (UpDownCounters).
	if met.ActiveCalls, err = m.Int64UpDownCounter("synthia.active_calls",
		metric.WithDescription("Number of live phone calls."),
	); err != nil {
		return nil, err
	}

	// HTTP histogram.
	if met.HTTPRequestDuration, err = m.Float64Histogram("synthia.http.request.duration",
		metric.WithDescription("HTTP request latency by method and path."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. Panics if instrument creation fails (should not happen with the
// global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// Attr is a convenience alias for [attribute.String] to reduce verbosity at
// call sites.
func Attr(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

// RecordProviderRequest records a provider request with the standard
// attribute set. kind is one of "stt", "llm", "tts".
func (m *Metrics) RecordProviderRequest(ctx context.Context, provider, kind, status string) {
	if m == nil {
		return
	}
	m.ProviderRequests.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("provider", provider),
			attribute.String("kind", kind),
			attribute.String("status", status),
		),
	)
}

// RecordProviderError records a provider error counter increment.
func (m *Metrics) RecordProviderError(ctx context.Context, provider, kind string) {
	if m == nil {
		return
	}
	m.ProviderErrors.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("provider", provider),
			attribute.String("kind", kind),
		),
	)
}

// RecordStageDuration records elapsed time on the histogram for one pipeline
// stage: "stt", "llm", "tts" or "turn".
func (m *Metrics) RecordStageDuration(ctx context.Context, stage string, elapsed time.Duration) {
	if m == nil {
		return
	}
	var h metric.Float64Histogram
	switch stage {
	case "stt":
		h = m.STTDuration
	case "llm":
		h = m.LLMDuration
	case "tts":
		h = m.TTSDuration
	case "turn":
		h = m.TurnDuration
	default:
		return
	}
	h.Record(ctx, elapsed.Seconds())
}

// RecordUtterance records the size of one completed caller utterance.
func (m *Metrics) RecordUtterance(ctx context.Context, mulawBytes int) {
	if m == nil {
		return
	}
	m.UtteranceBytes.Add(ctx, int64(mulawBytes))
}

// RecordJobDispatched increments the dispatched-jobs counter.
func (m *Metrics) RecordJobDispatched(ctx context.Context) {
	if m == nil {
		return
	}
	m.JobsDispatched.Add(ctx, 1)
}

// CallStarted increments the active-call gauge.
func (m *Metrics) CallStarted(ctx context.Context) {
	if m == nil {
		return
	}
	m.ActiveCalls.Add(ctx, 1)
}

// RecordHTTPRequest records one HTTP request's processing time.
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestDuration.Record(ctx, elapsed.Seconds(),
		metric.WithAttributes(
			attribute.String("method", method),
			attribute.String("path", path),
		),
	)
}

// CallEnded decrements the active-call gauge.
func (m *Metrics) CallEnded(ctx context.Context) {
	if m == nil {
		return
	}
	m.ActiveCalls.Add(ctx, -1)
}
