package observe

import (
	"context"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestNewMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	m, err := NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}

	ctx := context.Background()
	m.RecordProviderRequest(ctx, "openai/gpt-4o-mini", "llm", "ok")
	m.RecordStageDuration(ctx, "stt", 120*time.Millisecond)
	m.RecordUtterance(ctx, 16000)
	m.CallStarted(ctx)
	m.CallEnded(ctx)

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(rm.ScopeMetrics) == 0 {
		t.Fatal("no metrics collected")
	}

	names := map[string]bool{}
	for _, sm := range rm.ScopeMetrics {
		for _, inst := range sm.Metrics {
			names[inst.Name] = true
		}
	}
	for _, want := range []string{
		"synthia.provider.requests",
		"synthia.stt.duration",
		"synthia.utterance.bytes",
		"synthia.active_calls",
	} {
		if !names[want] {
			t.Errorf("metric %q not collected; got %v", want, names)
		}
	}
}

func TestMetrics_NilReceiverSafe(t *testing.T) {
	var m *Metrics
	ctx := context.Background()

	// None of these may panic on a nil receiver.
	m.RecordProviderRequest(ctx, "p", "llm", "ok")
	m.RecordProviderError(ctx, "p", "stt")
	m.RecordStageDuration(ctx, "tts", time.Second)
	m.RecordUtterance(ctx, 100)
	m.RecordJobDispatched(ctx)
	m.CallStarted(ctx)
	m.CallEnded(ctx)
}
