// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	found := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			found[m.Name] = m
		}
	}
	return found
}

func newTestReporter(t *testing.T) (*MetricsReporter, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	r, err := NewMetricsReporter(provider)
	require.NoError(t, err)
	return r, reader
}

func TestMetricsReporter_ReportCapture(t *testing.T) {
	t.Parallel()

	r, reader := newTestReporter(t)
	ctx := t.Context()

	r.ReportCapture(ctx, CaptureEvent{Failed: true, Cause: CauseSelfCert, Localhost: true})
	r.ReportCapture(ctx, CaptureEvent{Failed: true, Cause: CauseSelfCert, Localhost: true})
	r.ReportCapture(ctx, CaptureEvent{})

	m, ok := collect(t, reader)[MetricCaptureAttempts]
	require.True(t, ok, "capture counter should be recorded")
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 2)

	for _, dp := range sum.DataPoints {
		outcome, _ := dp.Attributes.Value(attribute.Key("outcome"))
		switch outcome.AsString() {
		case "failure":
			assert.Equal(t, int64(2), dp.Value)
			cause, _ := dp.Attributes.Value(attribute.Key("cause"))
			assert.Equal(t, string(CauseSelfCert), cause.AsString())
			localhost, _ := dp.Attributes.Value(attribute.Key("localhost"))
			assert.True(t, localhost.AsBool())
		case "success":
			assert.Equal(t, int64(1), dp.Value)
		default:
			t.Fatalf("unexpected outcome %q", outcome.AsString())
		}
	}
}

func TestMetricsReporter_ReportExecution(t *testing.T) {
	t.Parallel()

	r, reader := newTestReporter(t)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	r.ReportExecution(ctx, ExecutionEvent{
		ExtensionID:  "acme.notebook-helper",
		Duration:     1500 * time.Millisecond,
		RequestSent:  true,
		RequestAcked: true,
		Cancelled:    true,
		MimeTypes:    []string{"text/plain", "image/png", "text/plain"},
	})

	found := collect(t, reader)

	execs, ok := found[MetricExecutions].Data.(metricdata.Sum[int64])
	require.True(t, ok, "execution counter should be recorded")
	require.Len(t, execs.DataPoints, 1)
	dp := execs.DataPoints[0]
	assert.Equal(t, int64(1), dp.Value)
	ext, _ := dp.Attributes.Value(attribute.Key("extension"))
	assert.Equal(t, HashExtensionID("acme.notebook-helper"), ext.AsString())
	assert.NotContains(t, ext.AsString(), "acme")
	cancelled, _ := dp.Attributes.Value(attribute.Key("cancelled"))
	assert.True(t, cancelled.AsBool())

	hist, ok := found[MetricExecutionDuration].Data.(metricdata.Histogram[float64])
	require.True(t, ok, "duration histogram should be recorded")
	require.Len(t, hist.DataPoints, 1)
	assert.InDelta(t, 1.5, hist.DataPoints[0].Sum, 0.001)

	mimes, ok := found[MetricOutputMimeTypes].Data.(metricdata.Sum[int64])
	require.True(t, ok, "mime counter should be recorded")
	assert.Len(t, mimes.DataPoints, 2, "duplicate mime types are counted once per execution")
}

func TestHashExtensionID(t *testing.T) {
	t.Parallel()

	a := HashExtensionID("ms-toolsai.jupyter")
	assert.Len(t, a, 64)
	assert.Equal(t, a, HashExtensionID("ms-toolsai.jupyter"))
	assert.NotEqual(t, a, HashExtensionID("other.extension"))
}

func TestNewMeterProvider(t *testing.T) {
	t.Parallel()

	t.Run("disabled is no-op", func(t *testing.T) {
		t.Parallel()
		provider, shutdown, err := NewMeterProvider(t.Context(), Config{})
		require.NoError(t, err)
		assert.IsType(t, noop.NewMeterProvider(), provider)
		assert.NoError(t, shutdown(t.Context()))
	})

	t.Run("enabled with extra reader", func(t *testing.T) {
		t.Parallel()
		reader := sdkmetric.NewManualReader()
		provider, shutdown, err := NewMeterProvider(t.Context(), Config{
			Enabled:        true,
			ServiceName:    "khv",
			ServiceVersion: "test",
		}, reader)
		require.NoError(t, err)

		reporter := NewReporter(provider)
		reporter.ReportCapture(t.Context(), CaptureEvent{})
		assert.Contains(t, collect(t, reader), MetricCaptureAttempts)

		assert.NoError(t, shutdown(t.Context()))
		assert.NoError(t, shutdown(t.Context()), "second shutdown is tolerated")
	})
}

func TestNopReporter(t *testing.T) {
	t.Parallel()

	var r Reporter = NopReporter{}
	r.ReportCapture(t.Context(), CaptureEvent{Failed: true})
	r.ReportExecution(t.Context(), ExecutionEvent{Failed: true})
}
