// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"context"
	"fmt"
	"slices"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/stacklok/kernelhive"

// Metric names.
const (
	MetricCaptureAttempts   = "kernelhive_server_capture_total"
	MetricExecutions        = "kernelhive_kernel_executions_total"
	MetricExecutionDuration = "kernelhive_kernel_execution_duration"
	MetricOutputMimeTypes   = "kernelhive_kernel_output_mime_total"
)

// ExecutionDurationBuckets are histogram bounds in seconds.
var ExecutionDurationBuckets = []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60, 300}

// MetricsReporter records events as OpenTelemetry metrics.
type MetricsReporter struct {
	captures  metric.Int64Counter
	execs     metric.Int64Counter
	duration  metric.Float64Histogram
	mimeTypes metric.Int64Counter
}

// NewMetricsReporter creates the instruments on a meter from provider.
func NewMetricsReporter(provider metric.MeterProvider) (*MetricsReporter, error) {
	meter := provider.Meter(instrumentationName)

	captures, err := meter.Int64Counter(
		MetricCaptureAttempts,
		metric.WithDescription("Remote server capture attempts by outcome and cause"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create capture counter: %w", err)
	}
	execs, err := meter.Int64Counter(
		MetricExecutions,
		metric.WithDescription("Code executions issued through the kernel multiplexer"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create execution counter: %w", err)
	}
	duration, err := meter.Float64Histogram(
		MetricExecutionDuration,
		metric.WithDescription("Duration of multiplexed code executions"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(ExecutionDurationBuckets...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create execution histogram: %w", err)
	}
	mimeTypes, err := meter.Int64Counter(
		MetricOutputMimeTypes,
		metric.WithDescription("Executions that produced each output mime type"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mime counter: %w", err)
	}

	return &MetricsReporter{
		captures:  captures,
		execs:     execs,
		duration:  duration,
		mimeTypes: mimeTypes,
	}, nil
}

// ReportCapture implements Reporter.
func (r *MetricsReporter) ReportCapture(ctx context.Context, event CaptureEvent) {
	outcome := "success"
	if event.Failed {
		outcome = "failure"
	}
	r.captures.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", outcome),
		attribute.String("cause", string(event.Cause)),
		attribute.Bool("localhost", event.Localhost),
	))
}

// ReportExecution implements Reporter.
func (r *MetricsReporter) ReportExecution(ctx context.Context, event ExecutionEvent) {
	// Export is detached from the caller so a cancelled execution still counts.
	ctx = context.WithoutCancel(ctx)

	extension := attribute.String("extension", HashExtensionID(event.ExtensionID))
	attrs := metric.WithAttributes(
		extension,
		attribute.Bool("failed", event.Failed),
		attribute.Bool("cancelled", event.Cancelled),
		attribute.Bool("request_sent", event.RequestSent),
		attribute.Bool("request_acked", event.RequestAcked),
	)
	r.execs.Add(ctx, 1, attrs)
	r.duration.Record(ctx, event.Duration.Seconds(), attrs)

	mimes := slices.Clone(event.MimeTypes)
	slices.Sort(mimes)
	for _, mime := range slices.Compact(mimes) {
		r.mimeTypes.Add(ctx, 1, metric.WithAttributes(extension, attribute.String("mime", mime)))
	}
}
