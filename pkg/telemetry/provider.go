// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"

	"github.com/stacklok/kernelhive/pkg/logger"
)

// Config selects how metrics leave the process.
type Config struct {
	Enabled        bool
	Endpoint       string
	Insecure       bool
	ServiceName    string
	ServiceVersion string
}

// ShutdownFunc flushes and stops a meter provider.
type ShutdownFunc func(context.Context) error

// NewMeterProvider returns a meter provider for config. Extra readers are
// attached in addition to the OTLP exporter, which tests use to observe
// samples. Disabled telemetry yields a no-op provider.
func NewMeterProvider(ctx context.Context, config Config, readers ...sdkmetric.Reader) (metric.MeterProvider, ShutdownFunc, error) {
	if !config.Enabled {
		return noop.NewMeterProvider(), func(context.Context) error { return nil }, nil
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(config.ServiceName),
			semconv.ServiceVersion(config.ServiceVersion),
		),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create resource with service name '%s': %w", config.ServiceName, err)
	}

	opts := []sdkmetric.Option{sdkmetric.WithResource(res)}
	for _, reader := range readers {
		opts = append(opts, sdkmetric.WithReader(reader))
	}

	if config.Endpoint != "" {
		exporterOpts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(config.Endpoint)}
		if config.Insecure {
			exporterOpts = append(exporterOpts, otlpmetrichttp.WithInsecure())
		}
		exporter, err := otlpmetrichttp.New(ctx, exporterOpts...)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create OTLP metric exporter: %w", err)
		}
		opts = append(opts, sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)))
	} else if len(readers) == 0 {
		logger.Debugf("telemetry enabled without an endpoint, metrics stay in-process")
	}

	provider := sdkmetric.NewMeterProvider(opts...)
	shutdown := func(ctx context.Context) error {
		if err := provider.Shutdown(ctx); err != nil && !errors.Is(err, sdkmetric.ErrReaderShutdown) {
			return err
		}
		return nil
	}
	return provider, shutdown, nil
}

// NewReporter is a convenience that builds a MetricsReporter on provider and
// falls back to NopReporter if instrument creation fails.
func NewReporter(provider metric.MeterProvider) Reporter {
	r, err := NewMetricsReporter(provider)
	if err != nil {
		logger.Warnf("telemetry disabled: %v", err)
		return NopReporter{}
	}
	return r
}
