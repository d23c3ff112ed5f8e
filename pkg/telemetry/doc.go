// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package telemetry records product usage events for the server capture
// workflow and the kernel execution multiplexer.
//
// Events are fire-and-forget. A Reporter never returns an error and never
// blocks the caller on export. The OpenTelemetry implementation turns each
// event into counter and histogram samples; the meter provider built by
// NewMeterProvider exports them over OTLP/HTTP when an endpoint is set and is
// a no-op otherwise.
package telemetry
