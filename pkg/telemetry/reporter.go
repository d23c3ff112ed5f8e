// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

//go:generate mockgen -destination=mocks/mock_reporter.go -package=mocks -source=reporter.go Reporter

// Cause classifies why a server capture attempt failed.
type Cause string

const (
	// CauseConnectionFailure covers unreachable servers and generic errors.
	CauseConnectionFailure Cause = "ConnectionFailure"
	// CauseInsecureHTTP is recorded when the user declines a plain-HTTP server.
	CauseInsecureHTTP Cause = "InsecureHTTP"
	// CauseSelfCert is a self-signed certificate rejection.
	CauseSelfCert Cause = "SelfCert"
	// CauseExpiredCert is an expired certificate rejection.
	CauseExpiredCert Cause = "ExpiredCert"
	// CauseAuthFailure is a password or token rejection.
	CauseAuthFailure Cause = "AuthFailure"
)

// CaptureEvent describes the end of one capture attempt. Cause is empty on
// success.
type CaptureEvent struct {
	Failed    bool
	Cause     Cause
	Localhost bool
}

// ExecutionEvent describes one ExecuteCode call, chat callbacks included.
type ExecutionEvent struct {
	ExtensionID  string
	Duration     time.Duration
	RequestSent  bool
	RequestAcked bool
	Cancelled    bool
	Failed       bool
	MimeTypes    []string
}

// Reporter receives telemetry events.
type Reporter interface {
	ReportCapture(ctx context.Context, event CaptureEvent)
	ReportExecution(ctx context.Context, event ExecutionEvent)
}

// NopReporter drops every event.
type NopReporter struct{}

// ReportCapture implements Reporter.
func (NopReporter) ReportCapture(context.Context, CaptureEvent) {}

// ReportExecution implements Reporter.
func (NopReporter) ReportExecution(context.Context, ExecutionEvent) {}

// HashExtensionID returns a stable, non-reversible label for an extension id.
func HashExtensionID(id string) string {
	sum := sha256.Sum256([]byte(id))
	return hex.EncodeToString(sum[:])
}
