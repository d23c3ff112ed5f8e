// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package jupyter talks to Jupyter servers over their REST API: it works out
// what credentials a server needs, checks that it answers, and caches the
// kernel specs it reports.
package jupyter

import (
	"errors"

	"github.com/stacklok/kernelhive/pkg/prompt"
)

// ErrPasswordRequired is returned by the connection validator when the server
// rejected the request and no password was negotiated.
var ErrPasswordRequired = errors.New("jupyter server requires a password")

// ErrTokenRejected is returned by the password negotiator when the server
// refused the token taken from the URL.
var ErrTokenRejected = errors.New("jupyter server rejected the token")

// PasswordRequest identifies the server being negotiated with.
type PasswordRequest struct {
	// BaseURL is the normalized server root.
	BaseURL string
	// Token is the query token the user supplied, if any.
	Token string
	// Handle is the identity of the capture attempt.
	Handle string
	// RequiresPassword is set once the server has already refused the
	// credentials in hand. The negotiator then skips probing and goes
	// straight to login, or reports the token as rejected.
	RequiresPassword bool
}

// IsTokenEmpty reports whether the user supplied no token.
func (r PasswordRequest) IsTokenEmpty() bool {
	return r.Token == ""
}

// ConnectionInfo is what password negotiation learned about a server.
type ConnectionInfo struct {
	// RequiresPassword is set when the server answered 401/403 to an
	// unauthenticated probe.
	RequiresPassword bool
	// RequestHeaders authenticate subsequent API calls.
	RequestHeaders map[string]string
	// IsJupyterHub is set for multi-user hub deployments.
	IsJupyterHub bool
	// Action reports Back or dismissal on the password prompt.
	Action prompt.Action
}

// KernelSpec is one entry of GET /api/kernelspecs.
type KernelSpec struct {
	Name string         `json:"name"`
	Spec KernelSpecFile `json:"spec"`
}

// KernelSpecFile is the kernel.json content of a kernel spec.
type KernelSpecFile struct {
	DisplayName string         `json:"display_name"`
	Language    string         `json:"language"`
	Argv        []string       `json:"argv,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// KernelSpecs is the GET /api/kernelspecs response.
type KernelSpecs struct {
	Default     string                `json:"default"`
	KernelSpecs map[string]KernelSpec `json:"kernelspecs"`
}
