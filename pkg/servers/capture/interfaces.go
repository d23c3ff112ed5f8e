// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package capture

import (
	"context"

	"github.com/stacklok/kernelhive/pkg/jupyter"
	"github.com/stacklok/kernelhive/pkg/prompt"
	"github.com/stacklok/kernelhive/pkg/servers"
	"github.com/stacklok/kernelhive/pkg/serveruri"
)

//go:generate mockgen -destination=mocks/mock_interfaces.go -package=mocks -source=interfaces.go PasswordNegotiator,ConnectionValidator,InsecureGate,DisplayNamePrompter,URLPrompter,ServerStore

// PasswordNegotiator works out the credentials a server needs.
type PasswordNegotiator interface {
	GetPasswordConnectionInfo(ctx context.Context, req jupyter.PasswordRequest) (jupyter.ConnectionInfo, error)
}

// ConnectionValidator checks that a server answers with the negotiated
// credentials. Certificate failures wrap networking.ErrSelfSignedCert or
// networking.ErrExpiredCert; a missing password wraps
// jupyter.ErrPasswordRequired.
type ConnectionValidator interface {
	Validate(ctx context.Context, handle string, info *serveruri.Descriptor) error
}

// InsecureGate decides whether an unauthenticated plain-HTTP server may be
// used.
type InsecureGate interface {
	ShouldProceedInsecurely(ctx context.Context) (prompt.Answer[bool], error)
}

// DisplayNamePrompter asks for the label of a new server.
type DisplayNamePrompter interface {
	GetDisplayName(ctx context.Context, handle, defaultValue string) (prompt.Answer[string], error)
}

// URLPrompter collects and validates the server URL.
type URLPrompter interface {
	GetURL(ctx context.Context, req URLRequest) (prompt.Answer[URLSelection], error)
}

// ServerStore persists captured servers.
type ServerStore interface {
	Add(ctx context.Context, server servers.StoredServer) error
}
