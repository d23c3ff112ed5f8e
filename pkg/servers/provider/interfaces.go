// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package provider

import (
	"context"

	"github.com/stacklok/kernelhive/pkg/servers"
	"github.com/stacklok/kernelhive/pkg/servers/capture"
)

//go:generate mockgen -destination=mocks/mock_interfaces.go -package=mocks -source=interfaces.go ServerStore,CaptureRunner,CacheClearer

// ServerStore is the part of *servers.Store the provider uses.
type ServerStore interface {
	GetServers(ctx context.Context, ignoreCache bool) ([]servers.StoredServer, error)
	Remove(ctx context.Context, handle string) error
	Clear(ctx context.Context) error
}

// CaptureRunner runs the add-server wizard. *capture.Workflow satisfies it.
type CaptureRunner interface {
	Run(ctx context.Context, initialURL string) (capture.Result, error)
}

// CacheClearer drops cached kernel specs.
type CacheClearer interface {
	Remove(handle string) error
	Clear(ctx context.Context) error
}
