// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package jupyter

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/stacklok/kernelhive/pkg/logger"
	"github.com/stacklok/kernelhive/pkg/networking"
	"github.com/stacklok/kernelhive/pkg/serveruri"
)

// ConnectionValidator checks a server answers by listing its kernel specs.
type ConnectionValidator struct {
	client networking.HTTPClient
	cache  *KernelSpecCache
	logger *slog.Logger
}

// NewConnectionValidator creates a validator. cache may be nil.
func NewConnectionValidator(client networking.HTTPClient, cache *KernelSpecCache) *ConnectionValidator {
	return &ConnectionValidator{client: client, cache: cache, logger: logger.Get()}
}

// Validate fetches /api/kernelspecs with the negotiated headers. A 401 or 403
// wraps ErrPasswordRequired. Transport failures keep the networking
// sentinels so certificate problems can be told apart.
func (v *ConnectionValidator) Validate(ctx context.Context, handle string, info *serveruri.Descriptor) error {
	if info == nil {
		return fmt.Errorf("no server to validate")
	}

	specsURL := endpoint(info.BaseURL, "api/kernelspecs")
	res, err := networking.FetchJSON[KernelSpecs](ctx, v.client, specsURL,
		networking.WithHeaderMap(info.AuthorizationHeader), networking.WithToken(info.Token))
	if err != nil {
		if networking.IsAuthError(err) {
			return fmt.Errorf("%s: %w", specsURL, ErrPasswordRequired)
		}
		return fmt.Errorf("failed to list kernel specs at %s: %w", specsURL, err)
	}

	if v.cache != nil {
		if err := v.cache.Save(handle, &res.Data); err != nil {
			v.logger.Warn("failed to cache kernel specs", "handle", handle, "error", err)
		}
	}
	return nil
}
