// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/spf13/viper"
	"github.com/stacklok/toolhive-core/env"

	"github.com/stacklok/kernelhive/cmd/khv/app/ui"
	"github.com/stacklok/kernelhive/pkg/config"
	"github.com/stacklok/kernelhive/pkg/events"
	"github.com/stacklok/kernelhive/pkg/jupyter"
	"github.com/stacklok/kernelhive/pkg/logger"
	"github.com/stacklok/kernelhive/pkg/networking"
	"github.com/stacklok/kernelhive/pkg/prompt"
	"github.com/stacklok/kernelhive/pkg/secrets"
	"github.com/stacklok/kernelhive/pkg/servers"
	"github.com/stacklok/kernelhive/pkg/servers/capture"
	"github.com/stacklok/kernelhive/pkg/servers/prompts"
	"github.com/stacklok/kernelhive/pkg/servers/provider"
	"github.com/stacklok/kernelhive/pkg/telemetry"
	"github.com/stacklok/kernelhive/pkg/versions"
)

const (
	allowSelfSignedKey = "allow-self-signed"
	shutdownTimeout    = 5 * time.Second
)

// services is everything a server subcommand needs, built from config,
// flags and the environment.
type services struct {
	provider *provider.Provider
	store    *servers.Store
	shutdown telemetry.ShutdownFunc
}

// newServices wires the provider. prompter may be nil for the terminal UI.
func newServices(ctx context.Context, prompter prompt.Prompter) (*services, error) {
	configStore := config.NewLocalStore(viper.GetString("config"))
	cfg, err := configStore.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	config.ApplyOverrides(cfg, viper.GetViper())
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	client, err := networking.NewHttpClientBuilder().
		WithTimeout(cfg.Network.Timeout).
		WithCABundle(cfg.Network.CABundle).
		WithSelfSignedCerts(viper.GetBool(allowSelfSignedKey)).
		WithoutRedirects().
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	envReader := &env.OSReader{}
	keyringProvider, err := secrets.NewProvider(secrets.ProviderType(cfg.Secrets.ProviderType), envReader)
	if err != nil {
		return nil, err
	}
	storage := secrets.NewKeyringStorage(keyringProvider,
		secrets.WithService(cfg.Secrets.Service),
		secrets.WithEnvFallback(envReader),
	)
	logger.Debugf("using %s for server storage", storage.Backend())
	store := servers.NewStore(storage, servers.WithStorageKey(cfg.Secrets.StorageKey))

	meterProvider, shutdown, err := telemetry.NewMeterProvider(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		ServiceName:    "khv",
		ServiceVersion: versions.GetVersionInfo().Version,
	})
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to set up telemetry: %w", err)
	}

	if prompter == nil {
		prompter = ui.NewTerminalPrompter()
	}
	registry := servers.NewDisplayNameRegistry()
	changed := &events.Emitter[string]{}
	cache := jupyter.NewKernelSpecCache(jupyter.DefaultKernelSpecCacheDir())
	passwords := jupyter.NewPasswordNegotiator(client, prompter)

	workflow := capture.NewWorkflow(capture.Deps{
		URLInput:    capture.NewURLInput(prompter, client),
		Passwords:   passwords,
		Validator:   jupyter.NewConnectionValidator(client, cache),
		Gate:        prompts.NewInsecureGate(prompter, configStore),
		DisplayName: prompts.NewDisplayNamePrompter(prompter, registry),
		Store:       store,
		Telemetry:   telemetry.NewReporter(meterProvider),
		Resolver:    net.DefaultResolver,
		Changed:     changed,
	})

	return &services{
		provider: provider.New(provider.Deps{
			Store:     store,
			Capture:   workflow,
			Passwords: passwords,
			Prompter:  prompter,
			Cache:     cache,
			Registry:  registry,
			Changed:   changed,
		}),
		store:    store,
		shutdown: shutdown,
	}, nil
}

// Close waits for pending server writes and flushes metrics.
func (s *services) Close() {
	s.store.Close()
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.shutdown(ctx); err != nil {
		logger.Warnf("failed to flush telemetry: %v", err)
	}
}
