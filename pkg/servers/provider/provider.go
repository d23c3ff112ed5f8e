// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package provider exposes stored remote Jupyter servers to callers: it lists
// them, resolves one to a live connection and runs the add and select
// commands.
package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/stacklok/toolhive-core/httperr"

	khverrors "github.com/stacklok/kernelhive/pkg/errors"
	"github.com/stacklok/kernelhive/pkg/events"
	"github.com/stacklok/kernelhive/pkg/jupyter"
	"github.com/stacklok/kernelhive/pkg/logger"
	"github.com/stacklok/kernelhive/pkg/prompt"
	"github.com/stacklok/kernelhive/pkg/servers"
	"github.com/stacklok/kernelhive/pkg/servers/capture"
)

var (
	// ErrServerNotFound is wrapped by lookups for an unknown server id.
	ErrServerNotFound = httperr.WithCode(errors.New("remote jupyter server not found"), http.StatusNotFound)

	// ErrCancelled is returned when the user leaves a command without
	// picking or adding a server.
	ErrCancelled = errors.New("cancelled by the user")
)

const addServerItemID = "kernelhive:add-server"

// Server is a stored server as shown in pickers.
type Server struct {
	ID    string
	Label string
}

// Connection is everything needed to talk to a server. Headers are
// negotiated on every resolve and never persisted.
type Connection struct {
	ID                      string
	DisplayName             string
	BaseURL                 string
	Token                   string
	Headers                 map[string]string
	MappedRemoteNotebookDir string
}

// CommandKind selects what HandleCommand does.
type CommandKind int

const (
	// CommandAdd runs the add-server wizard.
	CommandAdd CommandKind = iota
	// CommandSelect lets the user pick a stored server or add a new one.
	CommandSelect
)

// Command is a UI-driven request. URL seeds CommandAdd.
type Command struct {
	Kind CommandKind
	URL  string
}

// Deps are the provider's collaborators. Cache, Registry, Changed and Logger
// are optional.
type Deps struct {
	Store     ServerStore
	Capture   CaptureRunner
	Passwords capture.PasswordNegotiator
	Prompter  prompt.Prompter
	Cache     CacheClearer
	Registry  *servers.DisplayNameRegistry
	// Changed must be the emitter the capture workflow fires into.
	Changed *events.Emitter[string]
	Logger  *slog.Logger
}

// Provider is the facade over the server store and the capture workflow.
type Provider struct {
	deps Deps

	initOnce sync.Once
	initDone chan struct{}
	initErr  error
}

// New creates a Provider. The first call that needs the server list starts
// loading it; later calls wait for that same load.
func New(deps Deps) *Provider {
	if deps.Registry == nil {
		deps.Registry = servers.NewDisplayNameRegistry()
	}
	if deps.Changed == nil {
		deps.Changed = &events.Emitter[string]{}
	}
	if deps.Logger == nil {
		deps.Logger = logger.Get()
	}
	return &Provider{deps: deps, initDone: make(chan struct{})}
}

// OnDidChangeServers registers fn to run whenever the set of servers changes.
// The returned function unsubscribes.
func (p *Provider) OnDidChangeServers(fn func()) func() {
	return p.deps.Changed.Subscribe(func(string) { fn() })
}

func (p *Provider) ensureInitialized(ctx context.Context) error {
	p.initOnce.Do(func() {
		loadCtx := context.WithoutCancel(ctx)
		go func() {
			defer close(p.initDone)
			_, p.initErr = p.deps.Store.GetServers(loadCtx, false)
		}()
	})
	select {
	case <-p.initDone:
		return p.initErr
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ListServers returns every stored server, labelled with its display name.
func (p *Provider) ListServers(ctx context.Context) ([]Server, error) {
	stored, err := p.stored(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]Server, 0, len(stored))
	for _, s := range stored {
		result = append(result, Server{ID: s.Handle, Label: p.label(s)})
	}
	return result, nil
}

// ResolveConnection looks up id and negotiates fresh credentials for it.
func (p *Provider) ResolveConnection(ctx context.Context, id string) (*Connection, error) {
	server, err := p.find(ctx, id)
	if err != nil {
		return nil, err
	}
	info := server.ServerInfo

	conn, err := p.deps.Passwords.GetPasswordConnectionInfo(ctx, jupyter.PasswordRequest{
		BaseURL: info.BaseURL,
		Token:   info.Token,
		Handle:  server.Handle,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to authenticate with %s: %w", info.BaseURL, err)
	}
	if conn.Action != prompt.ActionAccepted {
		return nil, ErrCancelled
	}
	if conn.IsJupyterHub {
		return nil, khverrors.NewHubUnsupportedError(
			fmt.Sprintf("%s is a JupyterHub server and cannot be used directly", info.BaseURL), nil)
	}

	return &Connection{
		ID:                      server.Handle,
		DisplayName:             p.label(server),
		BaseURL:                 info.BaseURL,
		Token:                   info.Token,
		Headers:                 conn.RequestHeaders,
		MappedRemoteNotebookDir: info.MappedRemoteNotebookDir,
	}, nil
}

// RemoveServer forgets id. Removing an unknown id is not an error.
func (p *Provider) RemoveServer(ctx context.Context, id string) error {
	if err := p.ensureInitialized(ctx); err != nil {
		return err
	}
	if err := p.deps.Store.Remove(ctx, id); err != nil {
		return fmt.Errorf("failed to remove server %s: %w", id, err)
	}
	p.deps.Registry.Delete(id)
	if p.deps.Cache != nil {
		if err := p.deps.Cache.Remove(id); err != nil {
			p.deps.Logger.Debug("failed to remove cached kernel specs", "handle", id, "error", err)
		}
	}
	p.deps.Changed.Fire(id)
	return nil
}

// ClearCache forgets every server and deletes cached kernel specs. Failing to
// delete the cache files is logged, not returned.
func (p *Provider) ClearCache(ctx context.Context) error {
	if err := p.deps.Store.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear stored servers: %w", err)
	}
	p.deps.Registry.Reset()
	if p.deps.Cache != nil {
		if err := p.deps.Cache.Clear(ctx); err != nil {
			p.deps.Logger.Warn("failed to clear kernel spec cache", "error", err)
		}
	}
	p.deps.Changed.Fire("")
	return nil
}

// HandleCommand runs a UI command and returns the server it produced.
// Leaving the command without a server returns ErrCancelled.
func (p *Provider) HandleCommand(ctx context.Context, cmd Command) (*Server, error) {
	switch cmd.Kind {
	case CommandAdd:
		server, _, err := p.add(ctx, cmd.URL)
		return server, err
	case CommandSelect:
		return p.selectServer(ctx)
	default:
		return nil, khverrors.NewInvalidArgumentError(fmt.Sprintf("unknown command %d", cmd.Kind), nil)
	}
}

// add runs the wizard. back reports that the user stepped out of it.
func (p *Provider) add(ctx context.Context, url string) (server *Server, back bool, err error) {
	res, err := p.deps.Capture.Run(ctx, url)
	if err != nil {
		return nil, false, err
	}
	switch res.Outcome {
	case capture.OutcomeAdded:
		return &Server{ID: res.Server.Handle, Label: p.label(*res.Server)}, false, nil
	case capture.OutcomeBack:
		return nil, true, ErrCancelled
	default:
		return nil, false, ErrCancelled
	}
}

func (p *Provider) selectServer(ctx context.Context) (*Server, error) {
	for {
		list, err := p.ListServers(ctx)
		if err != nil {
			return nil, err
		}

		items := make([]prompt.PickItem, 0, len(list)+1)
		for _, s := range list {
			items = append(items, prompt.PickItem{ID: s.ID, Label: s.Label})
		}
		items = append(items, prompt.PickItem{
			ID:          addServerItemID,
			Label:       "Existing Jupyter Server...",
			Description: "Specify the URL of an existing server",
		})

		answer, err := p.deps.Prompter.Pick(ctx, prompt.PickOptions{
			Title:       "Select a Jupyter Server",
			Placeholder: "Pick a server or add a new one",
			Items:       items,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to ask for a server: %w", err)
		}
		if !answer.Accepted() {
			return nil, ErrCancelled
		}

		if answer.Value.ID != addServerItemID {
			for _, s := range list {
				if s.ID == answer.Value.ID {
					return &s, nil
				}
			}
			return nil, notFound(answer.Value.ID)
		}

		server, back, err := p.add(ctx, "")
		if back {
			continue
		}
		return server, err
	}
}

func (p *Provider) stored(ctx context.Context) ([]servers.StoredServer, error) {
	if err := p.ensureInitialized(ctx); err != nil {
		return nil, fmt.Errorf("failed to load servers: %w", err)
	}
	stored, err := p.deps.Store.GetServers(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("failed to load servers: %w", err)
	}
	return stored, nil
}

func (p *Provider) find(ctx context.Context, id string) (servers.StoredServer, error) {
	stored, err := p.stored(ctx)
	if err != nil {
		return servers.StoredServer{}, err
	}
	for _, s := range stored {
		if s.Handle == id {
			return s, nil
		}
	}
	return servers.StoredServer{}, notFound(id)
}

// label prefers a name set during this process over the stored one.
func (p *Provider) label(s servers.StoredServer) string {
	if name, ok := p.deps.Registry.Get(s.Handle); ok && name != "" {
		return name
	}
	return s.ServerInfo.DisplayName
}

func notFound(id string) error {
	return khverrors.NewNotFoundError(fmt.Sprintf("remote jupyter server %q not found", id), ErrServerNotFound)
}
