// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package prompts holds the small interactive steps of the server capture
// workflow: the plain-HTTP consent gate and the display-name prompt.
package prompts

import (
	"context"
	"fmt"
	"sync"

	"github.com/stacklok/kernelhive/pkg/config"
	"github.com/stacklok/kernelhive/pkg/logger"
	"github.com/stacklok/kernelhive/pkg/prompt"
)

// Pick item ids offered by the insecure-connection gate.
const (
	choiceYes         = "yes"
	choiceYesAlways   = "yes-always"
	choiceNo          = "no"
	insecureGateTitle = "Connecting over HTTP without a token or password"
)

// InsecureGate asks once whether an unauthenticated plain-HTTP server may be
// used. A persisted consent, or a Yes earlier in this process, skips the
// prompt.
type InsecureGate struct {
	prompter prompt.Prompter
	store    config.Store

	mu      sync.Mutex
	granted bool
}

// NewInsecureGate returns a gate that reads and persists consent through
// store.
func NewInsecureGate(prompter prompt.Prompter, store config.Store) *InsecureGate {
	return &InsecureGate{prompter: prompter, store: store}
}

// ShouldProceedInsecurely returns Accepted(true) when the connection may go
// ahead and Accepted(false) when the user declined. Back and dismissal are
// passed through as their own actions.
func (g *InsecureGate) ShouldProceedInsecurely(ctx context.Context) (prompt.Answer[bool], error) {
	if g.consented(ctx) {
		return prompt.Accepted(true), nil
	}

	answer, err := g.prompter.Pick(ctx, prompt.PickOptions{
		Title: insecureGateTitle,
		Placeholder: "Anyone on the network can read traffic to this server, " +
			"including code and data. Continue?",
		Items: []prompt.PickItem{
			{ID: choiceYes, Label: "Yes"},
			{ID: choiceYesAlways, Label: "Yes, and don't ask again"},
			{ID: choiceNo, Label: "No"},
		},
		AllowBack: true,
	})
	if err != nil {
		return prompt.Answer[bool]{}, fmt.Errorf("failed to ask for insecure connection consent: %w", err)
	}
	if !answer.Accepted() {
		return prompt.Answer[bool]{Action: answer.Action}, nil
	}

	switch answer.Value.ID {
	case choiceYes:
		g.grant()
		return prompt.Accepted(true), nil
	case choiceYesAlways:
		g.grant()
		if err := g.store.Update(ctx, func(c *config.Config) {
			c.InsecureConnectionsAllowed = true
		}); err != nil {
			logger.Warnf("failed to remember insecure connection consent: %v", err)
		}
		return prompt.Accepted(true), nil
	default:
		return prompt.Accepted(false), nil
	}
}

func (g *InsecureGate) consented(ctx context.Context) bool {
	g.mu.Lock()
	granted := g.granted
	g.mu.Unlock()
	if granted {
		return true
	}

	cfg, err := g.store.Load(ctx)
	if err != nil {
		logger.Debugf("could not read insecure connection consent: %v", err)
		return false
	}
	if cfg.InsecureConnectionsAllowed {
		g.grant()
		return true
	}
	return false
}

func (g *InsecureGate) grant() {
	g.mu.Lock()
	g.granted = true
	g.mu.Unlock()
}
