// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package prompts

import (
	"context"
	"fmt"
	"strings"

	"github.com/stacklok/kernelhive/pkg/prompt"
	"github.com/stacklok/kernelhive/pkg/servers"
)

// DisplayNamePrompter asks for the label of a newly added server.
type DisplayNamePrompter struct {
	prompter prompt.Prompter
	registry *servers.DisplayNameRegistry
}

// NewDisplayNamePrompter records chosen names in registry.
func NewDisplayNamePrompter(prompter prompt.Prompter, registry *servers.DisplayNameRegistry) *DisplayNamePrompter {
	return &DisplayNamePrompter{prompter: prompter, registry: registry}
}

// GetDisplayName prompts with defaultValue pre-filled. A blank answer keeps
// defaultValue.
func (p *DisplayNamePrompter) GetDisplayName(ctx context.Context, handle, defaultValue string) (prompt.Answer[string], error) {
	answer, err := p.prompter.Input(ctx, prompt.InputOptions{
		Title:     "Name this server",
		Prompt:    "The label shown when picking a kernel",
		Value:     defaultValue,
		AllowBack: true,
	})
	if err != nil {
		return prompt.Answer[string]{}, fmt.Errorf("failed to ask for a display name: %w", err)
	}
	if !answer.Accepted() {
		return answer, nil
	}

	name := strings.TrimSpace(answer.Value)
	if name == "" {
		name = defaultValue
	}
	p.registry.Set(handle, name)
	return prompt.Accepted(name), nil
}
