// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package ui provides terminal UI helpers for the khv CLI.
package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/stacklok/kernelhive/pkg/prompt"
)

// ErrNotInteractive is returned when a prompt is needed but stdin is not a
// terminal.
var ErrNotInteractive = errors.New("khv needs an interactive terminal to ask for input")

// TerminalPrompter asks questions with bubbletea programs, one per prompt.
type TerminalPrompter struct {
	in          io.Reader
	out         io.Writer
	interactive func() bool
}

// NewTerminalPrompter prompts on stdin and stdout.
func NewTerminalPrompter() *TerminalPrompter {
	return &TerminalPrompter{
		in:  os.Stdin,
		out: os.Stdout,
		interactive: func() bool {
			return term.IsTerminal(int(os.Stdin.Fd())) // #nosec G115: fd fits in int
		},
	}
}

// Input shows a single-line text box.
func (p *TerminalPrompter) Input(ctx context.Context, opts prompt.InputOptions) (prompt.Answer[string], error) {
	final, err := p.run(ctx, newInputModel(opts))
	if err != nil {
		return prompt.Answer[string]{}, err
	}
	m := final.(*inputModel)
	if m.action != prompt.ActionAccepted {
		return prompt.Answer[string]{Action: m.action}, nil
	}
	return prompt.Accepted(m.input.Value()), nil
}

// Pick shows a list and returns the highlighted item on enter.
func (p *TerminalPrompter) Pick(ctx context.Context, opts prompt.PickOptions) (prompt.Answer[prompt.PickItem], error) {
	if len(opts.Items) == 0 {
		return prompt.Dismissed[prompt.PickItem](), nil
	}
	final, err := p.run(ctx, newPickModel(opts))
	if err != nil {
		return prompt.Answer[prompt.PickItem]{}, err
	}
	m := final.(*pickModel)
	if m.action != prompt.ActionAccepted {
		return prompt.Answer[prompt.PickItem]{Action: m.action}, nil
	}
	return prompt.Accepted(m.opts.Items[m.cursor]), nil
}

func (p *TerminalPrompter) run(ctx context.Context, model tea.Model) (tea.Model, error) {
	if p.interactive != nil && !p.interactive() {
		return nil, ErrNotInteractive
	}
	program := tea.NewProgram(model,
		tea.WithContext(ctx),
		tea.WithInput(p.in),
		tea.WithOutput(p.out),
	)
	final, err := program.Run()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("failed to run prompt: %w", err)
	}
	return final, nil
}

// leave maps the escape key to Back when the prompt offers it.
func leave(allowBack bool) prompt.Action {
	if allowBack {
		return prompt.ActionBack
	}
	return prompt.ActionDismissed
}
