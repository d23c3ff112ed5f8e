// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package capture

import (
	"context"
	"fmt"
	"strings"

	"github.com/stacklok/kernelhive/pkg/networking"
	"github.com/stacklok/kernelhive/pkg/prompt"
	"github.com/stacklok/kernelhive/pkg/serveruri"
)

const (
	urlInputTitle       = "Enter the URL of the running Jupyter server"
	urlInputPlaceholder = "http://127.0.0.1:8888/?token=..."
	invalidURLMessage   = "Invalid URL specified. Enter an http(s) URL such as http://localhost:8888/?token=abc"
)

// URLSelection is a URL the user entered together with its parsed form.
type URLSelection struct {
	// URL is what gets persisted. It is the user's input, or the resolved
	// base URL plus token when the input was a deep link.
	URL  string
	Info *serveruri.Descriptor
}

// URLInput prompts for a server URL and normalizes deep links through a
// login-redirect probe.
type URLInput struct {
	prompter prompt.Prompter
	client   networking.HTTPClient
}

// NewURLInput probes deep links with client, which must not follow redirects.
func NewURLInput(prompter prompt.Prompter, client networking.HTTPClient) *URLInput {
	return &URLInput{prompter: prompter, client: client}
}

// URLRequest configures one GetURL call.
type URLRequest struct {
	// Value pre-fills the box.
	Value string
	// ValidationMessage explains why the last attempt was rejected.
	ValidationMessage string
	// AcceptValue skips the prompt when Value is already valid.
	AcceptValue bool
}

// GetURL returns a validated URL, prompting until the user enters one or
// leaves the prompt.
func (u *URLInput) GetURL(ctx context.Context, req URLRequest) (prompt.Answer[URLSelection], error) {
	value := strings.TrimSpace(req.Value)
	validationMessage := req.ValidationMessage
	if req.AcceptValue && value != "" {
		if sel, ok := u.validate(ctx, value); ok {
			return prompt.Accepted(sel), nil
		}
		if validationMessage == "" {
			validationMessage = invalidURLMessage
		}
	}

	for {
		answer, err := u.prompter.Input(ctx, prompt.InputOptions{
			Title:             urlInputTitle,
			Placeholder:       urlInputPlaceholder,
			Value:             value,
			ValidationMessage: validationMessage,
			AllowBack:         true,
		})
		if err != nil {
			return prompt.Answer[URLSelection]{}, fmt.Errorf("failed to ask for a server URL: %w", err)
		}
		if !answer.Accepted() {
			return prompt.Answer[URLSelection]{Action: answer.Action}, nil
		}
		if err := ctx.Err(); err != nil {
			return prompt.Answer[URLSelection]{}, err
		}

		value = strings.TrimSpace(answer.Value)
		if sel, ok := u.validate(ctx, value); ok {
			return prompt.Accepted(sel), nil
		}
		validationMessage = invalidURLMessage
	}
}

func (u *URLInput) validate(ctx context.Context, raw string) (URLSelection, bool) {
	info, ok := serveruri.Parse(raw, "")
	if !ok {
		return URLSelection{}, false
	}

	base, ok := serveruri.ResolveBaseURL(ctx, raw, u.client)
	if !ok || base == info.BaseURL {
		return URLSelection{URL: raw, Info: info}, true
	}

	resolved := &serveruri.Descriptor{BaseURL: base, Token: info.Token}
	normalized := serveruri.Serialize(resolved)
	info, ok = serveruri.Parse(normalized, "")
	if !ok {
		return URLSelection{}, false
	}
	return URLSelection{URL: normalized, Info: info}, true
}
