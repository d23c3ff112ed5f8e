// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package jupyter

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/stacklok/kernelhive/pkg/logger"
	"github.com/stacklok/kernelhive/pkg/networking"
	"github.com/stacklok/kernelhive/pkg/prompt"
)

const (
	xsrfCookieName     = "_xsrf"
	invalidPasswordMsg = "Invalid password. Try again."
	// probePath needs authentication on every notebook and jupyter_server
	// release. The bare /api root does not.
	probePath = "api/status"
)

// PasswordNegotiator works out how to authenticate against a server. Token
// URLs are used as is. Servers that reject an anonymous probe of an
// authenticated endpoint get a password prompt followed by the notebook login
// form post.
type PasswordNegotiator struct {
	client   networking.HTTPClient
	prompter prompt.Prompter
	logger   *slog.Logger
}

// NewPasswordNegotiator creates a negotiator. client must not follow
// redirects so the login response cookies can be read.
func NewPasswordNegotiator(client networking.HTTPClient, prompter prompt.Prompter) *PasswordNegotiator {
	return &PasswordNegotiator{client: client, prompter: prompter, logger: logger.Get()}
}

// GetPasswordConnectionInfo probes req.BaseURL and, when needed, logs in.
func (n *PasswordNegotiator) GetPasswordConnectionInfo(ctx context.Context, req PasswordRequest) (ConnectionInfo, error) {
	if req.RequiresPassword {
		if !req.IsTokenEmpty() {
			return ConnectionInfo{}, fmt.Errorf("%s: %w", req.BaseURL, ErrTokenRejected)
		}
		return n.login(ctx, req.BaseURL)
	}

	if n.isJupyterHub(ctx, req.BaseURL) {
		return ConnectionInfo{IsJupyterHub: true}, nil
	}

	headers := map[string]string{}
	if !req.IsTokenEmpty() {
		headers["Authorization"] = "token " + req.Token
	}

	_, err := networking.FetchJSON[map[string]any](ctx, n.client, endpoint(req.BaseURL, probePath),
		networking.WithHeaderMap(headers), networking.WithoutContentTypeValidation())
	switch {
	case err == nil:
		return ConnectionInfo{RequestHeaders: headers}, nil
	case !networking.IsAuthError(err):
		return ConnectionInfo{}, err
	case !req.IsTokenEmpty():
		return ConnectionInfo{}, fmt.Errorf("%s: %w: %w", req.BaseURL, ErrTokenRejected, err)
	}

	return n.login(ctx, req.BaseURL)
}

// login asks for the password until the server accepts it or the user leaves
// the prompt.
func (n *PasswordNegotiator) login(ctx context.Context, baseURL string) (ConnectionInfo, error) {
	var validationMessage string
	for {
		answer, err := n.prompter.Input(ctx, prompt.InputOptions{
			Title:             "Password for " + baseURL,
			Prompt:            "Enter the password of the Jupyter server",
			ValidationMessage: validationMessage,
			Password:          true,
			AllowBack:         true,
		})
		if err != nil {
			return ConnectionInfo{}, fmt.Errorf("failed to ask for the server password: %w", err)
		}
		if !answer.Accepted() {
			return ConnectionInfo{Action: answer.Action}, nil
		}

		headers, ok, err := n.postLogin(ctx, baseURL, answer.Value)
		if err != nil {
			return ConnectionInfo{}, err
		}
		if ok {
			return ConnectionInfo{RequiresPassword: true, RequestHeaders: headers}, nil
		}
		n.logger.Debug("jupyter login rejected", "url", baseURL)
		validationMessage = invalidPasswordMsg
	}
}

// postLogin performs the XSRF dance: fetch the login page for the _xsrf
// cookie, then post the password with it. A redirect that sets a session
// cookie means success.
func (n *PasswordNegotiator) postLogin(ctx context.Context, baseURL, password string) (map[string]string, bool, error) {
	loginURL := endpoint(baseURL, "login")

	xsrf, err := n.fetchXSRF(ctx, loginURL)
	if err != nil {
		return nil, false, err
	}

	form := url.Values{"password": {password}}
	opts := []networking.FetchOption{}
	if xsrf != "" {
		form.Set(xsrfCookieName, xsrf)
		opts = append(opts,
			networking.WithHeader("Cookie", xsrfCookieName+"="+xsrf),
			networking.WithHeader("X-XSRFToken", xsrf))
	}

	resp, err := networking.PostForm(ctx, n.client, loginURL+"?next="+url.QueryEscape(mustPath(baseURL)), form, opts...)
	if err != nil {
		return nil, false, fmt.Errorf("failed to log in to %s: %w", loginURL, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusFound && resp.StatusCode != http.StatusSeeOther {
		return nil, false, nil
	}

	cookies := []string{}
	if xsrf != "" {
		cookies = append(cookies, xsrfCookieName+"="+xsrf)
	}
	session := false
	for _, c := range resp.Cookies() {
		if c.Name == xsrfCookieName || c.Value == "" {
			continue
		}
		cookies = append(cookies, c.Name+"="+c.Value)
		session = true
	}
	if !session {
		return nil, false, nil
	}

	headers := map[string]string{"Cookie": strings.Join(cookies, "; ")}
	if xsrf != "" {
		headers["X-XSRFToken"] = xsrf
	}
	return headers, true, nil
}

func (n *PasswordNegotiator) fetchXSRF(ctx context.Context, loginURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, loginURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := n.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to load %s: %w", loginURL, networking.ClassifyTransportError(err))
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	for _, c := range resp.Cookies() {
		if c.Name == xsrfCookieName {
			return c.Value, nil
		}
	}
	// Servers with XSRF checks disabled never set the cookie.
	return "", nil
}

// isJupyterHub probes {base}/hub/api, which answers with the hub version.
func (n *PasswordNegotiator) isJupyterHub(ctx context.Context, baseURL string) bool {
	res, err := networking.FetchJSON[map[string]any](ctx, n.client, endpoint(baseURL, "hub/api"))
	if err != nil {
		return false
	}
	_, ok := res.Data["version"]
	return ok
}

// endpoint joins an API path onto a base URL that may or may not end in /.
func endpoint(baseURL, path string) string {
	return strings.TrimSuffix(baseURL, "/") + "/" + strings.TrimPrefix(path, "/")
}

func mustPath(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil || u.Path == "" {
		return "/"
	}
	return u.Path
}
