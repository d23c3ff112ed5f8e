// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package serveruri parses user-entered Jupyter server URLs into connection
// descriptors and normalizes deep links back to the server's base URL.
package serveruri

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/stacklok/kernelhive/pkg/logger"
	"github.com/stacklok/kernelhive/pkg/networking"
)

// InternalURIPrefix marks URIs minted by kernelhive itself. They never point
// at a real remote server.
const InternalURIPrefix = "kernelhive-internal:"

const loginMarker = "login?"

// Descriptor is a normalized connection to a Jupyter server.
type Descriptor struct {
	// BaseURL is absolute, has no query and no trailing /lab or /tree.
	BaseURL string `json:"baseUrl"`
	// Token is the value of the token query parameter, or empty.
	Token string `json:"token"`
	// DisplayName is the label shown in pickers.
	DisplayName string `json:"displayName"`
	// AuthorizationHeader is re-derived on every resolve and never persisted.
	AuthorizationHeader map[string]string `json:"authorizationHeader,omitempty"`
	// MappedRemoteNotebookDir maps the server root to a local directory.
	MappedRemoteNotebookDir string `json:"mappedRemoteNotebookDir,omitempty"`
}

// Parse turns raw into a Descriptor. displayName overrides the default label,
// the URL's hostname. It returns false for internal URIs and anything that is
// not an absolute http(s) URL.
func Parse(raw, displayName string) (*Descriptor, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.HasPrefix(raw, InternalURIPrefix) {
		return nil, false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, false
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, false
	}

	path := u.EscapedPath()
	if path == "" || path == "/lab" || path == "/tree" {
		path = "/"
	}
	if displayName == "" {
		displayName = u.Hostname()
	}

	return &Descriptor{
		BaseURL:     u.Scheme + "://" + u.Host + path,
		Token:       u.Query().Get("token"),
		DisplayName: displayName,
	}, true
}

// Serialize renders d as a URL that Parse maps back to the same base URL and
// token.
func Serialize(d *Descriptor) string {
	if d == nil {
		return ""
	}
	if d.Token == "" {
		return d.BaseURL
	}
	return d.BaseURL + "?" + url.Values{"token": {d.Token}}.Encode()
}

// ResolveBaseURL finds the real base URL behind a deep link such as
// /lab/workspaces/x or /user/me/notebooks/a.ipynb. Jupyter redirects
// unauthenticated requests to <base>/login?next=..., so everything before
// "login?" in the redirect target is the base.
//
// client must not follow redirects. Any failure returns false and callers
// fall back to Parse.
func ResolveBaseURL(ctx context.Context, raw string, client networking.HTTPClient) (string, bool) {
	d, ok := Parse(raw, "")
	if !ok {
		return "", false
	}
	base, err := url.Parse(d.BaseURL)
	if err != nil {
		return "", false
	}
	if base.Path == "/" {
		return d.BaseURL, true
	}

	probe, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", false
	}
	query := probe.Query()
	query.Del("token")
	probe.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, probe.String(), nil)
	if err != nil {
		return "", false
	}
	resp, err := client.Do(req)
	if err != nil {
		logger.Debugf("base url probe for %s failed: %v", probe.Redacted(), err)
		return "", false
	}
	_ = resp.Body.Close()

	target := resp.Header.Get("Location")
	if target == "" && resp.Request != nil && resp.Request.URL != nil {
		// the client followed the redirect after all
		target = resp.Request.URL.String()
	}
	if target == "" {
		return "", false
	}
	location, err := probe.Parse(target)
	if err != nil {
		return "", false
	}
	resolved := location.String()
	idx := strings.Index(resolved, loginMarker)
	if idx < 0 {
		return "", false
	}
	return resolved[:idx], true
}
