// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package networking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const (
	// DefaultMaxResponseSize caps how much of a response body is read (1MB).
	DefaultMaxResponseSize = 1024 * 1024

	// DefaultErrorPreviewSize caps HTTPError.Body.
	DefaultErrorPreviewSize = 1024

	// ContentTypeJSON is the JSON content type.
	ContentTypeJSON = "application/json"

	// ContentTypeFormURLEncoded is the form-urlencoded content type.
	ContentTypeFormURLEncoded = "application/x-www-form-urlencoded"
)

// ErrFetchFailed marks a request that never produced an HTTP response.
var ErrFetchFailed = errors.New("failed to fetch")

// FetchResult is a decoded 200 response.
type FetchResult[T any] struct {
	Data       T
	StatusCode int
	Headers    http.Header
}

// FetchOption configures a request made by FetchJSON or PostForm.
type FetchOption func(*fetchOptions)

type fetchOptions struct {
	headers         http.Header
	token           string
	skipContentType bool
}

// WithHeader sets a single request header.
func WithHeader(key, value string) FetchOption {
	return func(opts *fetchOptions) {
		opts.headers.Set(key, value)
	}
}

// WithHeaderMap sets every entry of a flat header map, the shape Jupyter
// connection descriptors carry their auth headers in.
func WithHeaderMap(headers map[string]string) FetchOption {
	return func(opts *fetchOptions) {
		for key, value := range headers {
			opts.headers.Set(key, value)
		}
	}
}

// WithToken sends a Jupyter API token as "Authorization: token <t>" unless
// another option already set an Authorization header. An empty token is
// ignored.
func WithToken(token string) FetchOption {
	return func(opts *fetchOptions) {
		opts.token = token
	}
}

// WithoutContentTypeValidation accepts JSON bodies served with any
// Content-Type. Older notebook servers answer /api as text/html.
func WithoutContentTypeValidation() FetchOption {
	return func(opts *fetchOptions) {
		opts.skipContentType = true
	}
}

func buildRequest(ctx context.Context, method, requestURL string, body io.Reader, base http.Header, opts []FetchOption) (*http.Request, *fetchOptions, error) {
	options := &fetchOptions{headers: base}
	for _, opt := range opts {
		opt(options)
	}
	if options.token != "" && options.headers.Get("Authorization") == "" {
		options.headers.Set("Authorization", "token "+options.token)
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header = options.headers
	return req, options, nil
}

// FetchJSON GETs requestURL and decodes a 200 response into T. Other status
// codes return an *HTTPError. Transport failures wrap ErrFetchFailed and,
// where the TLS layer rejected the peer, ErrSelfSignedCert or ErrExpiredCert.
func FetchJSON[T any](ctx context.Context, client HTTPClient, requestURL string, opts ...FetchOption) (*FetchResult[T], error) {
	req, options, err := buildRequest(ctx, http.MethodGet, requestURL, nil,
		http.Header{"Accept": {ContentTypeJSON}}, opts)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, ClassifyTransportError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, DefaultMaxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		preview := body[:min(len(body), DefaultErrorPreviewSize)]
		return nil, NewHTTPError(resp.StatusCode, requestURL, string(preview))
	}

	if contentType := resp.Header.Get("Content-Type"); !options.skipContentType &&
		!strings.Contains(strings.ToLower(contentType), ContentTypeJSON) {
		return nil, fmt.Errorf("unexpected content type %q from %s", contentType, requestURL)
	}

	var data T
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("failed to parse JSON from %s: %w", requestURL, err)
	}
	return &FetchResult[T]{Data: data, StatusCode: resp.StatusCode, Headers: resp.Header}, nil
}

// PostForm posts form to requestURL and returns the raw response, whatever
// its status. The caller closes the body.
func PostForm(ctx context.Context, client HTTPClient, requestURL string, form url.Values, opts ...FetchOption) (*http.Response, error) {
	req, _, err := buildRequest(ctx, http.MethodPost, requestURL, strings.NewReader(form.Encode()),
		http.Header{"Content-Type": {ContentTypeFormURLEncoded}}, opts)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, ClassifyTransportError(err)
	}
	return resp, nil
}
