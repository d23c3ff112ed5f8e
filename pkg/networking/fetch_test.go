// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package networking

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type apiVersion struct {
	Version string `json:"version"`
}

func TestFetchJSON_Success(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "token abc123", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(apiVersion{Version: "2.14.0"})
	}))
	defer server.Close()

	result, err := FetchJSON[apiVersion](t.Context(), server.Client(), server.URL+"/api",
		WithHeaderMap(map[string]string{"Authorization": "token abc123"}),
	)
	require.NoError(t, err)
	assert.Equal(t, "2.14.0", result.Data.Version)
	assert.Equal(t, http.StatusOK, result.StatusCode)
}

func TestFetchJSON_HTTPError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message": "Forbidden"}`))
	}))
	defer server.Close()

	_, err := FetchJSON[apiVersion](t.Context(), server.Client(), server.URL)
	require.Error(t, err)
	assert.True(t, IsHTTPError(err, http.StatusForbidden))
	assert.True(t, IsHTTPError(err, 0))
	assert.False(t, IsHTTPError(err, http.StatusNotFound))
}

func TestFetchJSON_WithToken(t *testing.T) {
	t.Parallel()

	var got []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = append(got, r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"version":"2.14.0"}`))
	}))
	defer server.Close()

	_, err := FetchJSON[apiVersion](t.Context(), server.Client(), server.URL, WithToken("abc123"))
	require.NoError(t, err)

	// Negotiated headers win over the token regardless of option order.
	_, err = FetchJSON[apiVersion](t.Context(), server.Client(), server.URL,
		WithToken("abc123"),
		WithHeaderMap(map[string]string{"Authorization": "Bearer hub"}),
	)
	require.NoError(t, err)

	_, err = FetchJSON[apiVersion](t.Context(), server.Client(), server.URL, WithToken(""))
	require.NoError(t, err)

	assert.Equal(t, []string{"token abc123", "Bearer hub", ""}, got)
}

func TestFetchJSON_ContentTypeValidation(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`{"version": "1"}`))
	}))
	defer server.Close()

	_, err := FetchJSON[apiVersion](t.Context(), server.Client(), server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected content type")

	result, err := FetchJSON[apiVersion](t.Context(), server.Client(), server.URL, WithoutContentTypeValidation())
	require.NoError(t, err)
	assert.Equal(t, "1", result.Data.Version)
}

func TestFetchJSON_NetworkErrorIsFetchFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.NotFoundHandler())
	serverURL := server.URL
	server.Close()

	_, err := FetchJSON[apiVersion](t.Context(), http.DefaultClient, serverURL)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetchFailed)
}

func TestFetchJSON_ContextCancellation(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := FetchJSON[apiVersion](ctx, server.Client(), server.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrFetchFailed)
}

func TestPostForm(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "s3cret", r.Form.Get("password"))
		assert.Equal(t, "xsrf-value", r.Header.Get("X-XSRFToken"))
		w.WriteHeader(http.StatusFound)
	}))
	defer server.Close()

	resp, err := PostForm(t.Context(), server.Client(), server.URL+"/login",
		url.Values{"password": {"s3cret"}},
		WithHeader("X-XSRFToken", "xsrf-value"),
	)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusFound, resp.StatusCode)
}
