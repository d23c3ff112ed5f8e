// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package networking

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
)

// HTTPError is a non-2xx answer from a server.
type HTTPError struct {
	URL        string
	StatusCode int
	// Body is a preview of the response body, capped at DefaultErrorPreviewSize.
	Body string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s answered %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("%s answered %d %s: %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode), e.Body)
}

// NewHTTPError records a failed response from url.
func NewHTTPError(statusCode int, url, body string) error {
	return &HTTPError{URL: url, StatusCode: statusCode, Body: body}
}

// IsHTTPError reports whether err wraps an HTTPError with statusCode. A zero
// statusCode matches any HTTPError.
func IsHTTPError(err error, statusCode int) bool {
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		return false
	}
	return statusCode == 0 || httpErr.StatusCode == statusCode
}

// IsAuthError reports a 401 or 403, which Jupyter servers send when a token
// or password is missing or wrong.
func IsAuthError(err error) bool {
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		return false
	}
	return slices.Contains([]int{http.StatusUnauthorized, http.StatusForbidden}, httpErr.StatusCode)
}
