// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package capture

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stacklok/kernelhive/pkg/networking"
)

func TestLinkifyURLs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"no links here", "no links here"},
		{"see https://example.com/api.", "see [https://example.com/api](https://example.com/api)."},
		{
			"a http://a/x, b https://b/y",
			"a [http://a/x](http://a/x), b [https://b/y](https://b/y)",
		},
		{`"https://q.example/p"`, `"[https://q.example/p](https://q.example/p)"`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, linkifyURLs(tt.in), tt.in)
	}
}

func TestIsFetchFailure(t *testing.T) {
	t.Parallel()

	assert.True(t, isFetchFailure(fmt.Errorf("x: %w", networking.ErrFetchFailed)))
	assert.True(t, isFetchFailure(errors.New("Failed to fetch")))
	assert.False(t, isFetchFailure(errors.New("401 Unauthorized")))
}

func TestStepStrings(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "GetUrl", StepGetURL.String())
	assert.Equal(t, "GetDisplayName", StepGetDisplayName.String())
	assert.Equal(t, "back", OutcomeBack.String())
}
