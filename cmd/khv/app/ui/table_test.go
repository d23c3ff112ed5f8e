// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/kernelhive/pkg/servers/provider"
)

func TestRenderServerTable(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := RenderServerTable(&buf, []provider.Server{
		{ID: "4f1c", Label: "Lab GPU box"},
		{ID: "9a2e", Label: "localhost"},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, strings.ToUpper(out), "NAME")
	assert.Contains(t, out, "Lab GPU box")
	assert.Contains(t, out, "9a2e")
}

func TestRenderServerTable_Empty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, RenderServerTable(&buf, nil))
	assert.Contains(t, buf.String(), "No remote Jupyter servers found")
}
