// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package servers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayNameRegistry(t *testing.T) {
	t.Parallel()

	r := NewDisplayNameRegistry()

	_, ok := r.Get("h1")
	assert.False(t, ok)

	r.Set("h1", "Lab box")
	r.Set("h2", "GPU")
	name, ok := r.Get("h1")
	assert.True(t, ok)
	assert.Equal(t, "Lab box", name)

	r.Set("h1", "Renamed")
	name, _ = r.Get("h1")
	assert.Equal(t, "Renamed", name)

	r.Delete("h1")
	_, ok = r.Get("h1")
	assert.False(t, ok)

	r.Reset()
	_, ok = r.Get("h2")
	assert.False(t, ok)
}
