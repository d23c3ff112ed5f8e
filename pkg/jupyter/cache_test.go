// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package jupyter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKernelSpecCache_RoundTripAndClear(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "kernelspecs")
	cache := NewKernelSpecCache(dir)
	want := &KernelSpecs{
		Default: "ir",
		KernelSpecs: map[string]KernelSpec{
			"ir": {Name: "ir", Spec: KernelSpecFile{DisplayName: "R", Language: "R", Argv: []string{"R"}}},
		},
	}

	require.NoError(t, cache.Save("h1", want))
	got, err := cache.Load("h1")
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("cached specs mismatch (-want +got):\n%s", diff)
	}

	require.NoError(t, cache.Remove("h1"))
	require.NoError(t, cache.Remove("h1"))
	_, err = cache.Load("h1")
	assert.ErrorIs(t, err, os.ErrNotExist)

	require.NoError(t, cache.Save("h2", want))
	require.NoError(t, cache.Clear(t.Context()))
	_, err = os.Stat(dir)
	assert.ErrorIs(t, err, os.ErrNotExist)

	// Clearing a cache that was never written is fine.
	require.NoError(t, cache.Clear(t.Context()))
}

func TestKernelSpecCache_RejectsPathHandles(t *testing.T) {
	t.Parallel()

	cache := NewKernelSpecCache(t.TempDir())
	for _, handle := range []string{"", "..", "../escape", `a\b`} {
		assert.Error(t, cache.Save(handle, &KernelSpecs{}), handle)
	}
}
