// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package jupyter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/gofrs/flock"
)

const lockRetryInterval = 50 * time.Millisecond

// KernelSpecCache keeps the last kernel specs each server reported, one JSON
// file per server handle.
type KernelSpecCache struct {
	dir string
}

// DefaultKernelSpecCacheDir returns $XDG_CACHE_HOME/kernelhive/kernelspecs.
func DefaultKernelSpecCacheDir() string {
	return filepath.Join(xdg.CacheHome, "kernelhive", "kernelspecs")
}

// NewKernelSpecCache creates a cache rooted at dir. The directory is created
// on first write.
func NewKernelSpecCache(dir string) *KernelSpecCache {
	return &KernelSpecCache{dir: dir}
}

// Dir returns the cache directory.
func (c *KernelSpecCache) Dir() string {
	return c.dir
}

func (c *KernelSpecCache) path(handle string) (string, error) {
	if handle == "" || strings.ContainsAny(handle, `/\`) || handle == "." || handle == ".." {
		return "", fmt.Errorf("invalid server handle %q", handle)
	}
	return filepath.Join(c.dir, handle+".json"), nil
}

// Save writes specs for handle atomically.
func (c *KernelSpecCache) Save(handle string, specs *KernelSpecs) error {
	path, err := c.path(handle)
	if err != nil {
		return err
	}
	data, err := json.Marshal(specs)
	if err != nil {
		return fmt.Errorf("failed to encode kernel specs: %w", err)
	}
	if err := os.MkdirAll(c.dir, 0o700); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(c.dir, handle+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create cache file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace cache file: %w", err)
	}
	return nil
}

// Load returns the cached specs for handle. A missing entry returns
// os.ErrNotExist.
func (c *KernelSpecCache) Load(handle string) (*KernelSpecs, error) {
	path, err := c.path(handle)
	if err != nil {
		return nil, err
	}
	// #nosec G304: the path is built from a validated handle.
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var specs KernelSpecs
	if err := json.Unmarshal(data, &specs); err != nil {
		return nil, fmt.Errorf("failed to parse cached kernel specs for %s: %w", handle, err)
	}
	return &specs, nil
}

// Remove deletes the entry for handle. Missing entries are not an error.
func (c *KernelSpecCache) Remove(handle string) error {
	path, err := c.path(handle)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove cached kernel specs for %s: %w", handle, err)
	}
	return nil
}

// Clear deletes every entry. A lock file next to the directory keeps two
// processes from clearing at the same time.
func (c *KernelSpecCache) Clear(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(c.dir), 0o700); err != nil {
		return fmt.Errorf("failed to create cache parent directory: %w", err)
	}
	lock := flock.New(c.dir + ".lock")
	locked, err := lock.TryLockContext(ctx, lockRetryInterval)
	if err != nil {
		return fmt.Errorf("failed to lock kernel spec cache: %w", err)
	}
	if !locked {
		return fmt.Errorf("failed to lock kernel spec cache")
	}
	defer func() { _ = lock.Unlock() }()

	if err := os.RemoveAll(c.dir); err != nil {
		return fmt.Errorf("failed to clear kernel spec cache: %w", err)
	}
	return nil
}
