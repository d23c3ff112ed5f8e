// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package servers

import "sync"

// DisplayNameRegistry remembers display names chosen during this process,
// keyed by handle. It overrides names in the persisted list, which may lag
// behind an edit.
type DisplayNameRegistry struct {
	mu    sync.RWMutex
	names map[string]string
}

// NewDisplayNameRegistry returns an empty registry.
func NewDisplayNameRegistry() *DisplayNameRegistry {
	return &DisplayNameRegistry{names: make(map[string]string)}
}

// Set records name for handle.
func (r *DisplayNameRegistry) Set(handle, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.names[handle] = name
}

// Get returns the recorded name for handle.
func (r *DisplayNameRegistry) Get(handle string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	name, ok := r.names[handle]
	return name, ok
}

// Delete forgets handle.
func (r *DisplayNameRegistry) Delete(handle string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.names, handle)
}

// Reset forgets every handle.
func (r *DisplayNameRegistry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.names = make(map[string]string)
}
