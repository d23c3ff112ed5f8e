// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package servers owns the set of remote Jupyter servers a user has added:
// the persisted list, its in-memory cache and the display-name overrides.
package servers

import (
	"context"

	"github.com/stacklok/kernelhive/pkg/serveruri"
)

//go:generate mockgen -destination=mocks/mock_storage.go -package=mocks -source=types.go SecureStorage

// DefaultStorageKey is the secure-storage key holding the server list.
const DefaultStorageKey = "jupyter.remoteServers"

// SecureStorage is an encrypted string key-value store. Get returns an empty
// string for a missing key; Set with an empty value deletes the key.
type SecureStorage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// StoredServer is one persisted remote server. Handle is the stable identity
// used by pickers; URI is what the user originally typed.
type StoredServer struct {
	Handle     string
	URI        string
	ServerInfo serveruri.Descriptor
}

// StorageRecord is the on-disk projection of a StoredServer. Tokens and
// headers are re-derived from URI at read time.
type StorageRecord struct {
	Handle      string `json:"handle"`
	URI         string `json:"uri"`
	DisplayName string `json:"displayName"`
}

func toRecord(s StoredServer) StorageRecord {
	return StorageRecord{
		Handle:      s.Handle,
		URI:         s.URI,
		DisplayName: s.ServerInfo.DisplayName,
	}
}

// fromRecord re-runs the codec over a persisted record.
func fromRecord(r StorageRecord) (StoredServer, bool) {
	info, ok := serveruri.Parse(r.URI, r.DisplayName)
	if !ok {
		return StoredServer{}, false
	}
	return StoredServer{Handle: r.Handle, URI: r.URI, ServerInfo: *info}, true
}
