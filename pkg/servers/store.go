// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package servers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/stacklok/kernelhive/pkg/logger"
)

const (
	defaultWriteAttempts = 3
	queueDepth           = 64
)

// ErrStoreClosed is returned by mutations issued after Close.
var ErrStoreClosed = errors.New("server store is closed")

// Store persists the server list in secure storage.
//
// Reads are served from an in-memory cache once loaded. Mutations update the
// cache immediately and then run, one at a time and in call order, on a
// single worker that reloads the durable list, applies the change and writes
// it back. Durable write failures are logged; the cache stays authoritative
// for this process.
type Store struct {
	storage       SecureStorage
	key           string
	log           *slog.Logger
	writeAttempts uint
	retryInterval time.Duration

	mu      sync.Mutex
	servers []StoredServer
	loaded  bool
	closed  bool
	// gen counts mutations so a reload that raced one can be discarded.
	gen uint64

	// sendMu orders queue sends without holding mu, so readers never wait
	// behind a full queue.
	sendMu sync.Mutex

	queue chan storeOp
	done  chan struct{}
}

type storeOp struct {
	name  string
	apply func([]StoredServer) []StoredServer
	done  chan struct{}
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithStorageKey overrides DefaultStorageKey.
func WithStorageKey(key string) StoreOption {
	return func(s *Store) {
		s.key = key
	}
}

// WithLogger injects the logger used for swallowed failures.
func WithLogger(l *slog.Logger) StoreOption {
	return func(s *Store) {
		s.log = l
	}
}

// WithWriteRetry sets how many times a durable write is attempted and the
// initial backoff between attempts.
func WithWriteRetry(attempts uint, interval time.Duration) StoreOption {
	return func(s *Store) {
		if attempts > 0 {
			s.writeAttempts = attempts
		}
		s.retryInterval = interval
	}
}

// NewStore creates a Store and starts its write worker. Call Close to stop it.
func NewStore(storage SecureStorage, opts ...StoreOption) *Store {
	s := &Store{
		storage:       storage,
		key:           DefaultStorageKey,
		log:           logger.Get(),
		writeAttempts: defaultWriteAttempts,
		retryInterval: 100 * time.Millisecond,
		queue:         make(chan storeOp, queueDepth),
		done:          make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	go s.run()
	return s
}

// GetServers returns the known servers. With ignoreCache, or before the
// first load, it reads secure storage and refreshes the cache.
func (s *Store) GetServers(ctx context.Context, ignoreCache bool) ([]StoredServer, error) {
	s.mu.Lock()
	if s.loaded && !ignoreCache {
		servers := slices.Clone(s.servers)
		s.mu.Unlock()
		return servers, nil
	}
	gen := s.gen
	s.mu.Unlock()

	servers, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		// A mutation landed while storage was read. The cache already
		// holds it; without a cache the next read loads again.
		if s.loaded {
			return slices.Clone(s.servers), nil
		}
		return servers, nil
	}
	s.servers = servers
	s.loaded = true
	return slices.Clone(servers), nil
}

// Add stores server, replacing any entry with the same handle. It returns
// once the durable write has been attempted or ctx is done.
func (s *Store) Add(ctx context.Context, server StoredServer) error {
	done, err := s.addAsync(server)
	if err != nil {
		return err
	}
	return wait(ctx, done)
}

// Remove drops the server with handle.
func (s *Store) Remove(ctx context.Context, handle string) error {
	done, err := s.removeAsync(handle)
	if err != nil {
		return err
	}
	return wait(ctx, done)
}

// Clear drops every server and deletes the storage key.
func (s *Store) Clear(ctx context.Context) error {
	done, err := s.enqueue("clear",
		func([]StoredServer) []StoredServer { return nil },
		func([]StoredServer) []StoredServer { return nil },
	)
	if err != nil {
		return err
	}
	return wait(ctx, done)
}

// Close waits for queued writes to finish and stops the worker.
func (s *Store) Close() {
	s.sendMu.Lock()
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.queue)
	}
	s.mu.Unlock()
	s.sendMu.Unlock()
	<-s.done
}

func (s *Store) addAsync(server StoredServer) (<-chan struct{}, error) {
	replace := func(list []StoredServer) []StoredServer {
		list = slices.DeleteFunc(slices.Clone(list), func(e StoredServer) bool { return e.Handle == server.Handle })
		return append(list, server)
	}
	return s.enqueue("add", replace, replace)
}

func (s *Store) removeAsync(handle string) (<-chan struct{}, error) {
	drop := func(list []StoredServer) []StoredServer {
		return slices.DeleteFunc(slices.Clone(list), func(e StoredServer) bool { return e.Handle == handle })
	}
	return s.enqueue("remove", drop, drop)
}

// enqueue applies optimistic to a loaded cache and queues durable for the
// worker. Both happen under s.sendMu so cache order and write order agree;
// s.mu is released before the send.
func (s *Store) enqueue(
	name string,
	optimistic func([]StoredServer) []StoredServer,
	durable func([]StoredServer) []StoredServer,
) (<-chan struct{}, error) {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrStoreClosed
	}
	s.gen++
	if s.loaded {
		s.servers = optimistic(s.servers)
	} else if name == "clear" {
		s.servers = nil
		s.loaded = true
	}
	s.mu.Unlock()

	op := storeOp{name: name, apply: durable, done: make(chan struct{})}
	s.queue <- op
	return op.done, nil
}

func (s *Store) run() {
	defer close(s.done)
	for op := range s.queue {
		s.process(op)
		close(op.done)
	}
}

func (s *Store) process(op storeOp) {
	// Queued writes outlive the caller's context.
	ctx := context.Background()

	var durable []StoredServer
	if op.name != "clear" {
		loaded, err := s.load(ctx)
		if err != nil {
			s.log.Warn("failed to reload servers before write", "op", op.name, "error", err)
			return
		}
		durable = loaded
	}

	if err := s.persist(ctx, op.apply(durable), op.name == "clear"); err != nil {
		s.log.Warn("failed to persist servers", "op", op.name, "error", err)
	}
}

func (s *Store) load(ctx context.Context) ([]StoredServer, error) {
	raw, err := s.storage.Get(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("failed to read servers from secure storage: %w", err)
	}
	if raw == "" {
		return nil, nil
	}

	var records []StorageRecord
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		s.log.Warn("ignoring unreadable server list in secure storage", "error", err)
		return nil, nil
	}

	servers := make([]StoredServer, 0, len(records))
	for _, record := range records {
		server, ok := fromRecord(record)
		if !ok {
			s.log.Debug("dropping stored server that no longer parses", "handle", record.Handle)
			continue
		}
		servers = append(servers, server)
	}
	return servers, nil
}

func (s *Store) persist(ctx context.Context, servers []StoredServer, clear bool) error {
	value := ""
	if !clear {
		records := make([]StorageRecord, 0, len(servers))
		for _, server := range servers {
			records = append(records, toRecord(server))
		}
		data, err := json.Marshal(records)
		if err != nil {
			return fmt.Errorf("failed to serialize servers: %w", err)
		}
		value = string(data)
	}

	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = s.retryInterval
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		return struct{}{}, s.storage.Set(ctx, s.key, value)
	},
		backoff.WithBackOff(expBackoff),
		backoff.WithMaxTries(s.writeAttempts),
		backoff.WithNotify(func(err error, next time.Duration) {
			s.log.Debug("retrying secure storage write", "error", err, "in", next)
		}),
	)
	return err
}

func wait(ctx context.Context, done <-chan struct{}) error {
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
