// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package servers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/mock/gomock"

	"github.com/stacklok/kernelhive/pkg/servers/mocks"
	"github.com/stacklok/kernelhive/pkg/serveruri"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// memStorage is a SecureStorage whose writes can be held back with gate.
type memStorage struct {
	mu     sync.Mutex
	values map[string]string
	reads  int
	writes int
	gate   chan struct{}
	// readGate, when set, holds every Get; readEntered is signalled first.
	readGate    chan struct{}
	readEntered chan struct{}
}

func newMemStorage() *memStorage {
	return &memStorage{values: make(map[string]string)}
}

func (m *memStorage) Get(_ context.Context, key string) (string, error) {
	if m.readGate != nil {
		select {
		case m.readEntered <- struct{}{}:
		default:
		}
		<-m.readGate
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads++
	return m.values[key], nil
}

func (m *memStorage) Set(_ context.Context, key, value string) error {
	if m.gate != nil {
		<-m.gate
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	if value == "" {
		delete(m.values, key)
		return nil
	}
	m.values[key] = value
	return nil
}

func (m *memStorage) records(t *testing.T) []StorageRecord {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.values[DefaultStorageKey]
	if !ok {
		return nil
	}
	var records []StorageRecord
	require.NoError(t, json.Unmarshal([]byte(raw), &records))
	return records
}

func server(t *testing.T, handle, uri string) StoredServer {
	t.Helper()
	info, ok := serveruri.Parse(uri, "")
	require.True(t, ok)
	return StoredServer{Handle: handle, URI: uri, ServerInfo: *info}
}

func newTestStore(t *testing.T, storage SecureStorage) *Store {
	t.Helper()
	s := NewStore(storage, WithWriteRetry(1, 0))
	t.Cleanup(s.Close)
	return s
}

func TestStore_GetServers_EmptyStorage(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, newMemStorage())

	got, err := s.GetServers(t.Context(), false)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStore_GetServers_DropsEntriesThatDoNotParse(t *testing.T) {
	t.Parallel()

	storage := newMemStorage()
	storage.values[DefaultStorageKey] = `[
		{"handle": "h1", "uri": "http://localhost:8888/?token=abc", "displayName": "Local"},
		{"handle": "h2", "uri": "not a url", "displayName": "Broken"},
		{"handle": "h3", "uri": "kernelhive-internal://x", "displayName": "Internal"}
	]`
	s := newTestStore(t, storage)

	got, err := s.GetServers(t.Context(), false)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "h1", got[0].Handle)
	assert.Equal(t, "Local", got[0].ServerInfo.DisplayName)
	assert.Equal(t, "abc", got[0].ServerInfo.Token)
	assert.Equal(t, "http://localhost:8888/", got[0].ServerInfo.BaseURL)
}

func TestStore_GetServers_CorruptPayloadIsEmpty(t *testing.T) {
	t.Parallel()

	storage := newMemStorage()
	storage.values[DefaultStorageKey] = `{not json`
	s := newTestStore(t, storage)

	got, err := s.GetServers(t.Context(), false)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStore_GetServers_UsesCache(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	storage := mocks.NewMockSecureStorage(ctrl)
	storage.EXPECT().Get(gomock.Any(), DefaultStorageKey).
		Return(`[{"handle":"h1","uri":"http://localhost:8888/","displayName":"a"}]`, nil).
		Times(1)

	s := newTestStore(t, storage)

	first, err := s.GetServers(t.Context(), false)
	require.NoError(t, err)
	second, err := s.GetServers(t.Context(), false)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestStore_GetServers_IgnoreCacheReloads(t *testing.T) {
	t.Parallel()

	storage := newMemStorage()
	s := newTestStore(t, storage)

	_, err := s.GetServers(t.Context(), false)
	require.NoError(t, err)

	storage.mu.Lock()
	storage.values[DefaultStorageKey] = `[{"handle":"h9","uri":"https://example.com/","displayName":"remote"}]`
	storage.mu.Unlock()

	got, err := s.GetServers(t.Context(), true)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "h9", got[0].Handle)
	assert.Equal(t, 2, storage.reads)
}

func TestStore_GetServers_ReadError(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	storage := mocks.NewMockSecureStorage(ctrl)
	storage.EXPECT().Get(gomock.Any(), DefaultStorageKey).Return("", errors.New("keyring locked"))

	s := newTestStore(t, storage)

	_, err := s.GetServers(t.Context(), false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "keyring locked")
}

func TestStore_AddReplacesSameHandle(t *testing.T) {
	t.Parallel()

	storage := newMemStorage()
	s := newTestStore(t, storage)
	ctx := t.Context()

	require.NoError(t, s.Add(ctx, server(t, "h1", "http://localhost:8888/")))
	require.NoError(t, s.Add(ctx, server(t, "h1", "http://localhost:9999/?token=new")))

	records := storage.records(t)
	require.Len(t, records, 1)
	assert.Equal(t, "h1", records[0].Handle)
	assert.Equal(t, "http://localhost:9999/?token=new", records[0].URI)

	got, err := s.GetServers(ctx, true)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "new", got[0].ServerInfo.Token)
}

func TestStore_OptimisticCacheBeforeWriteLands(t *testing.T) {
	t.Parallel()

	storage := newMemStorage()
	storage.gate = make(chan struct{})
	s := newTestStore(t, storage)
	ctx := t.Context()

	_, err := s.GetServers(ctx, false)
	require.NoError(t, err)

	done, err := s.addAsync(server(t, "h1", "http://localhost:8888/"))
	require.NoError(t, err)

	cached, err := s.GetServers(ctx, false)
	require.NoError(t, err)
	require.Len(t, cached, 1, "cache must reflect the add before the write lands")
	assert.Empty(t, storage.records(t))

	close(storage.gate)
	<-done
	assert.Len(t, storage.records(t), 1)
}

func TestStore_MutationsApplyInCallOrder(t *testing.T) {
	t.Parallel()

	storage := newMemStorage()
	storage.gate = make(chan struct{})
	s := newTestStore(t, storage)

	a := server(t, "A", "http://a.example.com/")
	b := server(t, "B", "http://b.example.com/")

	doneA, err := s.addAsync(a)
	require.NoError(t, err)
	doneB, err := s.addAsync(b)
	require.NoError(t, err)
	doneRemove, err := s.removeAsync("A")
	require.NoError(t, err)

	close(storage.gate)
	<-doneA
	<-doneB
	<-doneRemove

	records := storage.records(t)
	require.Len(t, records, 1)
	assert.Equal(t, "B", records[0].Handle)
	assert.Equal(t, 3, storage.writes)
}

func TestStore_ConcurrentAddsDoNotLoseUpdates(t *testing.T) {
	t.Parallel()

	storage := newMemStorage()
	s := newTestStore(t, storage)
	ctx := t.Context()

	var wg sync.WaitGroup
	for _, handle := range []string{"h1", "h2", "h3", "h4", "h5"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.Add(ctx, server(t, handle, "http://"+handle+".example.com/")))
		}()
	}
	wg.Wait()

	assert.Len(t, storage.records(t), 5)
}

func TestStore_Remove(t *testing.T) {
	t.Parallel()

	storage := newMemStorage()
	s := newTestStore(t, storage)
	ctx := t.Context()

	require.NoError(t, s.Add(ctx, server(t, "h1", "http://localhost:8888/")))
	require.NoError(t, s.Add(ctx, server(t, "h2", "http://localhost:8889/")))
	_, err := s.GetServers(ctx, false)
	require.NoError(t, err)

	require.NoError(t, s.Remove(ctx, "h1"))

	cached, err := s.GetServers(ctx, false)
	require.NoError(t, err)
	require.Len(t, cached, 1)
	assert.Equal(t, "h2", cached[0].Handle)
	require.Len(t, storage.records(t), 1)
}

func TestStore_Clear(t *testing.T) {
	t.Parallel()

	storage := newMemStorage()
	s := newTestStore(t, storage)
	ctx := t.Context()

	require.NoError(t, s.Add(ctx, server(t, "h1", "http://localhost:8888/")))
	require.NoError(t, s.Clear(ctx))

	got, err := s.GetServers(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, got)

	storage.mu.Lock()
	_, present := storage.values[DefaultStorageKey]
	storage.mu.Unlock()
	assert.False(t, present)
}

func TestStore_WriteFailureIsSwallowed(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	storage := mocks.NewMockSecureStorage(ctrl)
	storage.EXPECT().Get(gomock.Any(), DefaultStorageKey).Return("", nil).AnyTimes()
	storage.EXPECT().Set(gomock.Any(), DefaultStorageKey, gomock.Any()).
		Return(errors.New("keyring unavailable")).
		Times(2)

	s := NewStore(storage, WithWriteRetry(2, 0))
	t.Cleanup(s.Close)
	ctx := t.Context()

	_, err := s.GetServers(ctx, false)
	require.NoError(t, err)
	require.NoError(t, s.Add(ctx, server(t, "h1", "http://localhost:8888/")))

	cached, err := s.GetServers(ctx, false)
	require.NoError(t, err)
	assert.Len(t, cached, 1, "cache stays authoritative after a failed write")
}

func TestStore_Close(t *testing.T) {
	t.Parallel()

	s := NewStore(newMemStorage())
	s.Close()
	s.Close()

	err := s.Add(context.Background(), StoredServer{Handle: "h1"})
	assert.ErrorIs(t, err, ErrStoreClosed)
}

func TestStore_AddHonoursContext(t *testing.T) {
	t.Parallel()

	storage := newMemStorage()
	storage.gate = make(chan struct{})
	s := newTestStore(t, storage)
	t.Cleanup(func() { close(storage.gate) })

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	err := s.Add(ctx, server(t, "h1", "http://localhost:8888/"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStore_ReloadDoesNotDropConcurrentAdd(t *testing.T) {
	t.Parallel()

	storage := newMemStorage()
	s := newTestStore(t, storage)
	ctx := t.Context()

	_, err := s.GetServers(ctx, false)
	require.NoError(t, err)

	storage.readGate = make(chan struct{})
	storage.readEntered = make(chan struct{}, 1)

	type reload struct {
		servers []StoredServer
		err     error
	}
	reloaded := make(chan reload, 1)
	go func() {
		got, err := s.GetServers(ctx, true)
		reloaded <- reload{got, err}
	}()
	<-storage.readEntered

	// The reload has read storage; the add lands before it stores.
	done, err := s.addAsync(server(t, "h1", "http://localhost:8888/"))
	require.NoError(t, err)
	close(storage.readGate)

	res := <-reloaded
	require.NoError(t, res.err)
	require.Len(t, res.servers, 1)
	assert.Equal(t, "h1", res.servers[0].Handle)

	cached, err := s.GetServers(ctx, false)
	require.NoError(t, err)
	require.Len(t, cached, 1, "a stale reload must not replace the cache")
	<-done
}

func TestStore_ReadersDoNotWaitForFullQueue(t *testing.T) {
	t.Parallel()

	storage := newMemStorage()
	storage.gate = make(chan struct{})
	s := newTestStore(t, storage)
	ctx := t.Context()

	_, err := s.GetServers(ctx, false)
	require.NoError(t, err)

	// One write blocks in Set; the rest fill the queue.
	var pending []<-chan struct{}
	for i := range queueDepth + 1 {
		done, err := s.addAsync(server(t, fmt.Sprintf("h%d", i), "http://localhost:8888/"))
		require.NoError(t, err)
		pending = append(pending, done)
	}

	blocked := make(chan (<-chan struct{}), 1)
	go func() {
		done, _ := s.addAsync(server(t, "overflow", "http://localhost:8888/"))
		blocked <- done
	}()
	require.Eventually(t, func() bool {
		if s.sendMu.TryLock() {
			s.sendMu.Unlock()
			return false
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		return len(s.servers) == queueDepth+2
	}, time.Second, time.Millisecond, "the extra add should be waiting on the queue")

	read := make(chan int, 1)
	go func() {
		got, _ := s.GetServers(ctx, false)
		read <- len(got)
	}()
	select {
	case n := <-read:
		assert.Equal(t, queueDepth+2, n)
	case <-time.After(time.Second):
		t.Fatal("GetServers blocked behind a full write queue")
	}

	close(storage.gate)
	pending = append(pending, <-blocked)
	for _, done := range pending {
		<-done
	}
}
