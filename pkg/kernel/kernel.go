// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package kernel defines the shapes shared by everything that runs code on a
// Jupyter kernel: outputs, status, and the contracts of the shared execution
// queue and the access policy.
package kernel

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"sync"

	"github.com/stacklok/kernelhive/pkg/events"
)

//go:generate mockgen -destination=mocks/mock_kernel.go -package=mocks -source=kernel.go Session,Queue,AccessPolicy

// ChatMimeType marks an output item that carries a chat callback request
// instead of displayable data.
const ChatMimeType = "application/vnd.kernelhive.chat-callback+json"

// Status is the lifecycle state reported by a kernel.
type Status string

// Kernel statuses.
const (
	StatusUnknown     Status = "unknown"
	StatusStarting    Status = "starting"
	StatusIdle        Status = "idle"
	StatusBusy        Status = "busy"
	StatusRestarting  Status = "restarting"
	StatusTerminating Status = "terminating"
	StatusDead        Status = "dead"
)

// OutputItem is one representation of an output.
type OutputItem struct {
	Mime string
	Data []byte
}

// Output is one result produced by a kernel execution.
type Output struct {
	Items    []OutputItem
	Metadata map[string]any
	// DisplayID is set for outputs that may later be updated in place.
	DisplayID string
}

// Item returns the first item with the given mime type.
func (o *Output) Item(mime string) (OutputItem, bool) {
	for _, item := range o.Items {
		if item.Mime == mime {
			return item, true
		}
	}
	return OutputItem{}, false
}

// ChatRequest is the metadata of a chat callback output.
type ChatRequest struct {
	ID         string `json:"id"`
	Function   string `json:"function"`
	DataIsNone bool   `json:"dataIsNone"`
}

// ChatRequest decodes the chat callback request carried in o's metadata.
func (o *Output) ChatRequest() (ChatRequest, error) {
	raw, err := json.Marshal(o.Metadata)
	if err != nil {
		return ChatRequest{}, fmt.Errorf("failed to encode chat metadata: %w", err)
	}
	var req ChatRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return ChatRequest{}, fmt.Errorf("failed to decode chat metadata: %w", err)
	}
	return req, nil
}

// DisplayUpdate replaces the content of a previously rendered output.
type DisplayUpdate struct {
	DisplayID string
	Output    *Output
}

// Session is a live kernel.
type Session interface {
	ID() string
	Status() Status
	// IsDisposed reports whether the kernel object was torn down.
	IsDisposed() bool
	// HasSession reports whether a server-side session is attached.
	HasSession() bool
	OnDidChangeStatus(fn func(Status)) func()
	OnDidReceiveDisplayUpdate(fn func(DisplayUpdate)) func()
}

// Request is one execution handed to the Queue.
type Request struct {
	Code        string
	ExtensionID string
	// Sent fires once the request is written to the kernel.
	Sent *events.Emitter[struct{}]
	// Acknowledged fires once the kernel accepts the request.
	Acknowledged *events.Emitter[struct{}]
}

// Queue runs at most one execution per kernel at a time, in arrival order.
// Cancelling ctx stops waiting for outputs; whether the kernel is
// interrupted is up to the queue.
type Queue interface {
	Execute(ctx context.Context, req Request) iter.Seq2[*Output, error]
}

// AccessPolicy decides which extensions may run code.
type AccessPolicy interface {
	IsAllowed(ctx context.Context, extensionID string) (bool, error)
	OnDidChangeAccess(fn func()) func()
}

// DisplayTracker remembers which extension rendered each display id, so
// in-place updates only reach the extension that owns the output. One
// tracker is shared by every caller of a kernel.
type DisplayTracker struct {
	mu     sync.RWMutex
	owners map[string]map[string]struct{}
}

// NewDisplayTracker creates an empty tracker.
func NewDisplayTracker() *DisplayTracker {
	return &DisplayTracker{owners: make(map[string]map[string]struct{})}
}

// Track records that extensionID rendered displayID.
func (t *DisplayTracker) Track(extensionID, displayID string) {
	if displayID == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	set, ok := t.owners[displayID]
	if !ok {
		set = make(map[string]struct{})
		t.owners[displayID] = set
	}
	set[extensionID] = struct{}{}
}

// IsTracked reports whether extensionID rendered displayID.
func (t *DisplayTracker) IsTracked(extensionID, displayID string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.owners[displayID][extensionID]
	return ok
}
