// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package execution gives each extension its own view of a shared kernel.
// A Multiplexer checks the caller may use the kernel, hands code to the
// shared queue, answers chat callbacks raised by the kernel and only forwards
// display updates for outputs the caller rendered.
package execution

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"log/slog"
	"slices"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	khverrors "github.com/stacklok/kernelhive/pkg/errors"
	"github.com/stacklok/kernelhive/pkg/events"
	"github.com/stacklok/kernelhive/pkg/kernel"
	"github.com/stacklok/kernelhive/pkg/logger"
	"github.com/stacklok/kernelhive/pkg/telemetry"
)

// FirstPartyExtensionID is never subject to the access policy.
const FirstPartyExtensionID = "stacklok.kernelhive"

// callbackFunction is the kernel-side function that receives chat results.
const callbackFunction = "__kernelhive_chat_callback__"

// ChatHandler answers one chat callback. data is the decoded JSON payload,
// or nil when the kernel sent None.
type ChatHandler func(ctx context.Context, data any) (any, error)

// ChatHandlers maps callback function names to handlers.
type ChatHandlers map[string]ChatHandler

// Progress shows that code is running. Start returns the function that
// hides it again.
type Progress interface {
	Start(message string) func()
}

type nopProgress struct{}

func (nopProgress) Start(string) func() { return func() {} }

// Deps configure a Multiplexer. Access, Tracker, Telemetry, Progress and
// Logger are optional.
type Deps struct {
	ExtensionID string
	Kernel      kernel.Session
	Queue       kernel.Queue
	Access      kernel.AccessPolicy
	// Tracker must be shared by every Multiplexer of the same kernel.
	Tracker   *kernel.DisplayTracker
	Telemetry telemetry.Reporter
	Progress  Progress
	Logger    *slog.Logger
}

// Multiplexer is one extension's handle on a kernel.
type Multiplexer struct {
	deps Deps

	mu       sync.Mutex
	disposed bool
	// allowed caches the access decision; accessGen invalidates lookups
	// that raced with a policy change.
	allowed   *bool
	accessGen uint64

	status        events.Emitter[kernel.Status]
	display       events.Emitter[kernel.DisplayUpdate]
	subscriptions []func()
}

// New creates a Multiplexer and subscribes it to the kernel's events.
func New(deps Deps) *Multiplexer {
	if deps.Tracker == nil {
		deps.Tracker = kernel.NewDisplayTracker()
	}
	if deps.Telemetry == nil {
		deps.Telemetry = telemetry.NopReporter{}
	}
	if deps.Progress == nil {
		deps.Progress = nopProgress{}
	}
	if deps.Logger == nil {
		deps.Logger = logger.Get()
	}

	m := &Multiplexer{deps: deps}
	m.subscriptions = append(m.subscriptions,
		deps.Kernel.OnDidChangeStatus(m.status.Fire),
		deps.Kernel.OnDidReceiveDisplayUpdate(m.forwardDisplayUpdate),
	)
	if deps.Access != nil {
		m.subscriptions = append(m.subscriptions, deps.Access.OnDidChangeAccess(m.invalidateAccess))
	}
	return m
}

// OnDidChangeStatus relays kernel status changes.
func (m *Multiplexer) OnDidChangeStatus(fn func(kernel.Status)) func() {
	return m.status.Subscribe(fn)
}

// OnDidReceiveDisplayUpdate relays in-place updates of outputs this
// extension rendered.
func (m *Multiplexer) OnDidReceiveDisplayUpdate(fn func(kernel.DisplayUpdate)) func() {
	return m.display.Subscribe(fn)
}

// Dispose drops every subscription. Later ExecuteCode calls fail.
func (m *Multiplexer) Dispose() {
	m.mu.Lock()
	if m.disposed {
		m.mu.Unlock()
		return
	}
	m.disposed = true
	subs := m.subscriptions
	m.subscriptions = nil
	m.mu.Unlock()

	for _, unsubscribe := range subs {
		unsubscribe()
	}
	m.status.Clear()
	m.display.Clear()
}

func (m *Multiplexer) forwardDisplayUpdate(u kernel.DisplayUpdate) {
	if m.deps.Tracker.IsTracked(m.deps.ExtensionID, u.DisplayID) {
		m.display.Fire(u)
	}
}

func (m *Multiplexer) invalidateAccess() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.allowed = nil
	m.accessGen++
}

func (m *Multiplexer) checkAccess(ctx context.Context) error {
	if m.deps.ExtensionID == FirstPartyExtensionID || m.deps.Access == nil {
		return nil
	}

	m.mu.Lock()
	cached, gen := m.allowed, m.accessGen
	m.mu.Unlock()

	allowed := false
	if cached != nil {
		allowed = *cached
	} else {
		ok, err := m.deps.Access.IsAllowed(ctx, m.deps.ExtensionID)
		if err != nil {
			return fmt.Errorf("failed to check kernel access for %s: %w", m.deps.ExtensionID, err)
		}
		allowed = ok
		m.mu.Lock()
		if m.accessGen == gen {
			m.allowed = &allowed
		}
		m.mu.Unlock()
	}

	if !allowed {
		return khverrors.NewAccessRevokedError(
			fmt.Sprintf("access to the kernel has been revoked for %s", m.deps.ExtensionID), nil)
	}
	return nil
}

func (m *Multiplexer) checkKernel() error {
	m.mu.Lock()
	disposed := m.disposed
	m.mu.Unlock()

	k := m.deps.Kernel
	switch {
	case disposed || k.IsDisposed():
		return khverrors.NewKernelUnavailableError("Kernel is disposed", nil)
	case k.Status() == kernel.StatusDead:
		return khverrors.NewKernelUnavailableError("Kernel is dead", nil)
	case k.Status() == kernel.StatusTerminating:
		return khverrors.NewKernelUnavailableError("Kernel is terminating", nil)
	case !k.HasSession():
		return khverrors.NewKernelUnavailableError("Kernel has no active session", nil)
	}
	return nil
}

// ExecuteCode runs code and yields its outputs. Chat callback outputs are
// answered through handlers and never yielded; the callback's own outputs
// are yielded in their place. Each call reports one execution telemetry
// event when the sequence ends.
func (m *Multiplexer) ExecuteCode(ctx context.Context, code string, handlers ChatHandlers) iter.Seq2[*kernel.Output, error] {
	return func(yield func(*kernel.Output, error) bool) {
		r := &run{
			m:        m,
			ctx:      ctx,
			handlers: handlers,
			start:    time.Now(),
			mimes:    make(map[string]struct{}),
		}
		defer r.report()
		r.execute(code, yield)
	}
}

// frame is one pending execution on the work stack.
type frame struct {
	next func() (*kernel.Output, error, bool)
	stop func()
}

// run is the state of one ExecuteCode sequence.
type run struct {
	m        *Multiplexer
	ctx      context.Context
	handlers ChatHandlers
	start    time.Time

	sent      atomic.Bool
	acked     atomic.Bool
	cancelled bool
	failed    bool
	mimes     map[string]struct{}

	sentSignal  events.Emitter[struct{}]
	ackedSignal events.Emitter[struct{}]
}

func (r *run) execute(code string, yield func(*kernel.Output, error) bool) {
	if err := r.m.checkAccess(r.ctx); err != nil {
		r.failed = true
		yield(nil, err)
		return
	}
	if err := r.m.checkKernel(); err != nil {
		r.failed = true
		yield(nil, err)
		return
	}

	defer r.sentSignal.Subscribe(func(struct{}) { r.sent.Store(true) })()
	defer r.ackedSignal.Subscribe(func(struct{}) { r.acked.Store(true) })()
	defer r.m.deps.Progress.Start("Executing code")()

	// A chat callback suspends the execution that raised it until the
	// callback's own execution has finished.
	stack := []frame{r.pull(code)}
	defer func() {
		for _, f := range stack {
			f.stop()
		}
	}()

	for len(stack) > 0 {
		if err := r.ctx.Err(); err != nil {
			r.cancelled = true
			yield(nil, err)
			return
		}

		top := stack[len(stack)-1]
		out, err, ok := top.next()
		if !ok {
			top.stop()
			stack = stack[:len(stack)-1]
			continue
		}
		if err != nil {
			if ctxErr := r.ctx.Err(); ctxErr != nil {
				r.cancelled = true
				yield(nil, ctxErr)
				return
			}
			r.failed = true
			yield(nil, err)
			return
		}
		if out == nil {
			continue
		}

		r.m.deps.Tracker.Track(r.m.deps.ExtensionID, out.DisplayID)
		for _, item := range out.Items {
			r.mimes[item.Mime] = struct{}{}
		}

		if item, isChat := out.Item(kernel.ChatMimeType); isChat {
			callback, err := r.answerChat(out, item)
			if err != nil {
				r.failed = true
				yield(nil, err)
				return
			}
			stack = append(stack, r.pull(callback))
			continue
		}

		if !yield(out, nil) {
			r.cancelled = true
			return
		}
	}
}

func (r *run) pull(code string) frame {
	next, stop := iter.Pull2(r.m.deps.Queue.Execute(r.ctx, kernel.Request{
		Code:         code,
		ExtensionID:  r.m.deps.ExtensionID,
		Sent:         &r.sentSignal,
		Acknowledged: &r.ackedSignal,
	}))
	return frame{next: next, stop: stop}
}

// answerChat runs the handler a chat output asks for and returns the code
// that delivers its result back to the kernel.
func (r *run) answerChat(out *kernel.Output, item kernel.OutputItem) (string, error) {
	req, err := out.ChatRequest()
	if err != nil {
		return "", khverrors.NewProtocolError("malformed chat callback metadata", err)
	}
	handler, ok := r.handlers[req.Function]
	if !ok {
		return "", khverrors.NewProtocolError(
			fmt.Sprintf("no handler registered for chat callback %q", req.Function), nil)
	}

	var data any
	if !req.DataIsNone {
		if err := json.Unmarshal(item.Data, &data); err != nil {
			return "", khverrors.NewProtocolError(
				fmt.Sprintf("malformed payload for chat callback %q", req.Function), err)
		}
	}

	r.m.deps.Logger.Debug("answering chat callback", "function", req.Function, "id", req.ID)
	result, err := handler(r.ctx, data)
	if err != nil {
		return "", fmt.Errorf("chat callback %q failed: %w", req.Function, err)
	}
	return callbackCode(req.ID, result)
}

// callbackCode renders a call that hands value, as a JSON string, to the
// kernel-side callback registered under id.
func callbackCode(id string, value any) (string, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("failed to encode chat callback result: %w", err)
	}
	return fmt.Sprintf("%s(%s, %s)", callbackFunction, strconv.Quote(id), strconv.Quote(string(raw))), nil
}

func (r *run) report() {
	mimes := make([]string, 0, len(r.mimes))
	for mime := range r.mimes {
		mimes = append(mimes, mime)
	}
	slices.Sort(mimes)

	r.m.deps.Telemetry.ReportExecution(context.WithoutCancel(r.ctx), telemetry.ExecutionEvent{
		ExtensionID:  r.m.deps.ExtensionID,
		Duration:     time.Since(r.start),
		RequestSent:  r.sent.Load(),
		RequestAcked: r.acked.Load(),
		Cancelled:    r.cancelled,
		Failed:       r.failed,
		MimeTypes:    mimes,
	})
}
