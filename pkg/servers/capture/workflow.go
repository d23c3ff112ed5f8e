// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package capture runs the interactive "add a remote Jupyter server" wizard:
// collect a URL, negotiate credentials, confirm plain-HTTP use, verify the
// server answers, name it and persist it.
package capture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/stacklok/kernelhive/pkg/events"
	khverrors "github.com/stacklok/kernelhive/pkg/errors"
	"github.com/stacklok/kernelhive/pkg/jupyter"
	"github.com/stacklok/kernelhive/pkg/logger"
	"github.com/stacklok/kernelhive/pkg/networking"
	"github.com/stacklok/kernelhive/pkg/prompt"
	"github.com/stacklok/kernelhive/pkg/servers"
	"github.com/stacklok/kernelhive/pkg/serveruri"
	"github.com/stacklok/kernelhive/pkg/telemetry"
)

// Outcome is how a Run ended.
type Outcome int

const (
	// OutcomeAdded means a server was verified and persisted.
	OutcomeAdded Outcome = iota
	// OutcomeCancelled means the user cancelled or declined.
	OutcomeCancelled
	// OutcomeBack means the user stepped back out of the wizard.
	OutcomeBack
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAdded:
		return "added"
	case OutcomeCancelled:
		return "cancelled"
	case OutcomeBack:
		return "back"
	default:
		return "unknown"
	}
}

// Result is the value of a finished Run. Server is set for OutcomeAdded.
type Result struct {
	Outcome Outcome
	Server  *servers.StoredServer
}

// Step is a state of the wizard.
type Step int

// Wizard states in forward order.
const (
	StepGetURL Step = iota
	StepCheckPasswords
	StepCheckInsecureConnections
	StepVerifyConnection
	StepGetDisplayName
)

func (s Step) String() string {
	switch s {
	case StepGetURL:
		return "GetUrl"
	case StepCheckPasswords:
		return "CheckPasswords"
	case StepCheckInsecureConnections:
		return "CheckInsecureConnections"
	case StepVerifyConnection:
		return "VerifyConnection"
	case StepGetDisplayName:
		return "GetDisplayName"
	default:
		return "Unknown"
	}
}

type resultKind int

const (
	kindContinue resultKind = iota
	kindBack
	kindCancel
	kindDone
)

// stepResult is what a step function hands back to the driving loop.
type stepResult struct {
	kind resultKind
	next Step
}

func next(s Step) stepResult { return stepResult{kind: kindContinue, next: s} }

const (
	tokenRejectedMessage = "The server rejected the token in the URL. Check the token and try again."
	authRejectedMessage  = "The server rejected the credentials. Check the password or token and try again."
	// localityTimeout bounds the loopback lookup that tags telemetry.
	localityTimeout = 2 * time.Second
)

var (
	back   = stepResult{kind: kindBack}
	cancel = stepResult{kind: kindCancel}
	done   = stepResult{kind: kindDone}
)

// fromAction maps a non-accepted prompt action onto a step result.
func fromAction(a prompt.Action) stepResult {
	if a == prompt.ActionBack {
		return back
	}
	return cancel
}

// session is the state of one Run. It is never persisted.
type session struct {
	handle            string
	url               string
	info              *serveruri.Descriptor
	requiresPassword  bool
	// passwordRetried is set once verification sent the session back to
	// the password step for this URL. A second refusal ends the attempt.
	passwordRetried   bool
	validationMessage string
	// passwordFailure is the error swallowed by the CheckPasswords
	// fetch-failure special case. It wins over a later verify error.
	passwordFailure error
	// prompted records steps that showed the user something since the
	// last URL prompt.
	prompted map[Step]bool
	// seedPending lets the seeded URL skip the first URL prompt.
	seedPending bool
	// locality is the loopback lookup for the current URL.
	locality *locality
	// pending tracks telemetry still being reported.
	pending sync.WaitGroup
}

// locality resolves once, off the wizard's goroutine, whether a server host
// is a loopback address.
type locality struct {
	done  chan struct{}
	local bool
}

func (l *locality) wait() bool {
	if l == nil {
		return false
	}
	<-l.done
	return l.local
}

// backTarget walks the previous-step chain to the nearest step that
// prompted. StepGetURL is the root of every chain.
func (s *session) backTarget(previous map[Step]Step, from Step) Step {
	target := previous[from]
	for target != StepGetURL && !s.prompted[target] {
		target = previous[target]
	}
	return target
}

// Deps are the collaborators a Workflow drives.
type Deps struct {
	URLInput    URLPrompter
	Passwords   PasswordNegotiator
	Validator   ConnectionValidator
	Gate        InsecureGate
	DisplayName DisplayNamePrompter
	Store       ServerStore
	Telemetry   telemetry.Reporter
	// Resolver decides whether a host is local for telemetry.
	Resolver networking.Resolver
	// Changed fires with the new handle after a server is persisted.
	Changed *events.Emitter[string]
	Logger  *slog.Logger
	// NewHandle mints server identities. Defaults to uuid.NewString.
	NewHandle func() string
}

// Workflow is the server capture state machine. A Workflow may be Run any
// number of times; each Run owns its own session.
type Workflow struct {
	deps Deps
}

// NewWorkflow fills optional Deps with defaults.
func NewWorkflow(deps Deps) *Workflow {
	if deps.Telemetry == nil {
		deps.Telemetry = telemetry.NopReporter{}
	}
	if deps.Logger == nil {
		deps.Logger = logger.Get()
	}
	if deps.NewHandle == nil {
		deps.NewHandle = uuid.NewString
	}
	if deps.Changed == nil {
		deps.Changed = &events.Emitter[string]{}
	}
	return &Workflow{deps: deps}
}

// Run drives the wizard. initialURL seeds the URL step and is used without
// prompting if it is valid. With a seed, Back from any later prompt returns
// OutcomeBack instead of re-asking for the URL. User choices come back as a
// Result; only failures the user cannot fix by retrying, such as a
// JupyterHub URL, are errors.
func (w *Workflow) Run(ctx context.Context, initialURL string) (Result, error) {
	s := &session{url: strings.TrimSpace(initialURL), prompted: make(map[Step]bool)}
	seeded := s.url != ""
	s.seedPending = seeded
	// Telemetry is reported in the background but never outlives Run.
	defer s.pending.Wait()
	previous := make(map[Step]Step)
	step := StepGetURL

	for {
		if ctx.Err() != nil {
			return Result{Outcome: OutcomeCancelled}, nil
		}

		res, err := w.runStep(ctx, step, s)
		if err != nil {
			if ctx.Err() != nil {
				return Result{Outcome: OutcomeCancelled}, nil
			}
			return Result{}, err
		}

		switch res.kind {
		case kindContinue:
			// Retry loops go backwards and must not rewrite the Back chain.
			if res.next > step {
				previous[res.next] = step
			}
			step = res.next
		case kindBack:
			// A seeded run has no URL prompt to return to.
			if seeded || step == StepGetURL {
				return Result{Outcome: OutcomeBack}, nil
			}
			step = s.backTarget(previous, step)
		case kindCancel:
			return Result{Outcome: OutcomeCancelled}, nil
		case kindDone:
			return w.finish(ctx, s)
		}
	}
}

func (w *Workflow) runStep(ctx context.Context, step Step, s *session) (stepResult, error) {
	switch step {
	case StepGetURL:
		return w.getURL(ctx, s)
	case StepCheckPasswords:
		return w.checkPasswords(ctx, s)
	case StepCheckInsecureConnections:
		return w.checkInsecureConnections(ctx, s)
	case StepVerifyConnection:
		return w.verifyConnection(ctx, s)
	case StepGetDisplayName:
		return w.getDisplayName(ctx, s)
	default:
		return stepResult{}, khverrors.NewInternalError(fmt.Sprintf("unknown capture step %d", step), nil)
	}
}

func (w *Workflow) getURL(ctx context.Context, s *session) (stepResult, error) {
	s.handle = w.deps.NewHandle()
	s.passwordFailure = nil
	s.requiresPassword = false
	s.passwordRetried = false
	s.locality = nil
	clear(s.prompted)

	req := URLRequest{
		Value:             s.url,
		ValidationMessage: s.validationMessage,
		AcceptValue:       s.seedPending,
	}
	s.validationMessage = ""
	s.seedPending = false
	answer, err := w.deps.URLInput.GetURL(ctx, req)
	if err != nil {
		return stepResult{}, err
	}
	if ctx.Err() != nil {
		return cancel, nil
	}
	if !answer.Accepted() {
		return fromAction(answer.Action), nil
	}

	s.url = answer.Value.URL
	info := *answer.Value.Info
	s.info = &info
	s.locality = w.lookupLocality(ctx, s, info.BaseURL)
	return next(StepCheckPasswords), nil
}

func (w *Workflow) checkPasswords(ctx context.Context, s *session) (stepResult, error) {
	conn, err := w.deps.Passwords.GetPasswordConnectionInfo(ctx, jupyter.PasswordRequest{
		BaseURL:          s.info.BaseURL,
		Token:            s.info.Token,
		Handle:           s.handle,
		RequiresPassword: s.requiresPassword,
	})
	if ctx.Err() != nil {
		return cancel, nil
	}
	if err != nil {
		switch {
		case networking.IsSelfSignedCertError(err), networking.IsExpiredCertError(err):
			// Reported by VerifyConnection with the right message.
			return next(StepCheckInsecureConnections), nil
		case s.info.Token != "" && isFetchFailure(err):
			// A token-bearing URL can fail the password probe for
			// cross-origin reasons and still work.
			s.passwordFailure = err
			return next(StepVerifyConnection), nil
		case errors.Is(err, jupyter.ErrTokenRejected):
			w.reportFailure(ctx, s, telemetry.CauseAuthFailure)
			s.validationMessage = tokenRejectedMessage
			return next(StepGetURL), nil
		default:
			w.deps.Logger.Debug("password negotiation failed", "url", s.info.BaseURL, "error", err)
			w.reportFailure(ctx, s, telemetry.CauseAuthFailure)
			s.validationMessage = passwordFailureMessage(err)
			return next(StepGetURL), nil
		}
	}
	if conn.Action != prompt.ActionAccepted {
		return fromAction(conn.Action), nil
	}
	if conn.IsJupyterHub {
		w.reportFailure(ctx, s, telemetry.CauseAuthFailure)
		return stepResult{}, khverrors.NewHubUnsupportedError(
			fmt.Sprintf("%s is a JupyterHub server. Connect to it with a JupyterHub aware client instead.",
				s.info.BaseURL),
			nil,
		)
	}

	s.requiresPassword = conn.RequiresPassword
	s.prompted[StepCheckPasswords] = conn.RequiresPassword
	s.info.AuthorizationHeader = conn.RequestHeaders
	return next(StepCheckInsecureConnections), nil
}

func (w *Workflow) checkInsecureConnections(ctx context.Context, s *session) (stepResult, error) {
	if s.info.Token != "" || s.requiresPassword || !strings.HasPrefix(strings.ToLower(s.info.BaseURL), "http:") {
		return next(StepVerifyConnection), nil
	}

	s.prompted[StepCheckInsecureConnections] = true
	answer, err := w.deps.Gate.ShouldProceedInsecurely(ctx)
	if err != nil {
		return stepResult{}, err
	}
	if ctx.Err() != nil {
		return cancel, nil
	}
	if !answer.Accepted() {
		return fromAction(answer.Action), nil
	}
	if !answer.Value {
		w.reportFailure(ctx, s, telemetry.CauseInsecureHTTP)
		return cancel, nil
	}
	return next(StepVerifyConnection), nil
}

func (w *Workflow) verifyConnection(ctx context.Context, s *session) (stepResult, error) {
	err := w.deps.Validator.Validate(ctx, s.handle, s.info)
	if ctx.Err() != nil {
		return cancel, nil
	}
	if err == nil {
		return next(StepGetDisplayName), nil
	}
	if errors.Is(err, context.Canceled) {
		return cancel, nil
	}

	w.deps.Logger.Debug("server verification failed", "url", s.info.BaseURL, "error", err)
	switch {
	case s.passwordFailure != nil:
		w.reportFailure(ctx, s, telemetry.CauseAuthFailure)
		s.validationMessage = passwordFailureMessage(s.passwordFailure)
		return next(StepGetURL), nil
	case networking.IsSelfSignedCertError(err):
		w.reportFailure(ctx, s, telemetry.CauseSelfCert)
		s.validationMessage = "The server's certificate is self-signed and not trusted. " +
			"Add its CA with --ca-bundle or use a trusted certificate."
		return next(StepGetURL), nil
	case networking.IsExpiredCertError(err):
		w.reportFailure(ctx, s, telemetry.CauseExpiredCert)
		s.validationMessage = "The server's certificate has expired."
		return next(StepGetURL), nil
	case errors.Is(err, jupyter.ErrPasswordRequired) && !s.passwordRetried:
		w.reportFailure(ctx, s, telemetry.CauseAuthFailure)
		s.requiresPassword = true
		s.passwordRetried = true
		return next(StepCheckPasswords), nil
	case errors.Is(err, jupyter.ErrPasswordRequired):
		w.reportFailure(ctx, s, telemetry.CauseAuthFailure)
		s.validationMessage = authRejectedMessage
		return next(StepGetURL), nil
	default:
		w.reportFailure(ctx, s, telemetry.CauseConnectionFailure)
		s.validationMessage = "Failed to connect to the remote Jupyter server. " +
			"Check that the URL is correct and the server is running.\n" + linkifyURLs(err.Error())
		return next(StepGetURL), nil
	}
}

func (w *Workflow) getDisplayName(ctx context.Context, s *session) (stepResult, error) {
	answer, err := w.deps.DisplayName.GetDisplayName(ctx, s.handle, s.info.DisplayName)
	if err != nil {
		return stepResult{}, err
	}
	if ctx.Err() != nil {
		return cancel, nil
	}
	if !answer.Accepted() {
		return fromAction(answer.Action), nil
	}
	s.info.DisplayName = answer.Value
	return done, nil
}

func (w *Workflow) finish(ctx context.Context, s *session) (Result, error) {
	server := servers.StoredServer{Handle: s.handle, URI: s.url, ServerInfo: *s.info}
	if err := w.deps.Store.Add(ctx, server); err != nil {
		if ctx.Err() != nil {
			return Result{Outcome: OutcomeCancelled}, nil
		}
		return Result{}, fmt.Errorf("failed to save server %s: %w", s.info.BaseURL, err)
	}

	w.report(ctx, s, telemetry.CaptureEvent{})
	w.deps.Changed.Fire(s.handle)
	w.deps.Logger.Debug("added remote jupyter server", "handle", s.handle, "url", s.info.BaseURL)
	return Result{Outcome: OutcomeAdded, Server: &server}, nil
}

func (w *Workflow) reportFailure(ctx context.Context, s *session, cause telemetry.Cause) {
	w.report(ctx, s, telemetry.CaptureEvent{Failed: true, Cause: cause})
}

// report sends event once the current URL's lookup has finished, without
// holding up the wizard.
func (w *Workflow) report(ctx context.Context, s *session, event telemetry.CaptureEvent) {
	ctx = context.WithoutCancel(ctx)
	loc := s.locality
	s.pending.Go(func() {
		event.Localhost = loc.wait()
		w.deps.Telemetry.ReportCapture(ctx, event)
	})
}

func (w *Workflow) lookupLocality(ctx context.Context, s *session, baseURL string) *locality {
	l := &locality{done: make(chan struct{})}
	s.pending.Go(func() {
		defer close(l.done)
		lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), localityTimeout)
		defer cancel()
		l.local = networking.ResolvesToLoopback(lookupCtx, w.deps.Resolver, baseURL)
	})
	return l
}

func isFetchFailure(err error) bool {
	return errors.Is(err, networking.ErrFetchFailed) || strings.EqualFold(err.Error(), "failed to fetch")
}

func passwordFailureMessage(err error) string {
	return "Failed to connect to the remote Jupyter server: " + linkifyURLs(err.Error())
}

var urlPattern = regexp.MustCompile(`https?://[^\s"'<>)\]]+`)

// linkifyURLs rewrites bare URLs as markdown links. Trailing sentence
// punctuation stays outside the link.
func linkifyURLs(text string) string {
	return urlPattern.ReplaceAllStringFunc(text, func(match string) string {
		u := strings.TrimRight(match, ".,;:")
		return "[" + u + "](" + u + ")" + match[len(u):]
	})
}
