// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package jupyter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/stacklok/kernelhive/pkg/networking"
	"github.com/stacklok/kernelhive/pkg/prompt"
	promptmocks "github.com/stacklok/kernelhive/pkg/prompt/mocks"
)

const (
	testXSRF     = "xsrf-value"
	testPassword = "hunter2"
	testSession  = "username-127-0-0-1"
)

// fakeNotebook mimics the parts of the notebook server the negotiator and
// validator touch. Like a real server, the /api root answers anyone.
type fakeNotebook struct {
	token string
	hub   bool
	// requests counts every request by path.
	mu       sync.Mutex
	requests map[string]int
}

func (f *fakeNotebook) hits(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[path]
}

func (f *fakeNotebook) authorized(r *http.Request) bool {
	if f.token != "" && r.Header.Get("Authorization") == "token "+f.token {
		return true
	}
	c, err := r.Cookie(testSession)
	return err == nil && c.Value == "session" && r.Header.Get("X-XSRFToken") == testXSRF
}

func (f *fakeNotebook) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	if f.requests == nil {
		f.requests = make(map[string]int)
	}
	f.requests[r.URL.Path]++
	f.mu.Unlock()

	switch r.URL.Path {
	case "/hub/api":
		if !f.hub {
			http.NotFound(w, r)
			return
		}
		writeJSON(w, map[string]any{"version": "5.2.1"})
	case "/api":
		writeJSON(w, map[string]any{"version": "7.0.0"})
	case "/api/status":
		if !f.authorized(r) {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		writeJSON(w, map[string]any{"connections": 0, "kernels": 0})
	case "/api/kernelspecs":
		if !f.authorized(r) {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		writeJSON(w, KernelSpecs{
			Default: "python3",
			KernelSpecs: map[string]KernelSpec{
				"python3": {Name: "python3", Spec: KernelSpecFile{DisplayName: "Python 3", Language: "python"}},
			},
		})
	case "/login":
		if r.Method == http.MethodGet {
			http.SetCookie(w, &http.Cookie{Name: xsrfCookieName, Value: testXSRF})
			w.WriteHeader(http.StatusOK)
			return
		}
		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		c, err := r.Cookie(xsrfCookieName)
		if err != nil || c.Value != r.PostForm.Get(xsrfCookieName) {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		if r.PostForm.Get("password") != testPassword {
			w.WriteHeader(http.StatusOK)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: testSession, Value: "session"})
		http.Redirect(w, r, r.URL.Query().Get("next"), http.StatusFound)
	default:
		http.NotFound(w, r)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	client, err := networking.NewHttpClientBuilder().WithoutRedirects().Build()
	require.NoError(t, err)
	return client
}

func TestPasswordNegotiator_Token(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(&fakeNotebook{token: "abc"})
	t.Cleanup(srv.Close)

	ctrl := gomock.NewController(t)
	n := NewPasswordNegotiator(newClient(t), promptmocks.NewMockPrompter(ctrl))

	info, err := n.GetPasswordConnectionInfo(t.Context(), PasswordRequest{BaseURL: srv.URL + "/", Token: "abc"})
	require.NoError(t, err)
	assert.False(t, info.RequiresPassword)
	assert.False(t, info.IsJupyterHub)
	assert.Equal(t, map[string]string{"Authorization": "token abc"}, info.RequestHeaders)
}

func TestPasswordNegotiator_RejectedToken(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(&fakeNotebook{token: "abc"})
	t.Cleanup(srv.Close)

	ctrl := gomock.NewController(t)
	n := NewPasswordNegotiator(newClient(t), promptmocks.NewMockPrompter(ctrl))

	_, err := n.GetPasswordConnectionInfo(t.Context(), PasswordRequest{BaseURL: srv.URL + "/", Token: "wrong"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTokenRejected)
	assert.True(t, networking.IsHTTPError(err, http.StatusForbidden))
}

func TestPasswordNegotiator_PublicAPIRootIsNotEnough(t *testing.T) {
	t.Parallel()

	nb := &fakeNotebook{}
	srv := httptest.NewServer(nb)
	t.Cleanup(srv.Close)

	ctrl := gomock.NewController(t)
	prompter := promptmocks.NewMockPrompter(ctrl)
	prompter.EXPECT().Input(gomock.Any(), gomock.Any()).Return(prompt.Dismissed[string](), nil)

	info, err := NewPasswordNegotiator(newClient(t), prompter).
		GetPasswordConnectionInfo(t.Context(), PasswordRequest{BaseURL: srv.URL + "/"})
	require.NoError(t, err)
	assert.Equal(t, prompt.ActionDismissed, info.Action)
	assert.Equal(t, 1, nb.hits("/api/status"))
	assert.Zero(t, nb.hits("/api"))
}

func TestPasswordNegotiator_RequiresPassword(t *testing.T) {
	t.Parallel()

	t.Run("goes straight to login", func(t *testing.T) {
		t.Parallel()

		nb := &fakeNotebook{}
		srv := httptest.NewServer(nb)
		t.Cleanup(srv.Close)

		ctrl := gomock.NewController(t)
		prompter := promptmocks.NewMockPrompter(ctrl)
		prompter.EXPECT().Input(gomock.Any(), gomock.Any()).Return(prompt.Accepted(testPassword), nil)

		info, err := NewPasswordNegotiator(newClient(t), prompter).GetPasswordConnectionInfo(t.Context(),
			PasswordRequest{BaseURL: srv.URL + "/", RequiresPassword: true})
		require.NoError(t, err)
		assert.True(t, info.RequiresPassword)
		assert.Zero(t, nb.hits("/api/status"))
		assert.Zero(t, nb.hits("/hub/api"))
	})

	t.Run("token is reported as rejected", func(t *testing.T) {
		t.Parallel()

		nb := &fakeNotebook{token: "abc"}
		srv := httptest.NewServer(nb)
		t.Cleanup(srv.Close)

		ctrl := gomock.NewController(t)
		_, err := NewPasswordNegotiator(newClient(t), promptmocks.NewMockPrompter(ctrl)).GetPasswordConnectionInfo(
			t.Context(), PasswordRequest{BaseURL: srv.URL + "/", Token: "abc", RequiresPassword: true})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrTokenRejected)
		assert.Zero(t, nb.hits("/api/status"))
	})
}

func TestPasswordNegotiator_Hub(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(&fakeNotebook{hub: true})
	t.Cleanup(srv.Close)

	ctrl := gomock.NewController(t)
	n := NewPasswordNegotiator(newClient(t), promptmocks.NewMockPrompter(ctrl))

	info, err := n.GetPasswordConnectionInfo(t.Context(), PasswordRequest{BaseURL: srv.URL + "/"})
	require.NoError(t, err)
	assert.True(t, info.IsJupyterHub)
}

func TestPasswordNegotiator_PasswordLogin(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(&fakeNotebook{})
	t.Cleanup(srv.Close)

	ctrl := gomock.NewController(t)
	prompter := promptmocks.NewMockPrompter(ctrl)
	gomock.InOrder(
		prompter.EXPECT().Input(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, opts prompt.InputOptions) (prompt.Answer[string], error) {
				assert.True(t, opts.Password)
				assert.Empty(t, opts.ValidationMessage)
				return prompt.Accepted("wrong"), nil
			}),
		prompter.EXPECT().Input(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, opts prompt.InputOptions) (prompt.Answer[string], error) {
				assert.Equal(t, invalidPasswordMsg, opts.ValidationMessage)
				return prompt.Accepted(testPassword), nil
			}),
	)

	client := newClient(t)
	n := NewPasswordNegotiator(client, prompter)
	info, err := n.GetPasswordConnectionInfo(t.Context(), PasswordRequest{BaseURL: srv.URL + "/"})
	require.NoError(t, err)
	assert.True(t, info.RequiresPassword)
	assert.Equal(t, testXSRF, info.RequestHeaders["X-XSRFToken"])
	assert.Contains(t, info.RequestHeaders["Cookie"], testSession+"=session")

	// The negotiated headers authenticate the validator.
	v := NewConnectionValidator(client, nil)
	err = v.Validate(t.Context(), "h1", descriptor(srv.URL+"/", "", info.RequestHeaders))
	assert.NoError(t, err)
}

func TestPasswordNegotiator_PromptLeft(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(&fakeNotebook{})
	t.Cleanup(srv.Close)

	ctrl := gomock.NewController(t)
	prompter := promptmocks.NewMockPrompter(ctrl)
	prompter.EXPECT().Input(gomock.Any(), gomock.Any()).Return(prompt.Back[string](), nil)

	info, err := NewPasswordNegotiator(newClient(t), prompter).
		GetPasswordConnectionInfo(t.Context(), PasswordRequest{BaseURL: srv.URL + "/"})
	require.NoError(t, err)
	assert.Equal(t, prompt.ActionBack, info.Action)
}

func TestPasswordNegotiator_Unreachable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL + "/"
	srv.Close()

	ctrl := gomock.NewController(t)
	_, err := NewPasswordNegotiator(newClient(t), promptmocks.NewMockPrompter(ctrl)).
		GetPasswordConnectionInfo(t.Context(), PasswordRequest{BaseURL: base, Token: "t"})
	require.Error(t, err)
	assert.ErrorIs(t, err, networking.ErrFetchFailed)
}

func TestEndpoint(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "http://h/api", endpoint("http://h/", "api"))
	assert.Equal(t, "http://h/user/me/api/kernelspecs", endpoint("http://h/user/me/", "/api/kernelspecs"))
	assert.Equal(t, "http://h/api", endpoint("http://h", "api"))
}
