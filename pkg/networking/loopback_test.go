// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package networking

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
)

type staticResolver struct {
	addrs []net.IPAddr
	err   error
}

func (r staticResolver) LookupIPAddr(context.Context, string) ([]net.IPAddr, error) {
	return r.addrs, r.err
}

func TestIsLoopbackHost(t *testing.T) {
	t.Parallel()

	tests := []struct {
		host string
		want bool
	}{
		{"localhost", true},
		{"LOCALHOST", true},
		{"127.0.0.1", true},
		{"127.0.1.1", true},
		{"::1", true},
		{"[::1]", true},
		{"10.0.0.1", false},
		{"example.com", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, IsLoopbackHost(tt.host))
		})
	}
}

func TestResolvesToLoopback(t *testing.T) {
	t.Parallel()

	loopback := staticResolver{addrs: []net.IPAddr{{IP: net.ParseIP("127.0.0.1")}}}
	mixed := staticResolver{addrs: []net.IPAddr{{IP: net.ParseIP("127.0.0.1")}, {IP: net.ParseIP("192.168.1.4")}}}
	failing := staticResolver{err: errors.New("no such host")}

	ctx := t.Context()
	assert.True(t, ResolvesToLoopback(ctx, failing, "http://localhost:8888/"))
	assert.True(t, ResolvesToLoopback(ctx, loopback, "http://jupyter.internal:8888/"))
	assert.False(t, ResolvesToLoopback(ctx, mixed, "http://jupyter.internal:8888/"))
	assert.False(t, ResolvesToLoopback(ctx, failing, "http://jupyter.internal:8888/"))
	assert.False(t, ResolvesToLoopback(ctx, loopback, "http://10.1.2.3:8888/"))
	assert.False(t, ResolvesToLoopback(ctx, loopback, "::not a url"))
}
