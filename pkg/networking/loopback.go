// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package networking

import (
	"context"
	"net"
	"net/url"
	"strings"
)

// IsLoopbackHost checks if the hostname is literally a loopback address:
// "localhost" (any case), 127.0.0.0/8 or ::1.
func IsLoopbackHost(hostname string) bool {
	if strings.EqualFold(hostname, "localhost") {
		return true
	}
	ip := net.ParseIP(strings.Trim(hostname, "[]"))
	return ip != nil && ip.IsLoopback()
}

// Resolver looks up host addresses. *net.Resolver satisfies it.
type Resolver interface {
	LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error)
}

// ResolvesToLoopback reports whether every address the URL's host resolves to
// is a loopback address. Lookup failures count as not local.
func ResolvesToLoopback(ctx context.Context, resolver Resolver, rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Hostname() == "" {
		return false
	}
	host := parsed.Hostname()
	if IsLoopbackHost(host) {
		return true
	}
	if net.ParseIP(host) != nil {
		return false
	}
	if resolver == nil {
		resolver = net.DefaultResolver
	}
	addrs, err := resolver.LookupIPAddr(ctx, host)
	if err != nil || len(addrs) == 0 {
		return false
	}
	for _, addr := range addrs {
		if !addr.IP.IsLoopback() {
			return false
		}
	}
	return true
}
