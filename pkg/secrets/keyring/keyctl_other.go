// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

//go:build !linux

package keyring

import "fmt"

// NewKeyctlProvider always fails off Linux; the composite provider then
// falls back to the system keyring alone.
func NewKeyctlProvider() (Provider, error) {
	return nil, fmt.Errorf("%w: the kernel keyring only exists on Linux", ErrUnavailable)
}
