// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package networking

import (
	"context"
	"crypto/x509"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSelfSignedCert marks a TLS failure caused by an untrusted issuer.
	ErrSelfSignedCert = errors.New("self-signed certificate")

	// ErrExpiredCert marks a TLS failure caused by an expired certificate.
	ErrExpiredCert = errors.New("certificate has expired")
)

// IsSelfSignedCertError reports whether err is, or wraps, an untrusted
// certificate failure.
func IsSelfSignedCertError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrSelfSignedCert) {
		return true
	}
	var unknownAuthority x509.UnknownAuthorityError
	if errors.As(err, &unknownAuthority) {
		return true
	}
	var unknownAuthorityPtr *x509.UnknownAuthorityError
	if errors.As(err, &unknownAuthorityPtr) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "self-signed certificate") ||
		strings.Contains(strings.ToLower(err.Error()), "self signed certificate")
}

// IsExpiredCertError reports whether err is, or wraps, an expired
// certificate failure.
func IsExpiredCertError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrExpiredCert) {
		return true
	}
	var invalid x509.CertificateInvalidError
	if errors.As(err, &invalid) && invalid.Reason == x509.Expired {
		return true
	}
	var invalidPtr *x509.CertificateInvalidError
	if errors.As(err, &invalidPtr) && invalidPtr.Reason == x509.Expired {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "certificate has expired")
}

// ClassifyTransportError wraps an error returned by HTTPClient.Do so callers
// can test it with errors.Is against ErrFetchFailed and the cert sentinels.
// Context errors pass through untouched.
func ClassifyTransportError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	switch {
	case IsExpiredCertError(err):
		return fmt.Errorf("%w: %w: %w", ErrFetchFailed, ErrExpiredCert, err)
	case IsSelfSignedCertError(err):
		return fmt.Errorf("%w: %w: %w", ErrFetchFailed, ErrSelfSignedCert, err)
	default:
		return fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
}
