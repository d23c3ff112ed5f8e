// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package errors defines the typed errors kernelhive returns across package
// boundaries.
package errors

import (
	"errors"
	"fmt"
)

// Error types
const (
	// ErrInvalidArgument is returned when an invalid argument is provided
	ErrInvalidArgument = "invalid_argument"

	// ErrNotFound is returned when a server handle or kernel is unknown
	ErrNotFound = "not_found"

	// ErrAccessRevoked is returned when a third-party extension is denied kernel access
	ErrAccessRevoked = "access_revoked"

	// ErrProtocol is returned when the host and kernel disagree about the chat bridge
	ErrProtocol = "protocol"

	// ErrKernelUnavailable is returned when a kernel is disposed, dead or has no session
	ErrKernelUnavailable = "kernel_unavailable"

	// ErrHubUnsupported is returned when the remote server is a JupyterHub
	ErrHubUnsupported = "hub_unsupported"

	// ErrInternal is returned when there is an internal error
	ErrInternal = "internal"
)

// Error represents an error in the application
type Error struct {
	// Type is the error type
	Type string

	// Message is the error message
	Message string

	// Cause is the underlying error
	Cause error
}

// Error returns the error message
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %s", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new error
func NewError(errorType, message string, cause error) *Error {
	return &Error{
		Type:    errorType,
		Message: message,
		Cause:   cause,
	}
}

// NewInvalidArgumentError creates a new invalid argument error
func NewInvalidArgumentError(message string, cause error) *Error {
	return NewError(ErrInvalidArgument, message, cause)
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string, cause error) *Error {
	return NewError(ErrNotFound, message, cause)
}

// NewAccessRevokedError creates a new access revoked error
func NewAccessRevokedError(message string, cause error) *Error {
	return NewError(ErrAccessRevoked, message, cause)
}

// NewProtocolError creates a new protocol error
func NewProtocolError(message string, cause error) *Error {
	return NewError(ErrProtocol, message, cause)
}

// NewKernelUnavailableError creates a new kernel unavailable error
func NewKernelUnavailableError(message string, cause error) *Error {
	return NewError(ErrKernelUnavailable, message, cause)
}

// NewHubUnsupportedError creates a new hub unsupported error
func NewHubUnsupportedError(message string, cause error) *Error {
	return NewError(ErrHubUnsupported, message, cause)
}

// NewInternalError creates a new internal error
func NewInternalError(message string, cause error) *Error {
	return NewError(ErrInternal, message, cause)
}

func isType(err error, errorType string) bool {
	var e *Error
	return errors.As(err, &e) && e.Type == errorType
}

// IsInvalidArgument checks if the error is an invalid argument error
func IsInvalidArgument(err error) bool {
	return isType(err, ErrInvalidArgument)
}

// IsNotFound checks if the error is a not found error
func IsNotFound(err error) bool {
	return isType(err, ErrNotFound)
}

// IsAccessRevoked checks if the error is an access revoked error
func IsAccessRevoked(err error) bool {
	return isType(err, ErrAccessRevoked)
}

// IsProtocol checks if the error is a protocol error
func IsProtocol(err error) bool {
	return isType(err, ErrProtocol)
}

// IsKernelUnavailable checks if the error is a kernel unavailable error
func IsKernelUnavailable(err error) bool {
	return isType(err, ErrKernelUnavailable)
}

// IsHubUnsupported checks if the error is a hub unsupported error
func IsHubUnsupported(err error) bool {
	return isType(err, ErrHubUnsupported)
}

// IsInternal checks if the error is an internal error
func IsInternal(err error) bool {
	return isType(err, ErrInternal)
}
