package domain

import "errors"

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates the input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates authentication failed or missing
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the backend denied the operation (e.g. row-level policy)
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidCredentials indicates wrong email/password combination
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidProvider indicates an unknown provider kind was specified
	ErrInvalidProvider = errors.New("invalid provider")

	// ErrProviderNotSupported indicates a declared provider kind has no adapter yet
	ErrProviderNotSupported = errors.New("provider not yet supported")

	// ErrMissingCredentials indicates required connection fields are empty
	ErrMissingCredentials = errors.New("missing required credentials")

	// ErrNotConfigured indicates no active connection is available
	ErrNotConfigured = errors.New("database provider not configured")

	// ErrMalformedQuery indicates a query chain that can never be valid
	ErrMalformedQuery = errors.New("malformed query")

	// ErrSwitchInProgress indicates another instance holds the provider switch lock
	ErrSwitchInProgress = errors.New("provider switch in progress")

	// ErrServiceUnavailable indicates the backend could not be reached
	ErrServiceUnavailable = errors.New("service unavailable")
)
