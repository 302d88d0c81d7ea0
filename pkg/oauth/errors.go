package oauth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrInvalidConfig is matched by every ConfigurationError.
	ErrInvalidConfig = errors.New("oauth: invalid provider configuration")

	// ErrKeyNotFound is matched by every KeyNotFoundError.
	ErrKeyNotFound = errors.New("oauth: identity key not found")

	// ErrNilResponse is returned when the OAuth provider returns a nil response.
	ErrNilResponse = errors.New("oauth: nil response from provider")

	// ErrFetchFailed is returned when fetching data from the OAuth provider fails.
	ErrFetchFailed = errors.New("oauth: failed to fetch from provider")

	// ErrRequestFailed is matched by every IdentityProviderError.
	ErrRequestFailed = errors.New("oauth: provider returned an error status")

	// ErrDecodeFailed is returned when decoding the OAuth provider response fails.
	ErrDecodeFailed = errors.New("oauth: failed to decode response")
)

// ConfigurationError reports required provider options that were
// undefined or empty. Missing lists every offending key, in declaration order.
type ConfigurationError struct {
	Missing []string
}

func (e *ConfigurationError) Error() string {
	return "oauth: required options were undefined or empty: " + strings.Join(e.Missing, ", ")
}

func (e *ConfigurationError) Unwrap() error { return ErrInvalidConfig }

// IdentityProviderError is returned when the identity provider answers
// with an HTTP status of 400 or above.
type IdentityProviderError struct {
	// Message is the provider's "message" field, or the status text.
	Message    string
	StatusCode int
	// Response is the raw response. Its body has already been consumed;
	// the parsed form is kept in Body.
	Response *http.Response
	Body     any
}

func (e *IdentityProviderError) Error() string {
	return fmt.Sprintf("oauth: identity provider error: status=%d message=%q", e.StatusCode, e.Message)
}

func (e *IdentityProviderError) Unwrap() error { return ErrRequestFailed }

// KeyNotFoundError is returned by Identity.Get for absent keys.
type KeyNotFoundError struct {
	Key string
}

func (e *KeyNotFoundError) Error() string {
	return fmt.Sprintf("oauth: identity key not found: %q", e.Key)
}

func (e *KeyNotFoundError) Unwrap() error { return ErrKeyNotFound }
