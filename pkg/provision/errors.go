package provision

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrMissing is wrapped by a ConfigurationError when a required value is unset.
var ErrMissing = errors.New("required value is not set")

// ConfigurationError reports a missing or malformed configuration value.
// It is always returned before any request reaches the provider.
type ConfigurationError struct {
	Name string
	Err  error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration %s: %s", e.Name, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// NetworkError reports a transport failure reaching the provider, including
// an exceeded deadline.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network: %s", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// AuthorizationError reports a provider that was reached but refused to
// issue a token. StatusCode is zero when the response was 2xx but unusable.
type AuthorizationError struct {
	StatusCode int
	Err        error
}

func (e *AuthorizationError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("authorization: %s", e.Err)
	}
	return fmt.Sprintf("authorization (%d %s): %s", e.StatusCode, http.StatusText(e.StatusCode), e.Err)
}

func (e *AuthorizationError) Unwrap() error { return e.Err }
