package model

import (
	"errors"
	"fmt"
	"time"
)

// HTTPError wraps an HTTP status code returned by an upstream API.
type HTTPError struct {
	StatusCode int
	RetryAfter time.Duration // from Retry-After header, zero if absent
	Err        error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("HTTP %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// ConfigError reports a required setting that is absent or unusable.
// It is fatal to a whole batch, never to a single company.
type ConfigError struct {
	Setting string
	Msg     string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s", e.Setting, e.Msg)
}

// ErrMissingAPIKey is returned when no job-postings provider credential is configured.
var ErrMissingAPIKey error = &ConfigError{Setting: "theirstack.api_key", Msg: "TheirStack API key not configured"}

// IsConfigError reports whether err is (or wraps) a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
