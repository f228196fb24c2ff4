// Package errs defines the two error kinds shared by every component:
// configuration problems and failing third-party calls.
package errs

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// ConfigError reports a missing or invalid configuration value.
type ConfigError struct {
	Key string
	Msg string
}

func (e *ConfigError) Error() string {
	if e.Key == "" {
		return "config: " + e.Msg
	}
	return fmt.Sprintf("config: %s: %s", e.Key, e.Msg)
}

// Missing returns a ConfigError for a required key that is unset.
func Missing(key string) error {
	return &ConfigError{Key: key, Msg: "not set"}
}

// UpstreamError wraps a failed call against a third-party API. Body carries
// the provider's raw error text, truncated.
type UpstreamError struct {
	Service string
	Op      string
	Status  int
	Body    string
	Err     error
}

func (e *UpstreamError) Error() string {
	msg := e.Service + ": " + e.Op
	if e.Status != 0 {
		msg += fmt.Sprintf(": status %d", e.Status)
	}
	if e.Body != "" {
		msg += ": " + e.Body
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Upstream builds an UpstreamError from a transport or decode error.
func Upstream(service, op string, err error) error {
	return &UpstreamError{Service: service, Op: op, Err: err}
}

// UpstreamStatus builds an UpstreamError from a non-2xx response body.
func UpstreamStatus(service, op string, status int, body []byte) error {
	return &UpstreamError{Service: service, Op: op, Status: status, Body: Truncate(string(body), 2000)}
}

// IsConfig reports whether err is or wraps a ConfigError.
func IsConfig(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// IsUpstream reports whether err is or wraps an UpstreamError.
func IsUpstream(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}

// Truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
