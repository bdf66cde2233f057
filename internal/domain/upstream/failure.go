// Package upstream classifies failures returned by third-party data providers.
//
// Gateways classify a failure exactly once, at the point the response (or the
// lack of one) is observed. Everything downstream branches on Kind only.
package upstream

import (
	"errors"
	"fmt"
)

// Kind tags the reason an upstream call failed.
type Kind string

const (
	KindRateLimited       Kind = "rate_limited"
	KindNotFound          Kind = "not_found"
	KindTransportError    Kind = "transport_error"
	KindMalformedResponse Kind = "malformed_response"
)

// MaxBodyBytes bounds how much of an upstream error body is retained.
const MaxBodyBytes = 4 << 10

// Failure describes a failed upstream call.
type Failure struct {
	Kind     Kind
	Provider string
	Status   int
	Body     string
	Err      error
}

func (f *Failure) Error() string {
	msg := fmt.Sprintf("%s %s", f.Provider, f.Kind)
	if f.Status != 0 {
		msg += fmt.Sprintf(" (status=%d)", f.Status)
	}
	if f.Err != nil {
		msg += ": " + f.Err.Error()
	}
	return msg
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// NewFailure builds a Failure, truncating body to MaxBodyBytes.
func NewFailure(provider string, kind Kind, status int, body []byte, err error) *Failure {
	if len(body) > MaxBodyBytes {
		body = body[:MaxBodyBytes]
	}
	return &Failure{Kind: kind, Provider: provider, Status: status, Body: string(body), Err: err}
}

// NotFound is a convenience constructor used when a normalized result is empty.
func NotFound(provider, message string) *Failure {
	return &Failure{Kind: KindNotFound, Provider: provider, Err: errors.New(message)}
}

// As extracts the Failure from err's chain.
func As(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

// KindOf returns the failure kind, or "" when err is not an upstream failure.
func KindOf(err error) Kind {
	if f, ok := As(err); ok {
		return f.Kind
	}
	return ""
}

// IsRateLimited reports whether err carries a rate-limit failure.
func IsRateLimited(err error) bool {
	return KindOf(err) == KindRateLimited
}
