package genclient

import (
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// ErrorKind classifies a remote generation failure. Classification
// happens exactly once, at this boundary; callers switch on the kind
// instead of inspecting message text.
type ErrorKind int

const (
	// KindUnknown means the error did not come from this package.
	KindUnknown ErrorKind = iota
	// KindAuth means the credential is invalid or expired. The caller
	// should revoke its authenticated state and re-select a credential.
	KindAuth
	// KindNotFound means the remote entity was not found. On the video
	// path this can indicate a credential/entitlement mismatch.
	KindNotFound
	// KindRemote is a generic remote-service failure (quota, malformed
	// response, server error).
	KindRemote
	// KindTransport is a generic transport failure.
	KindTransport
	// KindNothingProduced means the service answered but produced no
	// usable output. Non-fatal and retryable.
	KindNothingProduced
)

func (k ErrorKind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	case KindNotFound:
		return "not_found"
	case KindRemote:
		return "remote"
	case KindTransport:
		return "transport"
	case KindNothingProduced:
		return "nothing_produced"
	default:
		return "unknown"
	}
}

// Error is a classified generation failure.
type Error struct {
	Kind    ErrorKind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// KindOf extracts the classified kind from an error chain. Returns
// KindUnknown for errors that did not pass through this package.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func nothingProduced(format string, args ...any) *Error {
	return &Error{Kind: KindNothingProduced, Message: fmt.Sprintf(format, args...)}
}

// classify turns a raw service error into a typed one. API errors are
// matched on status code first; the expired-key case arrives as a 400
// and is only identifiable from the service's message text, so that
// single substring check lives here and nowhere else.
func classify(err error, message string) error {
	if err == nil {
		return nil
	}

	var already *Error
	if errors.As(err, &already) {
		return err
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		kind := KindRemote
		switch {
		case apiErr.Code == 401 || apiErr.Code == 403:
			kind = KindAuth
		case apiErr.Code == 400 && (strings.Contains(apiErr.Message, "API key expired") ||
			strings.Contains(apiErr.Message, "API key not valid") ||
			strings.Contains(apiErr.Message, "API_KEY_INVALID")):
			kind = KindAuth
		case apiErr.Code == 404 || strings.Contains(apiErr.Message, "Requested entity was not found"):
			kind = KindNotFound
		}
		return &Error{Kind: kind, Message: message, cause: err}
	}

	return &Error{Kind: KindTransport, Message: message, cause: err}
}
