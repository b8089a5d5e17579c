package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

type ErrorKind string

const (
	KindTimeout   ErrorKind = "timeout"
	KindStatus    ErrorKind = "status"
	KindTransport ErrorKind = "transport"
	KindEmpty     ErrorKind = "empty"
)

// Error is the typed failure every backend returns.
type Error struct {
	Kind       ErrorKind
	StatusCode int
	Detail     string
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("llm %s (%d): %s", e.Kind, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("llm %s: %s", e.Kind, e.Detail)
}

func (e *Error) Unwrap() error { return e.Err }

// Retryable reports whether a second attempt could plausibly succeed.
func (e *Error) Retryable() bool {
	switch e.Kind {
	case KindTimeout, KindTransport:
		return true
	case KindStatus:
		return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
	}
	return false
}

// AsError extracts an *Error from err, classifying foreign errors as
// timeout or transport failures.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var le *Error
	if errors.As(err, &le) {
		return le
	}
	return transportError(err)
}

func transportError(err error) *Error {
	if isTimeout(err) {
		return &Error{Kind: KindTimeout, Detail: "request timed out", Err: err}
	}
	return &Error{Kind: KindTransport, Detail: err.Error(), Err: err}
}

func statusError(code int, detail string) *Error {
	if detail == "" {
		detail = http.StatusText(code)
	}
	return &Error{Kind: KindStatus, StatusCode: code, Detail: detail}
}

func emptyError(detail string) *Error {
	return &Error{Kind: KindEmpty, Detail: detail}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
