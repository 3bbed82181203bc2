package storage

import (
	"context"
	"errors"
	"net/http"
)

// Error wraps a backend failure with the operation that produced it and
// whether retrying later could plausibly succeed.
type Error struct {
	Op        string
	Transient bool
	Err       error
}

func (e *Error) Error() string {
	kind := "permanent"
	if e.Transient {
		kind = "transient"
	}
	return "storage " + e.Op + " (" + kind + "): " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// IsTransient reports whether err is a storage failure worth retrying later,
// such as a timeout, a dropped connection or a throttled request.
func IsTransient(err error) bool {
	var se *Error
	if errors.As(err, &se) {
		return se.Transient
	}
	return false
}

// permanentCodes are S3-style error codes that no amount of waiting will fix.
var permanentCodes = map[string]struct{}{
	"AccessDenied":          {},
	"AllAccessDisabled":     {},
	"InvalidAccessKeyId":    {},
	"SignatureDoesNotMatch": {},
	"NoSuchBucket":          {},
	"InvalidBucketName":     {},
	"AccountProblem":        {},
}

// transientCodes are S3-style error codes that signal overload or a timeout.
var transientCodes = map[string]struct{}{
	"SlowDown":           {},
	"RequestTimeout":     {},
	"InternalError":      {},
	"ServiceUnavailable": {},
}

// classifyResponse decides transience from an S3-style status and error code.
// Client errors are permanent unless they are timeouts or throttling.
func classifyResponse(status int, code string) bool {
	if _, ok := permanentCodes[code]; ok {
		return false
	}
	if _, ok := transientCodes[code]; ok {
		return true
	}
	switch {
	case status == http.StatusRequestTimeout, status == http.StatusTooManyRequests:
		return true
	case status >= 400 && status < 500:
		return false
	default:
		return true
	}
}

// classifyTransport decides transience for errors that never produced a response:
// dial failures, resets and deadlines are all worth retrying later. A cancelled
// request is not, since nobody is waiting for it.
func classifyTransport(err error) bool {
	return !errors.Is(err, context.Canceled)
}
