package xerrors

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Common reusable application errors
var (
	ErrNotFound           = errors.New("resource not found")
	ErrUnauthorized       = errors.New("unauthorized access")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrNetwork            = errors.New("network error")
	ErrFlowAborted        = errors.New("sign-in flow abandoned")
	ErrRateLimited        = errors.New("too many requests")
	ErrDuplicateEntry     = errors.New("duplicate entry")
	ErrInternal           = errors.New("internal server error")
)

// Classification codes surfaced to callers (form-level error handling).
const (
	CodeInvalidCredentials = "invalid-credentials"
	CodeNetwork            = "network"
	CodePermissionDenied   = "permission-denied"
	CodeNotFound           = "not-found"
	CodeRateLimited        = "rate-limited"
	CodeUnknown            = "unknown"
)

// Classify maps an error to its wire code. Anything unrecognized is "unknown".
func Classify(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidCredentials):
		return CodeInvalidCredentials
	case errors.Is(err, ErrPermissionDenied):
		return CodePermissionDenied
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrRateLimited):
		return CodeRateLimited
	case IsNetwork(err):
		return CodeNetwork
	default:
		return CodeUnknown
	}
}

// IsNetwork reports whether err looks like a transport-level failure rather
// than a definitive answer from the remote side.
func IsNetwork(err error) bool {
	if errors.Is(err, ErrNetwork) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// Wrap adds context to an error (similar to fmt.Errorf("%w")).
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Is allows checking whether an error is a specific sentinel error.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// MessageOrDefault returns err.Error() or a fallback message if err is nil.
func MessageOrDefault(err error, fallback string) string {
	if err != nil {
		return err.Error()
	}
	return fallback
}
