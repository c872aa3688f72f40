package tool

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"
	"time"

	"webscout/internal/domain"
)

// retryableSentinels lists domain errors that indicate transient failures
// worth retrying. HTTP status errors, malformed responses, validation
// errors and missing dependencies are terminal and never appear here.
var retryableSentinels = []error{
	domain.ErrTimeout,
	domain.ErrConnection,
}

// retryablePatterns are substrings in error messages that indicate transient
// failures. Checked case-insensitively, as a fallback for errors without
// sentinel wrapping.
var retryablePatterns = []string{
	"connection refused",
	"connection reset",
	"no such host",
	"timeout",
	"deadline exceeded",
	"temporarily unavailable",
	"try again",
}

// classifyToolError returns true if the error is transient and the call
// may succeed on retry. Returns false for nil, permanent, or unknown errors.
func classifyToolError(err error) bool {
	if err == nil {
		return false
	}

	for _, sentinel := range retryableSentinels {
		if errors.Is(err, sentinel) {
			return true
		}
	}

	lower := strings.ToLower(err.Error())
	for _, p := range retryablePatterns {
		if strings.Contains(lower, p) {
			return true
		}
	}

	return false
}

// isTimeoutErr reports whether err is a deadline/timeout condition.
func isTimeoutErr(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "timeout")
}

// isConnectionErr reports whether err is a connect-level failure
// (refused, reset, unresolvable host).
func isConnectionErr(err error) bool {
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	lower := strings.ToLower(err.Error())
	for _, p := range []string{"connection refused", "connection reset", "no such host"} {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// classifyTransportErr maps a raw HTTP transport error onto the failure
// taxonomy, carrying the human-readable detail the outcome will surface.
func classifyTransportErr(err error, url string, timeout time.Duration) error {
	switch {
	case isTimeoutErr(err):
		return fmt.Errorf("%w after %s", domain.ErrTimeout, timeout)
	case isConnectionErr(err):
		return fmt.Errorf("%w: %s unreachable", domain.ErrConnection, url)
	default:
		return err
	}
}
