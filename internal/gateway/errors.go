package gateway

import (
	"context"
	"errors"
	"net"
	"os"
	"syscall"
)

// Domain errors for gateway operations.
//
// These errors can be checked using errors.Is() for specific handling:
//
//	if errors.Is(err, gateway.ErrAuthFailed) {
//	    // abort the cycle, no retry
//	}
var (
	// ErrMissingCredential is returned when the configured gateway serial is
	// absent or empty. This is a configuration error: fatal, never retried,
	// and raised before any transport call.
	ErrMissingCredential = errors.New("gateway: missing credential (gateway.serial not configured)")

	// ErrAuthFailed is returned when the handshake succeeds at the transport
	// level but yields no session token, or when the gateway rejects the
	// session mid-cycle. Fatal for the cycle.
	ErrAuthFailed = errors.New("gateway: authentication failed")

	// ErrGatewayUnavailable marks transient transport failures: connection
	// refused, host unreachable, timeouts, and overload status responses.
	// The orchestrator retries exactly this set a bounded number of times.
	ErrGatewayUnavailable = errors.New("gateway: unavailable")

	// ErrRequestFailed covers all other transport failures. Fatal for the
	// cycle, no retry.
	ErrRequestFailed = errors.New("gateway: request failed")

	// ErrSessionClosed is returned when a request is attempted on a session
	// whose credential scope has been released.
	ErrSessionClosed = errors.New("gateway: session closed")

	// ErrBadPayload is returned when a gateway response cannot be decoded.
	ErrBadPayload = errors.New("gateway: malformed payload")
)

// IsTransient reports whether an error belongs to the bounded-retry set.
func IsTransient(err error) bool {
	return errors.Is(err, ErrGatewayUnavailable)
}

// isTransientNetErr reports whether a raw transport error is retryable:
// connection refused, host/network unreachable, or any timeout.
func isTransientNetErr(err error) bool {
	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.EHOSTUNREACH) ||
		errors.Is(err, syscall.ENETUNREACH) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return false
}
