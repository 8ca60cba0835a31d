// Package scan contains the scanning engine: error classification,
// per-service region fan-out and the top-level orchestrator.
package scan

import (
	"context"
	"errors"
	"net"

	"github.com/aws/smithy-go"
)

// Kind is the closed set of failure classes the engine acts on.
// Every provider error maps to exactly one Kind.
type Kind int

const (
	// KindAccessDenied means credentials lack permission. Terminal for
	// the region: retrying cannot help.
	KindAccessDenied Kind = iota
	// KindRateLimited means the provider throttled us. Retryable.
	KindRateLimited
	// KindTransient covers timeouts and connectivity blips. Retryable.
	KindTransient
	// KindFatal is everything else. Terminal.
	KindFatal
)

func (k Kind) String() string {
	switch k {
	case KindAccessDenied:
		return "access_denied"
	case KindRateLimited:
		return "rate_limited"
	case KindTransient:
		return "transient"
	default:
		return "fatal"
	}
}

// Retryable reports whether another attempt could succeed.
func (k Kind) Retryable() bool {
	return k == KindRateLimited || k == KindTransient
}

var accessDeniedCodes = map[string]bool{
	"AccessDenied":          true,
	"AccessDeniedException": true,
	"UnauthorizedOperation": true,
}

var throttleCodes = map[string]bool{
	"RequestLimitExceeded":     true,
	"Throttling":               true,
	"ThrottlingException":      true,
	"TooManyRequestsException": true,
}

// Classify maps an error to its Kind. Unknown errors are fatal: the
// engine refuses to retry what it does not understand.
func Classify(err error) Kind {
	if err == nil {
		return KindFatal
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		switch {
		case accessDeniedCodes[code]:
			return KindAccessDenied
		case throttleCodes[code]:
			return KindRateLimited
		}
		return KindFatal
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return KindTransient
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTransient
	}

	return KindFatal
}

// ClassifyRetryable adapts Classify to the retry predicate shape.
func ClassifyRetryable(err error) bool {
	return Classify(err).Retryable()
}
