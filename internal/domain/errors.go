package domain

import "errors"

// Error taxonomy for the reconciliation pipeline. Callers branch on these
// with errors.Is; everything else wraps one of them or is unexpected.
var (
	// ErrInvalidDate marks malformed or out-of-order date input. Rejected
	// before any upstream call.
	ErrInvalidDate = errors.New("invalid date")

	// ErrAuthMissing marks a request with no usable upstream credential.
	// Fatal for the request, never retried and never simulated around.
	ErrAuthMissing = errors.New("upstream credentials missing")

	// ErrUpstreamUnavailable marks a network or payload failure talking to
	// the insights API. Recoverable via simulated fallback when the caller
	// permits it.
	ErrUpstreamUnavailable = errors.New("upstream insights API unavailable")

	// ErrNoActiveAccount marks a request for which no configured ad
	// account could be resolved.
	ErrNoActiveAccount = errors.New("no active ad account")
)
