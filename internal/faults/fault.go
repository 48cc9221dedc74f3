// Package faults maps raw transport and service failures to the closed
// set of categories the UI layer is allowed to show. Raw server text is
// preserved for logging but never surfaces to the user unless the server
// message is itself the user-facing rejection.
package faults

import "errors"

// Category is the closed set of user-facing failure classes.
type Category string

const (
	// AuthenticationRequired means the credential is missing, invalid or
	// expired. Any authenticated call classified here forces a session
	// logout cascade.
	AuthenticationRequired Category = "authentication_required"

	// DuplicateSubmission means the service matched the report against an
	// existing one.
	DuplicateSubmission Category = "duplicate_submission"

	// ContentRejected means the attached media failed authenticity checks
	// (synthetic or heavily edited imagery).
	ContentRejected Category = "content_rejected"

	// RateLimited means the account is reporting faster than the service
	// allows.
	RateLimited Category = "rate_limited"

	// SuspiciousActivity means the fraud screens flagged the submission.
	SuspiciousActivity Category = "suspicious_activity"

	// NetworkUnavailable means the transport never produced a response.
	NetworkUnavailable Category = "network_unavailable"

	// ServerRejected means the service refused the request with a
	// human-readable reason (validation, state conflicts, access rules).
	ServerRejected Category = "server_rejected"

	// Unknown is the fallback when nothing matched. The raw detail is
	// kept for diagnostics and a generic message shown instead.
	Unknown Category = "unknown"
)

// AllCategories contains every classification a Fault can carry.
var AllCategories = []Category{
	AuthenticationRequired,
	DuplicateSubmission,
	ContentRejected,
	RateLimited,
	SuspiciousActivity,
	NetworkUnavailable,
	ServerRejected,
	Unknown,
}

// Sentinel errors used across the state layer.
var (
	// ErrNotAuthenticated is returned by operations that require a session
	// before any transport call is attempted.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrRegisteredLoginFailed marks the second phase of the
	// register-then-login saga failing after the account was created.
	// Callers surface it so the UI can prompt a manual sign-in instead of
	// re-submitting the registration.
	ErrRegisteredLoginFailed = errors.New("account created but automatic sign-in failed")
)

// Fault is a classified failure. Message is safe to display; Detail is
// the raw server or transport text and goes to logs only.
type Fault struct {
	Category Category
	Message  string
	Status   int    // HTTP status when the failure came from the service
	Detail   string // raw detail, diagnostics only
	err      error  // wrapped cause, if any
}

// Error returns the user-facing message.
func (f *Fault) Error() string {
	return f.Message
}

// Unwrap exposes the wrapped cause for errors.Is / errors.As chains.
func (f *Fault) Unwrap() error {
	return f.err
}

// IsAuth reports whether this fault must trigger the session logout
// cascade.
func (f *Fault) IsAuth() bool {
	return f.Category == AuthenticationRequired
}

// RegisteredLoginFailed wraps the classified login fault from the second
// phase of registration so callers can tell "account exists, sign in
// manually" apart from "registration failed". errors.Is against
// ErrRegisteredLoginFailed matches the result; Unwrap reaches the cause.
func RegisteredLoginFailed(cause *Fault) *Fault {
	return &Fault{
		Category: cause.Category,
		Message:  ErrRegisteredLoginFailed.Error(),
		Status:   cause.Status,
		Detail:   cause.Detail,
		err:      &registeredLoginError{cause: cause},
	}
}

// registeredLoginError chains ErrRegisteredLoginFailed and the underlying
// login fault into one Unwrap path.
type registeredLoginError struct {
	cause *Fault
}

func (e *registeredLoginError) Error() string {
	return ErrRegisteredLoginFailed.Error() + ": " + e.cause.Message
}

func (e *registeredLoginError) Unwrap() []error {
	return []error{ErrRegisteredLoginFailed, e.cause}
}

// userMessage is the generic display text substituted for categories
// whose raw detail is not fit to show.
func userMessage(c Category) string {
	switch c {
	case AuthenticationRequired:
		return "Your credentials were rejected. Please sign in again."
	case DuplicateSubmission:
		return "This report appears to duplicate an existing one."
	case ContentRejected:
		return "The attached photo was rejected. Capture a fresh photo of the issue and retry."
	case RateLimited:
		return "You are submitting reports too quickly. Please wait and try again."
	case SuspiciousActivity:
		return "This report was flagged for review and cannot be submitted right now."
	case NetworkUnavailable:
		return "Cannot reach the server. Check your connection and try again."
	default:
		return "Something went wrong. Please try again."
	}
}
