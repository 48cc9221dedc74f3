package faults

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"strings"
)

// codeTable maps structured error codes to categories. Newer service
// builds attach a code field to the error body; when present it wins
// over any text matching.
var codeTable = map[string]Category{
	"authentication_required": AuthenticationRequired,
	"duplicate_submission":    DuplicateSubmission,
	"content_rejected":        ContentRejected,
	"rate_limited":            RateLimited,
	"suspicious_activity":     SuspiciousActivity,
	"server_rejected":         ServerRejected,
}

// substringTable is the legacy fallback: known fragments of deployed
// server messages, checked in order with first match winning. These
// mirror current service behavior and are not a stable contract.
var substringTable = []struct {
	fragment string
	category Category
}{
	{"Could not validate credentials", AuthenticationRequired},
	{"Incorrect email or password", AuthenticationRequired},
	{"Not authenticated", AuthenticationRequired},
	{"Duplicate image detected", DuplicateSubmission},
	{"AI-generated image detected", ContentRejected},
	{"Image may be AI-generated", ContentRejected},
	{"Too many reports in last hour", RateLimited},
	{"Too many reports in last day", RateLimited},
	{"Rapid-fire reporting detected", RateLimited},
	{"Reports from distant locations", SuspiciousActivity},
	{"Suspicious content detected", SuspiciousActivity},
}

// FromResponse classifies a service rejection. The code field takes
// precedence; the substring table is the fallback; the HTTP status
// decides what's left.
func FromResponse(status int, code, detail string) *Fault {
	if c, ok := codeTable[code]; ok {
		return newFault(c, status, detail)
	}

	for _, m := range substringTable {
		if strings.Contains(detail, m.fragment) {
			return newFault(m.category, status, detail)
		}
	}

	switch {
	case status == http.StatusUnauthorized:
		return newFault(AuthenticationRequired, status, detail)
	case status == http.StatusTooManyRequests:
		return newFault(RateLimited, status, detail)
	case status >= 400 && status < 500 && detail != "":
		// 4xx details are written for end users; show them verbatim.
		return &Fault{Category: ServerRejected, Message: detail, Status: status, Detail: detail}
	default:
		return newFault(Unknown, status, detail)
	}
}

// FromTransport classifies a failure that produced no response at all.
func FromTransport(err error) *Fault {
	return &Fault{
		Category: NetworkUnavailable,
		Message:  userMessage(NetworkUnavailable),
		Detail:   err.Error(),
		err:      err,
	}
}

// Classify turns an arbitrary error into a Fault. Already-classified
// faults pass through untouched.
func Classify(err error) *Fault {
	if err == nil {
		return nil
	}

	var f *Fault
	if errors.As(err, &f) {
		return f
	}

	if errors.Is(err, ErrNotAuthenticated) {
		return &Fault{
			Category: AuthenticationRequired,
			Message:  userMessage(AuthenticationRequired),
			Detail:   err.Error(),
			err:      err,
		}
	}

	if isTransport(err) {
		return FromTransport(err)
	}

	return &Fault{
		Category: Unknown,
		Message:  userMessage(Unknown),
		Detail:   err.Error(),
		err:      err,
	}
}

// isTransport detects failures where the request never completed.
func isTransport(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

func newFault(c Category, status int, detail string) *Fault {
	return &Fault{
		Category: c,
		Message:  userMessage(c),
		Status:   status,
		Detail:   detail,
	}
}
