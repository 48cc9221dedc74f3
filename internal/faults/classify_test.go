package faults

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"testing"
)

func TestFromResponseSubstrings(t *testing.T) {
	tests := []struct {
		name   string
		status int
		detail string
		want   Category
	}{
		{"invalid token", 401, "Could not validate credentials", AuthenticationRequired},
		{"bad login", 401, "Incorrect email or password, or user is inactive.", AuthenticationRequired},
		{"missing header", 401, "Not authenticated", AuthenticationRequired},
		{"duplicate image", 400, "Duplicate image detected - identical to existing report", DuplicateSubmission},
		{"synthetic image", 400, "AI-generated image detected - not a real photo", ContentRejected},
		{"edited image", 400, "Image may be AI-generated or heavily edited", ContentRejected},
		{"hourly cap", 400, "Too many reports in last hour (6)", RateLimited},
		{"daily cap", 400, "Too many reports in last day (15)", RateLimited},
		{"rapid fire", 400, "Rapid-fire reporting detected (4 reports in 10 minutes)", RateLimited},
		{"teleporting", 400, "Reports from distant locations (42.0km apart within 1 hour)", SuspiciousActivity},
		{"spam phrase", 400, "Suspicious content detected: 'test'", SuspiciousActivity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := FromResponse(tt.status, "", tt.detail)
			if f.Category != tt.want {
				t.Errorf("expected category %s, got %s", tt.want, f.Category)
			}
			if f.Detail != tt.detail {
				t.Errorf("expected raw detail preserved, got %q", f.Detail)
			}
		})
	}
}

func TestFromResponseCodeWinsOverText(t *testing.T) {
	// A structured code must beat any substring in the detail.
	f := FromResponse(400, "rate_limited", "Duplicate image detected")
	if f.Category != RateLimited {
		t.Errorf("expected code mapping to win, got %s", f.Category)
	}
}

func TestFromResponseStatusFallback(t *testing.T) {
	tests := []struct {
		name   string
		status int
		detail string
		want   Category
	}{
		{"401 unknown text", 401, "token busted", AuthenticationRequired},
		{"429 empty body", 429, "", RateLimited},
		{"422 validation", 422, "Password must be at least 8 characters long", ServerRejected},
		{"403 access", 403, "Only clients can create issues.", ServerRejected},
		{"500", 500, "internal server error", Unknown},
		{"502 empty", 502, "", Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := FromResponse(tt.status, "", tt.detail)
			if f.Category != tt.want {
				t.Errorf("expected %s, got %s", tt.want, f.Category)
			}
		})
	}
}

func TestServerRejectedShowsServerDetail(t *testing.T) {
	detail := "You can only give feedback on a completed or verified issue."
	f := FromResponse(400, "", detail)
	if f.Category != ServerRejected {
		t.Fatalf("expected ServerRejected, got %s", f.Category)
	}
	if f.Message != detail {
		t.Errorf("expected server detail shown verbatim, got %q", f.Message)
	}
}

func TestUnknownSubstitutesGenericMessage(t *testing.T) {
	f := FromResponse(500, "", "goroutine stack trace here")
	if f.Message == f.Detail {
		t.Error("raw detail must not surface on Unknown faults")
	}
	if f.Detail != "goroutine stack trace here" {
		t.Errorf("expected detail preserved for logs, got %q", f.Detail)
	}
}

func TestClassifyPassthrough(t *testing.T) {
	orig := FromResponse(401, "", "Could not validate credentials")
	wrapped := fmt.Errorf("loading profile: %w", orig)

	got := Classify(wrapped)
	if got != orig {
		t.Error("expected the wrapped fault returned as-is")
	}
}

func TestClassifyTransport(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"deadline", context.DeadlineExceeded},
		{"url error", &url.Error{Op: "Get", URL: "http://x", Err: errors.New("connection refused")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Classify(tt.err)
			if f.Category != NetworkUnavailable {
				t.Errorf("expected NetworkUnavailable, got %s", f.Category)
			}
		})
	}
}

func TestClassifySentinel(t *testing.T) {
	f := Classify(fmt.Errorf("issue feed: %w", ErrNotAuthenticated))
	if f.Category != AuthenticationRequired {
		t.Fatalf("expected AuthenticationRequired, got %s", f.Category)
	}
	if !errors.Is(f, ErrNotAuthenticated) {
		t.Error("expected the sentinel to stay reachable through the fault")
	}
}

func TestClassifyNil(t *testing.T) {
	if Classify(nil) != nil {
		t.Error("expected nil fault for nil error")
	}
}

func TestIsAuth(t *testing.T) {
	if !FromResponse(401, "", "").IsAuth() {
		t.Error("expected 401 to be an auth fault")
	}
	if FromResponse(429, "", "").IsAuth() {
		t.Error("expected 429 not to be an auth fault")
	}
}
