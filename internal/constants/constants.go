// Package constants provides a centralized location for configuration
// values and magic numbers used throughout the civica application.
package constants

import "time"

// TUI update and display constants
const (
	// TUIUpdateInterval is the minimum time between TUI progress updates
	// to provide smooth progress display without excessive overhead.
	TUIUpdateInterval = 50 * time.Millisecond

	// LogThrottlePercent is the interval (in percent) at which progress
	// logs are emitted when not using the TUI.
	LogThrottlePercent = 5

	// TruncationSuffixWidth is the width of the "..." suffix when truncating strings.
	TruncationSuffixWidth = 3
)

// State layer constants
const (
	// InboxCapacity is the maximum number of notices the in-memory inbox
	// holds. The oldest record is evicted once the cap is exceeded.
	InboxCapacity = 50

	// DashboardReports is the number of independent analytics fetches the
	// dashboard joins per load.
	DashboardReports = 5
)

// Transport constants
const (
	// RequestTimeout bounds every REST call to the civic service.
	RequestTimeout = 30 * time.Second

	// UploadTimeout bounds multipart photo uploads, which run long on
	// rural connections.
	UploadTimeout = 2 * time.Minute

	// HealthTimeout bounds the unauthenticated health probe.
	HealthTimeout = 5 * time.Second
)

// Push listener constants
const (
	// PushBackoffInitial is the delay before the first reconnect attempt.
	PushBackoffInitial = 1 * time.Second

	// PushBackoffMax caps the exponential reconnect backoff.
	PushBackoffMax = 2 * time.Minute

	// PushReadLimit is the maximum size of a single notice frame.
	PushReadLimit = 64 * 1024
)

// Local history constants
const (
	// ArchiveMaxNotices is the number of archived notices kept on disk.
	ArchiveMaxNotices = 500

	// StatsMaxSnapshots is the number of dashboard snapshots kept on disk.
	StatsMaxSnapshots = 90
)
