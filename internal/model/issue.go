// Package model contains domain types for the civica client.
// The JSON tags mirror the civic service's wire format; records are
// immutable once decoded and are replaced wholesale on refresh, never
// mutated field by field.
package model

import "time"

// Status represents the lifecycle state of a reported issue.
type Status string

const (
	StatusPending   Status = "pending"
	StatusAssigned  Status = "assigned"
	StatusCompleted Status = "completed"
	StatusVerified  Status = "verified"
)

// AllStatuses contains every valid issue status, in lifecycle order.
// This is the single source of truth for valid status values.
var AllStatuses = []Status{
	StatusPending,
	StatusAssigned,
	StatusCompleted,
	StatusVerified,
}

// Resolved reports whether the issue has been worked to completion.
func (s Status) Resolved() bool {
	return s == StatusCompleted || s == StatusVerified
}

// MediaKind distinguishes the attachments carried by an issue.
type MediaKind string

const (
	MediaPhotoInitial MediaKind = "photo_initial"
	MediaPhotoProof   MediaKind = "photo_proof"
	MediaAudio        MediaKind = "audio"
	MediaSignature    MediaKind = "signature"
)

// Media is a file attached to an issue (citizen photo, worker proof).
type Media struct {
	ID      int       `json:"id"`
	IssueID int       `json:"problem_id"`
	FileURL string    `json:"file_url"`
	Kind    MediaKind `json:"media_type"`
}

// Feedback is a citizen's rating of a completed issue.
type Feedback struct {
	ID        int    `json:"id"`
	IssueID   int    `json:"problem_id"`
	UserID    int    `json:"user_id"`
	Comment   string `json:"comment"`
	Rating    int    `json:"rating"`
	Sentiment string `json:"sentiment,omitempty"`
}

// UserRef is the compact submitter reference embedded in an issue.
type UserRef struct {
	ID       int    `json:"id"`
	FullName string `json:"full_name"`
}

// Department is a municipal department that workers belong to.
type Department struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// WorkerRef identifies the worker an issue is assigned to.
type WorkerRef struct {
	User       UserRef    `json:"user"`
	Department Department `json:"department"`
}

// Issue is a civic problem report as returned by the service.
type Issue struct {
	ID          int        `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Category    string     `json:"problem_type"`
	District    string     `json:"district"`
	Status      Status     `json:"status"`
	Priority    float64    `json:"priority"`
	CreatedAt   Timestamp  `json:"created_at"`
	UpdatedAt   *Timestamp `json:"updated_at,omitempty"`
	SubmittedBy UserRef    `json:"submitted_by"`
	Media       []Media    `json:"media_files,omitempty"`
	Feedback    []Feedback `json:"feedback,omitempty"`
	AssignedTo  *WorkerRef `json:"assigned_to,omitempty"`
}

// Age returns how long ago the issue was created.
func (i Issue) Age() time.Duration {
	return time.Since(i.CreatedAt.Time)
}

// Coordinates is a WGS84 point attached to submissions and completions.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// IssueDraft carries the fields of a new submission. The photo travels
// separately as a multipart file part.
type IssueDraft struct {
	Title       string
	Description string
	Category    string
	District    string
	Location    Coordinates
}

// FeedbackDraft carries a new feedback submission.
type FeedbackDraft struct {
	Comment string `json:"comment"`
	Rating  int    `json:"rating"`
}

// CompletionProof carries a worker's task-completion evidence. The proof
// photo travels separately as a multipart file part; the coordinates must
// place the worker at the problem site.
type CompletionProof struct {
	Location Coordinates
}
