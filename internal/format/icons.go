package format

import "github.com/civica-dev/civica/internal/model"

// Icon strings for display (renderers apply their own styling).
const (
	// PendingIcon marks a report waiting for assignment.
	PendingIcon = "⏳" // ⏳

	// AssignedIcon marks a report a worker is on.
	AssignedIcon = "\U0001F527" // 🔧

	// CompletedIcon marks work done, awaiting citizen confirmation.
	CompletedIcon = "✅" // ✅

	// VerifiedIcon marks a report the citizen confirmed fixed.
	VerifiedIcon = "\U0001F3C5" // 🏅

	// UnreadIcon and ReadIcon mark notices in the inbox.
	UnreadIcon = "\U0001F535" // 🔵
	ReadIcon   = "⚪"     // ⚪

	// IconWidth is the display width reserved for the icon column
	// (emoji=2 + space=1).
	IconWidth = 3
)

// StatusIcon returns the marker for an issue status. Unknown statuses get
// a blank of the same width so table columns stay aligned.
func StatusIcon(s model.Status) string {
	switch s {
	case model.StatusPending:
		return PendingIcon
	case model.StatusAssigned:
		return AssignedIcon
	case model.StatusCompleted:
		return CompletedIcon
	case model.StatusVerified:
		return VerifiedIcon
	default:
		return "  "
	}
}

// NoticeIcon returns the read marker for an inbox notice.
func NoticeIcon(read bool) string {
	if read {
		return ReadIcon
	}
	return UnreadIcon
}
