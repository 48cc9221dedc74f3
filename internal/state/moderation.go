package state

import (
	"context"

	"github.com/civica-dev/civica/internal/model"
)

// ModerationAPI is the slice of the service client the moderation queue
// drives.
type ModerationAPI interface {
	ModerationQueue(ctx context.Context, token string) ([]model.Issue, error)
}

// ModerationQueue holds the district-wide report list an admin reviews.
// The service scopes it to the admin's own district server-side.
type ModerationQueue struct {
	feed[[]model.Issue]
	api ModerationAPI
}

// NewModerationQueue returns an empty queue gated on the given session.
func NewModerationQueue(api ModerationAPI, session *Session) *ModerationQueue {
	q := &ModerationQueue{api: api}
	q.session = session
	return q
}

// Load fetches every report in the admin's district.
func (q *ModerationQueue) Load(ctx context.Context) error {
	cred, fault := q.begin()
	if fault != nil {
		return fault
	}

	issues, err := q.api.ModerationQueue(ctx, cred.Token)
	return faultOrNil(q.finish(cred, issues, err))
}
