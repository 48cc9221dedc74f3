package state

import (
	"context"

	"github.com/civica-dev/civica/internal/civicapi"
	"github.com/civica-dev/civica/internal/model"
)

// TaskAPI is the slice of the service client the task board drives.
type TaskAPI interface {
	Tasks(ctx context.Context, token string) ([]model.Issue, error)
	CompleteTask(ctx context.Context, token string, taskID int, proof model.CompletionProof, photo civicapi.Upload) (*model.Issue, error)
}

// TaskBoard holds the issues assigned to the signed-in worker.
type TaskBoard struct {
	feed[[]model.Issue]
	api TaskAPI
}

// NewTaskBoard returns an empty board gated on the given session.
func NewTaskBoard(api TaskAPI, session *Session) *TaskBoard {
	b := &TaskBoard{api: api}
	b.session = session
	return b
}

// Load fetches the worker's assigned tasks.
func (b *TaskBoard) Load(ctx context.Context) error {
	cred, fault := b.begin()
	if fault != nil {
		return fault
	}

	tasks, err := b.api.Tasks(ctx, cred.Token)
	return faultOrNil(b.finish(cred, tasks, err))
}

// Complete closes out an assigned task with the proof photo and on-site
// coordinates, then re-loads the board so the task drops off the list.
func (b *TaskBoard) Complete(ctx context.Context, taskID int, proof model.CompletionProof, photo civicapi.Upload) (*model.Issue, error) {
	cred, fault := b.begin()
	if fault != nil {
		return nil, fault
	}

	issue, err := b.api.CompleteTask(ctx, cred.Token, taskID, proof, photo)
	if fault := b.settle(cred, err); fault != nil {
		return nil, fault
	}
	if !b.session.Current(cred.Epoch) {
		return issue, nil
	}
	return issue, b.Load(ctx)
}
