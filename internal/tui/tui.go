package tui

import (
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/civica-dev/civica/internal/state"
)

// Run starts the progress display and blocks until it completes.
func Run(events <-chan Event) error {
	model := NewModel(events)
	// Inline, no alt screen: the progress rows scroll into history above
	// the rendered dashboard instead of vanishing with the program.
	p := tea.NewProgram(model)
	_, err := p.Run()
	return err
}

// ShouldUseTUI reports whether the progress display makes sense here:
// a real terminal on stdout and no CI environment.
func ShouldUseTUI() bool {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return false
	}

	ciVars := []string{
		"CI",
		"GITHUB_ACTIONS",
		"JENKINS_URL",
		"TRAVIS",
		"CIRCLECI",
		"GITLAB_CI",
		"BUILDKITE",
	}

	for _, v := range ciVars {
		if os.Getenv(v) != "" {
			return false
		}
	}

	return true
}

// SendEvent sends an event without blocking; a full channel drops the
// event rather than stalling a fetch goroutine.
func SendEvent(ch chan<- Event, e Event) {
	if ch == nil {
		return
	}
	select {
	case ch <- e:
	default:
	}
}

// SendTaskEvent is a convenience function for sending task events.
func SendTaskEvent(ch chan<- Event, task TaskID, status TaskStatus, opts ...TaskEventOption) {
	e := TaskEvent{
		Task:   task,
		Status: status,
	}
	for _, opt := range opts {
		opt(&e)
	}
	SendEvent(ch, e)
}

// TaskEventOption is a functional option for TaskEvent.
type TaskEventOption func(*TaskEvent)

// WithMessage sets the message on a TaskEvent.
func WithMessage(msg string) TaskEventOption {
	return func(e *TaskEvent) {
		e.Message = msg
	}
}

// WithCount sets the count on a TaskEvent.
func WithCount(count int) TaskEventOption {
	return func(e *TaskEvent) {
		e.Count = count
	}
}

// WithProgress sets the progress on a TaskEvent.
func WithProgress(progress float64) TaskEventOption {
	return func(e *TaskEvent) {
		e.Progress = progress
	}
}

// WithError sets the error on a TaskEvent.
func WithError(err error) TaskEventOption {
	return func(e *TaskEvent) {
		e.Error = err
	}
}

// RunInboxUI starts the live inbox view over the given buffer and blocks
// until the user quits. The model re-reads the buffer whenever it
// publishes, so notices streaming in while the view is open appear live.
func RunInboxUI(inbox *state.Inbox) error {
	model := NewInboxModel(inbox)
	p := tea.NewProgram(model, tea.WithAltScreen())

	unsubscribe := inbox.Subscribe(func() {
		p.Send(inboxChangedMsg{})
	})
	defer unsubscribe()

	_, err := p.Run()
	return err
}
