package tui

// TaskID identifies a task in the TUI progress display.
type TaskID int

const (
	TaskAuth        TaskID = iota // Validating the session credential
	TaskTrends                    // Fetching daily trend report
	TaskDepartments               // Fetching department performance report
	TaskWorkers                   // Fetching worker performance report
	TaskTypes                     // Fetching issue-type distribution report
	TaskHeatMap                   // Fetching heat-map clusters
)

// TaskStatus represents the current status of a task.
type TaskStatus int

const (
	StatusPending TaskStatus = iota
	StatusRunning
	StatusComplete
	StatusError
	StatusSkipped
)

// Event is the interface for all TUI events.
type Event interface {
	isEvent()
}

// TaskEvent represents an update to a task's status.
type TaskEvent struct {
	Task     TaskID
	Status   TaskStatus
	Message  string  // Optional message (e.g., "42 rows" for a fetched report)
	Count    int     // Count of items (e.g., reports fetched)
	Progress float64 // Progress from 0.0 to 1.0
	Error    error   // Error if status is StatusError
}

func (TaskEvent) isEvent() {}

// DoneEvent signals that all work is complete.
type DoneEvent struct{}

func (DoneEvent) isEvent() {}
