package domain

const (
	TaskEventCreated = "task.created"
	TaskEventUpdated = "task.updated"
	TaskEventDeleted = "task.deleted"
)

// TaskEvent describes a committed change to a task.
type TaskEvent struct {
	Type string `json:"type"`
	Task *Task  `json:"task"`
}
