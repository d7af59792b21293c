package models

import "time"

// Task is a unit of work inside a group. Its current status lives in the
// single open StatusHistory row, not on the task itself; Status here is the
// lifecycle char (A/I).
type Task struct {
	ID          string    `json:"taskId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	GroupID     string    `json:"groupId"`
	CreatedByID string    `json:"-"`
	Status      string    `json:"-"`
	AuditID     string    `json:"-"`
	CreatedAt   time.Time `json:"createdAt"`
}

// StatusHistory is one interval of a task's status timeline. EndedAt == nil
// marks the row as current; changing status closes the open row and inserts
// a new one.
type StatusHistory struct {
	ID          string
	TaskID      string
	StatusCode  string
	CreatedByID string
	Status      string
	AuditID     string
	CreatedAt   time.Time
	EndedAt     *time.Time
}

// TaskView is the API shape of a task: the task row joined with its creator
// and the status of its open history row.
type TaskView struct {
	ID          string    `json:"taskId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	GroupID     string    `json:"groupId"`
	CreatedAt   time.Time `json:"createdAt"`
	CreatedBy   *User     `json:"createdBy"`
	Status      *Status   `json:"status"`
}

// TaskPatch carries the updatable task fields. Empty strings fall back to
// the stored value, so a field cannot be cleared through an update.
type TaskPatch struct {
	Title       string
	Description string
}
