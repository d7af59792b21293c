// Package models holds the database-backed entities shared by repositories
// and services.
package models

import "time"

// Lifecycle status codes stored as a single char on most tables.
const (
	StatusActive   = "A"
	StatusPending  = "P"
	StatusErrored  = "E"
	StatusInactive = "I"
)

// TaskStatusNew is the catalog code assigned to every freshly created task.
const TaskStatusNew = "NEW"

// Status is a catalog entry describing a task status code.
type Status struct {
	Code        string    `json:"code"`
	Description string    `json:"description"`
	Color       string    `json:"color"`
	Lifecycle   string    `json:"-"`
	AuditID     string    `json:"-"`
	CreatedAt   time.Time `json:"-"`
}
