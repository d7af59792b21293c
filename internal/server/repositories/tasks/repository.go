// Package tasks persists task rows and serves the joined task views.
package tasks

import (
	"context"

	"github.com/fcastro-dev/taskroom/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, task *models.Task) (*models.Task, error)
	GetActiveByID(ctx context.Context, id string) (*models.Task, error)
	// Update overwrites title and description. Merge policy (which fields
	// fall back to stored values) is the service's concern.
	Update(ctx context.Context, id string, title, description string) error
	SetStatus(ctx context.Context, id string, status string) error
	// GetViewByID returns the task joined with its Active creator and the
	// status of its open history row; absent any of those it returns
	// apperr.ErrNotFound.
	GetViewByID(ctx context.Context, id string) (*models.TaskView, error)
	// ListViewsByGroup returns views for every Active task in the group that
	// has an Active creator and an open history row.
	ListViewsByGroup(ctx context.Context, groupID string) ([]*models.TaskView, error)
}
