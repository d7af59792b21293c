// Package statushistory persists the open-ended status intervals of tasks.
package statushistory

import (
	"context"
	"time"

	"github.com/fcastro-dev/taskroom/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, h *models.StatusHistory) (*models.StatusHistory, error)
	// GetOpenByTask returns the single row with a null end time for the task,
	// or apperr.ErrNotFound.
	GetOpenByTask(ctx context.Context, taskID string) (*models.StatusHistory, error)
	// Close stamps the end time on an open row. Closing an already closed
	// row returns apperr.ErrNotFound.
	Close(ctx context.Context, historyID string, endedAt time.Time) error
}
