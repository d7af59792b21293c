// Package statuses persists the task status catalog.
package statuses

import (
	"context"

	"github.com/fcastro-dev/taskroom/internal/server/models"
)

type Repository interface {
	ListActive(ctx context.Context) ([]*models.Status, error)
	GetActiveByCode(ctx context.Context, code string) (*models.Status, error)
}
