// Package groups persists group rows.
package groups

import (
	"context"

	"github.com/fcastro-dev/taskroom/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, group *models.Group) (*models.Group, error)
	GetActiveByID(ctx context.Context, id string) (*models.Group, error)
	// GetActiveByCode looks up an Active group by its exact invite code.
	// Callers are expected to uppercase the code first.
	GetActiveByCode(ctx context.Context, code string) (*models.Group, error)
	// ListActiveForUser returns the Active groups in which the user holds an
	// Active membership.
	ListActiveForUser(ctx context.Context, userID string) ([]*models.Group, error)
	SetStatus(ctx context.Context, id string, status string) error
}
