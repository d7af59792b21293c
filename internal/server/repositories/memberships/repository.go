// Package memberships persists the user-to-group join rows.
package memberships

import (
	"context"

	"github.com/fcastro-dev/taskroom/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, m *models.Membership) (*models.Membership, error)
	// GetActive returns the single Active membership for the pair, or
	// apperr.ErrNotFound.
	GetActive(ctx context.Context, userID, groupID string) (*models.Membership, error)
}
