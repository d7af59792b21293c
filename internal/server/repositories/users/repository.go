// Package users persists account rows.
package users

import (
	"context"

	"github.com/fcastro-dev/taskroom/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetActiveByID(ctx context.Context, id string) (*models.User, error)
	// GetActiveByEmail matches email case-insensitively among Active users.
	GetActiveByEmail(ctx context.Context, email string) (*models.User, error)
	// GetLiveByEmail matches email case-insensitively among Active or
	// Pending users.
	GetLiveByEmail(ctx context.Context, email string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdatePassword(ctx context.Context, id string, passwordHash string) error
	UpdateStatus(ctx context.Context, id string, status string) error
}
