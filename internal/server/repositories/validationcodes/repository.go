// Package validationcodes persists single-use email validation codes.
package validationcodes

import (
	"context"
	"time"

	"github.com/fcastro-dev/taskroom/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, code *models.ValidationCode) (*models.ValidationCode, error)
	GetPendingByUser(ctx context.Context, userID string) (*models.ValidationCode, error)
	GetValidatedByUser(ctx context.Context, userID string) (*models.ValidationCode, error)
	SetStatus(ctx context.Context, codeID string, status string) error
	// IncrementRetries bumps the retry counter and returns the new value.
	// The counter never decrements.
	IncrementRetries(ctx context.Context, codeID string) (int, error)
	MarkValidated(ctx context.Context, codeID string, at time.Time) error
}
