// Package audit persists the append-then-attach records written around every
// mutating operation.
package audit

import (
	"context"

	"github.com/fcastro-dev/taskroom/internal/server/models"
)

type Repository interface {
	// Create inserts a new record with its serialized input and returns it
	// with the generated id.
	Create(ctx context.Context, rec *models.AuditRecord) (*models.AuditRecord, error)

	// AttachOutput attaches the serialized outcome to an existing record.
	// Records are never updated otherwise.
	AttachOutput(ctx context.Context, auditID string, dataOut string) error
}
