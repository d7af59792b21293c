package audit

import (
	"context"
	"fmt"

	"github.com/fcastro-dev/taskroom/internal/dbx"
	"github.com/fcastro-dev/taskroom/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, rec *models.AuditRecord) (*models.AuditRecord, error) {
	query :=
		`INSERT INTO audit_records (data_in, created_by, operation, user_agent)
		 VALUES ($1, $2, $3, $4)
		 RETURNING audit_id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		rec.DataIn, rec.ActorID, rec.Operation, rec.UserAgent).Scan(&rec.ID, &rec.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return rec, nil
}

func (r *PostgresRepository) AttachOutput(ctx context.Context, auditID string, dataOut string) error {
	query :=
		`UPDATE audit_records SET data_out = $2
		 WHERE audit_id = $1
		 `

	if _, err := r.db.ExecContext(ctx, query, auditID, dataOut); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}
