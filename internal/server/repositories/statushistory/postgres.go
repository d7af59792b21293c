package statushistory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fcastro-dev/taskroom/internal/apperr"
	"github.com/fcastro-dev/taskroom/internal/dbx"
	"github.com/fcastro-dev/taskroom/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, h *models.StatusHistory) (*models.StatusHistory, error) {
	query :=
		`INSERT INTO task_status_history (task_id, status_code, created_by, status, audit_id)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING history_id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		h.TaskID, h.StatusCode, h.CreatedByID, h.Status, h.AuditID).
		Scan(&h.ID, &h.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return h, nil
}

func (r *PostgresRepository) GetOpenByTask(ctx context.Context, taskID string) (*models.StatusHistory, error) {
	query :=
		`SELECT history_id, task_id, status_code, created_by, status, created_at, ended_at
		 FROM task_status_history
		 WHERE task_id = $1 AND ended_at IS NULL AND status = 'A'
		 `

	h := &models.StatusHistory{}
	err := r.db.QueryRowContext(ctx, query, taskID).
		Scan(&h.ID, &h.TaskID, &h.StatusCode, &h.CreatedByID, &h.Status, &h.CreatedAt, &h.EndedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return h, nil
}

func (r *PostgresRepository) Close(ctx context.Context, historyID string, endedAt time.Time) error {
	query :=
		`UPDATE task_status_history SET ended_at = $2
		 WHERE history_id = $1 AND ended_at IS NULL
		 `

	res, err := r.db.ExecContext(ctx, query, historyID, endedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperr.ErrNotFound
	}

	return nil
}
