package validationcodes

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

const codeColumns = "code_id, code, user_id, audit_id, purpose, ip, user_agent, status_code, retries, created_at, validated_at"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, code *models.ValidationCode) (*models.ValidationCode, error) {
	query :=
		`INSERT INTO validation_codes (code, user_id, audit_id, purpose, ip, user_agent, status_code)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING code_id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		code.Code, code.UserID, code.AuditID, code.Purpose, code.IP, code.UserAgent, code.Status).
		Scan(&code.ID, &code.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return code, nil
}

func (r *PostgresRepository) getByUserAndStatus(ctx context.Context, userID, status string) (*models.ValidationCode, error) {
	query :=
		`SELECT ` + codeColumns + ` FROM validation_codes
		 WHERE user_id = $1 AND status_code = $2
		 ORDER BY created_at DESC
		 LIMIT 1
		 `

	code := &models.ValidationCode{}
	err := r.db.QueryRowContext(ctx, query, userID, status).
		Scan(&code.ID, &code.Code, &code.UserID, &code.AuditID, &code.Purpose,
			&code.IP, &code.UserAgent, &code.Status, &code.Retries,
			&code.CreatedAt, &code.ValidatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return code, nil
}

func (r *PostgresRepository) GetPendingByUser(ctx context.Context, userID string) (*models.ValidationCode, error) {
	return r.getByUserAndStatus(ctx, userID, models.CodeStatusPending)
}

func (r *PostgresRepository) GetValidatedByUser(ctx context.Context, userID string) (*models.ValidationCode, error) {
	return r.getByUserAndStatus(ctx, userID, models.CodeStatusValidated)
}

func (r *PostgresRepository) SetStatus(ctx context.Context, codeID string, status string) error {
	query := `UPDATE validation_codes SET status_code = $2 WHERE code_id = $1`

	res, err := r.db.ExecContext(ctx, query, codeID, status)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperr.ErrNotFound
	}

	return nil
}

func (r *PostgresRepository) IncrementRetries(ctx context.Context, codeID string) (int, error) {
	query :=
		`UPDATE validation_codes SET retries = retries + 1
		 WHERE code_id = $1
		 RETURNING retries
		 `

	var retries int
	err := r.db.QueryRowContext(ctx, query, codeID).Scan(&retries)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, apperr.ErrNotFound
		}
		return 0, fmt.Errorf("db error: %w", err)
	}

	return retries, nil
}

func (r *PostgresRepository) MarkValidated(ctx context.Context, codeID string, at time.Time) error {
	query :=
		`UPDATE validation_codes SET status_code = $2, validated_at = $3
		 WHERE code_id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, codeID, models.CodeStatusValidated, at)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperr.ErrNotFound
	}

	return nil
}
