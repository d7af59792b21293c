package statuses

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

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

func (r *PostgresRepository) ListActive(ctx context.Context) ([]*models.Status, error) {
	query :=
		`SELECT status_code, description, color FROM statuses
		 WHERE status = 'A'
		 ORDER BY created_at
		 `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Status
	for rows.Next() {
		s := &models.Status{}
		if err := rows.Scan(&s.Code, &s.Description, &s.Color); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) GetActiveByCode(ctx context.Context, code string) (*models.Status, error) {
	query :=
		`SELECT status_code, description, color FROM statuses
		 WHERE status_code = $1 AND status = 'A'
		 `

	s := &models.Status{}
	err := r.db.QueryRowContext(ctx, query, code).Scan(&s.Code, &s.Description, &s.Color)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return s, nil
}
