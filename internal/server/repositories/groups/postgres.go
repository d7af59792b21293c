package groups

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fcastro-dev/taskroom/internal/apperr"
	"github.com/fcastro-dev/taskroom/internal/dbx"
	"github.com/fcastro-dev/taskroom/internal/server/models"
)

const groupColumns = "group_id, name, group_code, coalesce(password, ''), status, created_by, created_at"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, group *models.Group) (*models.Group, error) {
	query :=
		`INSERT INTO groups (name, group_code, password, status, created_by, audit_id)
		 VALUES ($1, $2, nullif($3, ''), $4, $5, $6)
		 RETURNING group_id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		group.Name, group.InviteCode, group.PasswordHash, group.Status, group.CreatedByID, group.AuditID).
		Scan(&group.ID, &group.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return group, nil
}

func (r *PostgresRepository) scanOne(row *sql.Row) (*models.Group, error) {
	group := &models.Group{}
	err := row.Scan(&group.ID, &group.Name, &group.InviteCode, &group.PasswordHash,
		&group.Status, &group.CreatedByID, &group.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return group, nil
}

func (r *PostgresRepository) GetActiveByID(ctx context.Context, id string) (*models.Group, error) {
	query := `SELECT ` + groupColumns + ` FROM groups WHERE group_id = $1 AND status = 'A'`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) GetActiveByCode(ctx context.Context, code string) (*models.Group, error) {
	query := `SELECT ` + groupColumns + ` FROM groups WHERE group_code = $1 AND status = 'A'`
	return r.scanOne(r.db.QueryRowContext(ctx, query, code))
}

func (r *PostgresRepository) ListActiveForUser(ctx context.Context, userID string) ([]*models.Group, error) {
	query :=
		`SELECT g.group_id, g.name, g.group_code, coalesce(g.password, ''), g.status, g.created_by, g.created_at
		 FROM groups g
		 JOIN group_members m ON m.group_id = g.group_id
		 WHERE m.user_id = $1 AND m.status = 'A' AND g.status = 'A'
		 ORDER BY g.created_at
		 `

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Group
	for rows.Next() {
		group := &models.Group{}
		if err := rows.Scan(&group.ID, &group.Name, &group.InviteCode, &group.PasswordHash,
			&group.Status, &group.CreatedByID, &group.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, group)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) SetStatus(ctx context.Context, id string, status string) error {
	query := `UPDATE groups SET status = $2 WHERE group_id = $1`

	res, err := r.db.ExecContext(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperr.ErrNotFound
	}

	return nil
}
