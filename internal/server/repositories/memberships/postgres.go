package memberships

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

func (r *PostgresRepository) Create(ctx context.Context, m *models.Membership) (*models.Membership, error) {
	query :=
		`INSERT INTO group_members (user_id, group_id, status, audit_id)
		 VALUES ($1, $2, $3, $4)
		 RETURNING member_id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query, m.UserID, m.GroupID, m.Status, m.AuditID).
		Scan(&m.ID, &m.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return m, nil
}

func (r *PostgresRepository) GetActive(ctx context.Context, userID, groupID string) (*models.Membership, error) {
	query :=
		`SELECT member_id, user_id, group_id, status, created_at
		 FROM group_members
		 WHERE user_id = $1 AND group_id = $2 AND status = 'A'
		 `

	m := &models.Membership{}
	err := r.db.QueryRowContext(ctx, query, userID, groupID).
		Scan(&m.ID, &m.UserID, &m.GroupID, &m.Status, &m.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return m, nil
}
