package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fcastro-dev/taskroom/internal/apperr"
	"github.com/fcastro-dev/taskroom/internal/dbx"
	"github.com/fcastro-dev/taskroom/internal/server/models"
)

// viewQuery joins a task with its creator, its single open history row and
// that row's catalog entry. The ended_at IS NULL condition is what selects
// the task's current status.
const viewQuery = `
	SELECT t.task_id, t.title, t.description, t.group_id, t.created_at,
	       u.user_id, u.email, u.name, u.lastname, u.status, u.created_at,
	       s.status_code, s.description, s.color
	FROM tasks t
	JOIN users u ON u.user_id = t.created_by
	JOIN task_status_history h ON h.task_id = t.task_id AND h.ended_at IS NULL AND h.status = 'A'
	JOIN statuses s ON s.status_code = h.status_code
	WHERE t.status = 'A' AND u.status = 'A'`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, task *models.Task) (*models.Task, error) {
	query :=
		`INSERT INTO tasks (title, description, group_id, created_by, status, audit_id)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING task_id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		task.Title, task.Description, task.GroupID, task.CreatedByID, task.Status, task.AuditID).
		Scan(&task.ID, &task.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return task, nil
}

func (r *PostgresRepository) GetActiveByID(ctx context.Context, id string) (*models.Task, error) {
	query :=
		`SELECT task_id, title, description, group_id, created_by, status, created_at
		 FROM tasks
		 WHERE task_id = $1 AND status = 'A'
		 `

	task := &models.Task{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&task.ID, &task.Title, &task.Description, &task.GroupID,
			&task.CreatedByID, &task.Status, &task.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return task, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id string, title, description string) error {
	query := `UPDATE tasks SET title = $2, description = $3 WHERE task_id = $1`

	res, err := r.db.ExecContext(ctx, query, id, title, description)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperr.ErrNotFound
	}

	return nil
}

func (r *PostgresRepository) SetStatus(ctx context.Context, id string, status string) error {
	query := `UPDATE tasks SET status = $2 WHERE task_id = $1`

	res, err := r.db.ExecContext(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperr.ErrNotFound
	}

	return nil
}

func scanView(scan func(dest ...any) error) (*models.TaskView, error) {
	v := &models.TaskView{CreatedBy: &models.User{}, Status: &models.Status{}}
	err := scan(&v.ID, &v.Title, &v.Description, &v.GroupID, &v.CreatedAt,
		&v.CreatedBy.ID, &v.CreatedBy.Email, &v.CreatedBy.Name, &v.CreatedBy.LastName,
		&v.CreatedBy.Status, &v.CreatedBy.CreatedAt,
		&v.Status.Code, &v.Status.Description, &v.Status.Color)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (r *PostgresRepository) GetViewByID(ctx context.Context, id string) (*models.TaskView, error) {
	query := viewQuery + ` AND t.task_id = $1`

	row := r.db.QueryRowContext(ctx, query, id)
	v, err := scanView(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return v, nil
}

func (r *PostgresRepository) ListViewsByGroup(ctx context.Context, groupID string) ([]*models.TaskView, error) {
	query := viewQuery + ` AND t.group_id = $1 ORDER BY t.created_at`

	rows, err := r.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.TaskView
	for rows.Next() {
		v, err := scanView(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}
