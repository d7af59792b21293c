package repomanager

import (
	"context"
	"database/sql"

	"github.com/fcastro-dev/taskroom/internal/dbx"
	"github.com/fcastro-dev/taskroom/internal/server/migrations"
	"github.com/fcastro-dev/taskroom/internal/server/repositories/audit"
	"github.com/fcastro-dev/taskroom/internal/server/repositories/groups"
	"github.com/fcastro-dev/taskroom/internal/server/repositories/memberships"
	"github.com/fcastro-dev/taskroom/internal/server/repositories/statuses"
	"github.com/fcastro-dev/taskroom/internal/server/repositories/statushistory"
	"github.com/fcastro-dev/taskroom/internal/server/repositories/tasks"
	"github.com/fcastro-dev/taskroom/internal/server/repositories/users"
	"github.com/fcastro-dev/taskroom/internal/server/repositories/validationcodes"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

type PostgresRepositoryManager struct {
}

func NewPostgresRepositoryManager() *PostgresRepositoryManager {
	return &PostgresRepositoryManager{}
}

func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}

	if err := goose.UpContext(ctx, db, "."); err != nil {
		return err
	}

	return nil
}

func (m *PostgresRepositoryManager) Audit(db dbx.DBTX) audit.Repository {
	return audit.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) ValidationCodes(db dbx.DBTX) validationcodes.Repository {
	return validationcodes.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Groups(db dbx.DBTX) groups.Repository {
	return groups.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Memberships(db dbx.DBTX) memberships.Repository {
	return memberships.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Tasks(db dbx.DBTX) tasks.Repository {
	return tasks.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) StatusHistory(db dbx.DBTX) statushistory.Repository {
	return statushistory.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Statuses(db dbx.DBTX) statuses.Repository {
	return statuses.NewPostgresRepository(db)
}
