// Package repomanager hands out per-entity repositories bound to a DBTX, so
// services can run any repository against either the shared connection pool
// or an open transaction.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/fcastro-dev/taskroom/internal/dbx"
	"github.com/fcastro-dev/taskroom/internal/server/repositories/audit"
	"github.com/fcastro-dev/taskroom/internal/server/repositories/groups"
	"github.com/fcastro-dev/taskroom/internal/server/repositories/memberships"
	"github.com/fcastro-dev/taskroom/internal/server/repositories/statuses"
	"github.com/fcastro-dev/taskroom/internal/server/repositories/statushistory"
	"github.com/fcastro-dev/taskroom/internal/server/repositories/tasks"
	"github.com/fcastro-dev/taskroom/internal/server/repositories/users"
	"github.com/fcastro-dev/taskroom/internal/server/repositories/validationcodes"
)

type RepositoryManager interface {
	RunMigrations(ctx context.Context, db *sql.DB) error
	Audit(db dbx.DBTX) audit.Repository
	Users(db dbx.DBTX) users.Repository
	ValidationCodes(db dbx.DBTX) validationcodes.Repository
	Groups(db dbx.DBTX) groups.Repository
	Memberships(db dbx.DBTX) memberships.Repository
	Tasks(db dbx.DBTX) tasks.Repository
	StatusHistory(db dbx.DBTX) statushistory.Repository
	Statuses(db dbx.DBTX) statuses.Repository
}
