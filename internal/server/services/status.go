package services

import (
	"context"
	"database/sql"

	"github.com/fcastro-dev/taskroom/internal/apperr"
	"github.com/fcastro-dev/taskroom/internal/logging"
	"github.com/fcastro-dev/taskroom/internal/server/models"
	"github.com/fcastro-dev/taskroom/internal/server/repositories/repomanager"
)

// StatusService serves the task status catalog.
type StatusService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewStatusService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *StatusService {
	return &StatusService{db: db, repomanager: m, logger: logger.With("module", "status_service")}
}

// List returns every Active catalog entry.
func (s *StatusService) List(ctx context.Context) ([]*models.Status, error) {
	statuses, err := s.repomanager.Statuses(s.db).ListActive(ctx)
	if err != nil {
		s.logger.Error(ctx, "status list error", "error", err.Error())
		return nil, apperr.Unexpected()
	}
	if statuses == nil {
		statuses = []*models.Status{}
	}
	return statuses, nil
}
