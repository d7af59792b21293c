package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/fcastro-dev/taskroom/internal/apperr"
	"github.com/fcastro-dev/taskroom/internal/dbx"
	"github.com/fcastro-dev/taskroom/internal/logging"
	"github.com/fcastro-dev/taskroom/internal/server/models"
	"github.com/fcastro-dev/taskroom/internal/server/repositories/repomanager"
	"github.com/fcastro-dev/taskroom/internal/server/ws"
)

// Audit operation tags for task flows.
const (
	opCreateTask       = "TASK.ADD_TASK"
	opChangeTaskStatus = "TASK.CHANGE_TASK_STATUS"
	opUpdateTask       = "TASK.UPDATE_TASK"
	opRemoveTask       = "TASK.REMOVE_TASK"
)

// Publisher pushes task mutation events to group subscribers. The WebSocket
// hub implements it; tests substitute a recorder.
type Publisher interface {
	Publish(groupID string, event string, payload any)
}

// TaskService implements the task lifecycle and publishes every successful
// mutation to the group's subscribers.
type TaskService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	ledger      Ledger
	publisher   Publisher
	logger      logging.Logger
}

func NewTaskService(db *sql.DB, m repomanager.RepositoryManager, ledger Ledger,
	publisher Publisher, logger logging.Logger) *TaskService {
	return &TaskService{
		db:          db,
		repomanager: m,
		ledger:      ledger,
		publisher:   publisher,
		logger:      logger.With("module", "task_service"),
	}
}

// ListForGroup returns the views of every Active task in the group.
func (s *TaskService) ListForGroup(ctx context.Context, groupID string) ([]*models.TaskView, error) {
	views, err := s.repomanager.Tasks(s.db).ListViewsByGroup(ctx, groupID)
	if err != nil {
		s.logger.Error(ctx, "task list error", "error", err.Error())
		return nil, apperr.Unexpected()
	}
	if views == nil {
		views = []*models.TaskView{}
	}
	return views, nil
}

// GetByID returns a single task view.
func (s *TaskService) GetByID(ctx context.Context, taskID string) (*models.TaskView, error) {
	view, err := s.repomanager.Tasks(s.db).GetViewByID(ctx, taskID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.NotFound("we could not find the task")
	}
	if err != nil {
		s.logger.Error(ctx, "task lookup error", "error", err.Error())
		return nil, apperr.Unexpected()
	}
	return view, nil
}

// Create inserts a task with its first open status row (NEW) in one
// transaction and broadcasts the resulting view to the group.
func (s *TaskService) Create(ctx context.Context, groupID, title, description string, rc RequestContext) (view *models.TaskView, err error) {
	auditID, err := s.ledger.Open(ctx, opCreateTask, rc.ActorID,
		map[string]string{"groupId": groupID, "title": title, "description": description}, rc.UserAgent)
	if err != nil {
		return nil, err
	}
	defer func() { s.ledger.Close(ctx, auditID, outcomeOf(view, err)) }()

	creator, err := s.repomanager.Users(s.db).GetActiveByID(ctx, rc.ActorID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.NotFound("we could not find your user, sign in again")
	}
	if err != nil {
		s.logger.Error(ctx, "task creator lookup error", "error", err.Error())
		return nil, apperr.Unexpected()
	}

	group, err := s.repomanager.Groups(s.db).GetActiveByID(ctx, groupID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.NotFound("we could not find the group")
	}
	if err != nil {
		s.logger.Error(ctx, "task group lookup error", "error", err.Error())
		return nil, apperr.Unexpected()
	}

	var task *models.Task
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		task, err = s.repomanager.Tasks(tx).Create(ctx, &models.Task{
			Title:       title,
			Description: description,
			GroupID:     group.ID,
			CreatedByID: creator.ID,
			Status:      models.StatusActive,
			AuditID:     auditID,
		})
		if err != nil {
			return err
		}

		_, err = s.repomanager.StatusHistory(tx).Create(ctx, &models.StatusHistory{
			TaskID:      task.ID,
			StatusCode:  models.TaskStatusNew,
			CreatedByID: creator.ID,
			Status:      models.StatusActive,
			AuditID:     auditID,
		})
		return err
	})
	if err != nil {
		s.logger.Error(ctx, "task insert error", "error", err.Error())
		return nil, apperr.Unexpected()
	}

	view, err = s.repomanager.Tasks(s.db).GetViewByID(ctx, task.ID)
	if err != nil {
		s.logger.Error(ctx, "task view error", "error", err.Error())
		return nil, apperr.Unexpected()
	}

	s.publisher.Publish(group.ID, ws.EventTaskAdded, view)

	return view, nil
}

// ChangeStatus closes the task's open status row and opens a new one for
// the given catalog code. Close and insert run in one transaction, so an
// unknown code leaves the timeline untouched.
func (s *TaskService) ChangeStatus(ctx context.Context, taskID, statusCode string, rc RequestContext) (view *models.TaskView, err error) {
	auditID, err := s.ledger.Open(ctx, opChangeTaskStatus, rc.ActorID,
		map[string]string{"taskId": taskID, "status": statusCode}, rc.UserAgent)
	if err != nil {
		return nil, err
	}
	defer func() { s.ledger.Close(ctx, auditID, outcomeOf(view, err)) }()

	actor, err := s.repomanager.Users(s.db).GetActiveByID(ctx, rc.ActorID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.NotFound("we could not find your user, sign in again")
	}
	if err != nil {
		s.logger.Error(ctx, "status actor lookup error", "error", err.Error())
		return nil, apperr.Unexpected()
	}

	task, err := s.repomanager.Tasks(s.db).GetActiveByID(ctx, taskID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.NotFound("we could not find the task")
	}
	if err != nil {
		s.logger.Error(ctx, "status task lookup error", "error", err.Error())
		return nil, apperr.Unexpected()
	}

	open, err := s.repomanager.StatusHistory(s.db).GetOpenByTask(ctx, task.ID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.NotFound("we could not find the task status")
	}
	if err != nil {
		s.logger.Error(ctx, "open status lookup error", "error", err.Error())
		return nil, apperr.Unexpected()
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.StatusHistory(tx).Close(ctx, open.ID, time.Now()); err != nil {
			return err
		}

		if _, err := s.repomanager.Statuses(tx).GetActiveByCode(ctx, statusCode); err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				return apperr.InvalidStatus("unknown task status")
			}
			return err
		}

		_, err := s.repomanager.StatusHistory(tx).Create(ctx, &models.StatusHistory{
			TaskID:      task.ID,
			StatusCode:  statusCode,
			CreatedByID: actor.ID,
			Status:      models.StatusActive,
			AuditID:     auditID,
		})
		return err
	})
	if err != nil {
		var e *apperr.Error
		if errors.As(err, &e) {
			return nil, e
		}
		s.logger.Error(ctx, "status change error", "error", err.Error())
		return nil, apperr.Unexpected()
	}

	view, err = s.repomanager.Tasks(s.db).GetViewByID(ctx, task.ID)
	if err != nil {
		s.logger.Error(ctx, "task view error", "error", err.Error())
		return nil, apperr.Unexpected()
	}

	s.publisher.Publish(task.GroupID, ws.EventTaskUpdated, view)

	return view, nil
}

// Update overwrites the task's title and description. An empty patch field
// falls back to the stored value, so fields cannot be cleared here.
func (s *TaskService) Update(ctx context.Context, taskID string, patch models.TaskPatch, rc RequestContext) (task *models.Task, err error) {
	auditID, err := s.ledger.Open(ctx, opUpdateTask,
		rc.ActorID, map[string]string{"taskId": taskID, "title": patch.Title, "description": patch.Description},
		rc.UserAgent)
	if err != nil {
		return nil, err
	}
	defer func() { s.ledger.Close(ctx, auditID, outcomeOf(task, err)) }()

	task, err = s.repomanager.Tasks(s.db).GetActiveByID(ctx, taskID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.NotFound("we could not find the task")
	}
	if err != nil {
		s.logger.Error(ctx, "update task lookup error", "error", err.Error())
		return nil, apperr.Unexpected()
	}

	title := patch.Title
	if title == "" {
		title = task.Title
	}
	description := patch.Description
	if description == "" {
		description = task.Description
	}

	if err = s.repomanager.Tasks(s.db).Update(ctx, task.ID, title, description); err != nil {
		s.logger.Error(ctx, "task update error", "error", err.Error())
		return nil, apperr.Unexpected()
	}

	task.Title = title
	task.Description = description

	return task, nil
}

// Remove flags a task Inactive and notifies the group. History rows stay in
// place for the audit trail.
func (s *TaskService) Remove(ctx context.Context, taskID string, rc RequestContext) (task *models.Task, err error) {
	auditID, err := s.ledger.Open(ctx, opRemoveTask, rc.ActorID,
		map[string]string{"taskId": taskID}, rc.UserAgent)
	if err != nil {
		return nil, err
	}
	defer func() { s.ledger.Close(ctx, auditID, outcomeOf(task, err)) }()

	task, err = s.repomanager.Tasks(s.db).GetActiveByID(ctx, taskID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.NotFound("we could not find the task")
	}
	if err != nil {
		s.logger.Error(ctx, "remove task lookup error", "error", err.Error())
		return nil, apperr.Unexpected()
	}

	if err = s.repomanager.Tasks(s.db).SetStatus(ctx, task.ID, models.StatusInactive); err != nil {
		s.logger.Error(ctx, "task remove error", "error", err.Error())
		return nil, apperr.Unexpected()
	}

	s.publisher.Publish(task.GroupID, ws.EventTaskDeleted, map[string]string{"taskId": task.ID})

	return task, nil
}
