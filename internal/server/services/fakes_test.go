package services

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/fcastro-dev/taskroom/internal/dbx"
	"github.com/fcastro-dev/taskroom/internal/logging"
	"github.com/fcastro-dev/taskroom/internal/server/models"
	"github.com/fcastro-dev/taskroom/internal/server/repositories/groups"
	"github.com/fcastro-dev/taskroom/internal/server/repositories/memberships"
	"github.com/fcastro-dev/taskroom/internal/server/repositories/repomanager"
	"github.com/fcastro-dev/taskroom/internal/server/repositories/statuses"
	"github.com/fcastro-dev/taskroom/internal/server/repositories/statushistory"
	"github.com/fcastro-dev/taskroom/internal/server/repositories/tasks"
	"github.com/fcastro-dev/taskroom/internal/server/repositories/users"
	"github.com/fcastro-dev/taskroom/internal/server/repositories/validationcodes"
)

// -------- test fakes --------

type fakeLedger struct {
	openErr error
	opened  []string
	closed  []any
}

func (f *fakeLedger) Open(ctx context.Context, operation string, actorID string, input any, userAgent string) (string, error) {
	if f.openErr != nil {
		return "", f.openErr
	}
	f.opened = append(f.opened, operation)
	return "tr-1", nil
}

func (f *fakeLedger) Close(ctx context.Context, auditID string, outcome any) {
	f.closed = append(f.closed, outcome)
}

type fakeMailer struct {
	err  error
	sent []string
}

func (f *fakeMailer) SendValidationCode(ctx context.Context, toEmail, toName, code string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, code)
	return nil
}

type published struct {
	groupID string
	event   string
	payload any
}

type fakePublisher struct {
	events []published
}

func (f *fakePublisher) Publish(groupID string, event string, payload any) {
	f.events = append(f.events, published{groupID: groupID, event: event, payload: payload})
}

type fakeUsersRepo struct {
	users.Repository
	create           func(u *models.User) (*models.User, error)
	getByID          func(id string) (*models.User, error)
	getActiveByID    func(id string) (*models.User, error)
	getActiveByEmail func(email string) (*models.User, error)
	getLiveByEmail   func(email string) (*models.User, error)
	getByEmail       func(email string) (*models.User, error)
	updatePassword   func(id, hash string) error
	updateStatus     func(id, status string) error
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	return f.create(u)
}
func (f *fakeUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	return f.getByID(id)
}
func (f *fakeUsersRepo) GetActiveByID(ctx context.Context, id string) (*models.User, error) {
	return f.getActiveByID(id)
}
func (f *fakeUsersRepo) GetActiveByEmail(ctx context.Context, email string) (*models.User, error) {
	return f.getActiveByEmail(email)
}
func (f *fakeUsersRepo) GetLiveByEmail(ctx context.Context, email string) (*models.User, error) {
	return f.getLiveByEmail(email)
}
func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return f.getByEmail(email)
}
func (f *fakeUsersRepo) UpdatePassword(ctx context.Context, id string, hash string) error {
	return f.updatePassword(id, hash)
}
func (f *fakeUsersRepo) UpdateStatus(ctx context.Context, id string, status string) error {
	return f.updateStatus(id, status)
}

type fakeCodesRepo struct {
	validationcodes.Repository
	create           func(c *models.ValidationCode) (*models.ValidationCode, error)
	getPendingByUser func(userID string) (*models.ValidationCode, error)
	getValidated     func(userID string) (*models.ValidationCode, error)
	setStatus        func(id, status string) error
	incrementRetries func(id string) (int, error)
	markValidated    func(id string, at time.Time) error
}

func (f *fakeCodesRepo) Create(ctx context.Context, c *models.ValidationCode) (*models.ValidationCode, error) {
	return f.create(c)
}
func (f *fakeCodesRepo) GetPendingByUser(ctx context.Context, userID string) (*models.ValidationCode, error) {
	return f.getPendingByUser(userID)
}
func (f *fakeCodesRepo) GetValidatedByUser(ctx context.Context, userID string) (*models.ValidationCode, error) {
	return f.getValidated(userID)
}
func (f *fakeCodesRepo) SetStatus(ctx context.Context, id string, status string) error {
	return f.setStatus(id, status)
}
func (f *fakeCodesRepo) IncrementRetries(ctx context.Context, id string) (int, error) {
	return f.incrementRetries(id)
}
func (f *fakeCodesRepo) MarkValidated(ctx context.Context, id string, at time.Time) error {
	return f.markValidated(id, at)
}

type fakeGroupsRepo struct {
	groups.Repository
	create          func(g *models.Group) (*models.Group, error)
	getActiveByID   func(id string) (*models.Group, error)
	getActiveByCode func(code string) (*models.Group, error)
	listForUser     func(userID string) ([]*models.Group, error)
	setStatus       func(id, status string) error
}

func (f *fakeGroupsRepo) Create(ctx context.Context, g *models.Group) (*models.Group, error) {
	return f.create(g)
}
func (f *fakeGroupsRepo) GetActiveByID(ctx context.Context, id string) (*models.Group, error) {
	return f.getActiveByID(id)
}
func (f *fakeGroupsRepo) GetActiveByCode(ctx context.Context, code string) (*models.Group, error) {
	return f.getActiveByCode(code)
}
func (f *fakeGroupsRepo) ListActiveForUser(ctx context.Context, userID string) ([]*models.Group, error) {
	return f.listForUser(userID)
}
func (f *fakeGroupsRepo) SetStatus(ctx context.Context, id string, status string) error {
	return f.setStatus(id, status)
}

type fakeMembershipsRepo struct {
	memberships.Repository
	create    func(m *models.Membership) (*models.Membership, error)
	getActive func(userID, groupID string) (*models.Membership, error)
}

func (f *fakeMembershipsRepo) Create(ctx context.Context, m *models.Membership) (*models.Membership, error) {
	return f.create(m)
}
func (f *fakeMembershipsRepo) GetActive(ctx context.Context, userID, groupID string) (*models.Membership, error) {
	return f.getActive(userID, groupID)
}

type fakeTasksRepo struct {
	tasks.Repository
	create        func(t *models.Task) (*models.Task, error)
	getActiveByID func(id string) (*models.Task, error)
	update        func(id, title, description string) error
	setStatus     func(id, status string) error
	getViewByID   func(id string) (*models.TaskView, error)
	listByGroup   func(groupID string) ([]*models.TaskView, error)
}

func (f *fakeTasksRepo) Create(ctx context.Context, t *models.Task) (*models.Task, error) {
	return f.create(t)
}
func (f *fakeTasksRepo) GetActiveByID(ctx context.Context, id string) (*models.Task, error) {
	return f.getActiveByID(id)
}
func (f *fakeTasksRepo) Update(ctx context.Context, id string, title, description string) error {
	return f.update(id, title, description)
}
func (f *fakeTasksRepo) SetStatus(ctx context.Context, id string, status string) error {
	return f.setStatus(id, status)
}
func (f *fakeTasksRepo) GetViewByID(ctx context.Context, id string) (*models.TaskView, error) {
	return f.getViewByID(id)
}
func (f *fakeTasksRepo) ListViewsByGroup(ctx context.Context, groupID string) ([]*models.TaskView, error) {
	return f.listByGroup(groupID)
}

type fakeHistoryRepo struct {
	statushistory.Repository
	create        func(h *models.StatusHistory) (*models.StatusHistory, error)
	getOpenByTask func(taskID string) (*models.StatusHistory, error)
	closeRow      func(id string, at time.Time) error
}

func (f *fakeHistoryRepo) Create(ctx context.Context, h *models.StatusHistory) (*models.StatusHistory, error) {
	return f.create(h)
}
func (f *fakeHistoryRepo) GetOpenByTask(ctx context.Context, taskID string) (*models.StatusHistory, error) {
	return f.getOpenByTask(taskID)
}
func (f *fakeHistoryRepo) Close(ctx context.Context, id string, at time.Time) error {
	return f.closeRow(id, at)
}

type fakeStatusesRepo struct {
	statuses.Repository
	listActive      func() ([]*models.Status, error)
	getActiveByCode func(code string) (*models.Status, error)
}

func (f *fakeStatusesRepo) ListActive(ctx context.Context) ([]*models.Status, error) {
	return f.listActive()
}
func (f *fakeStatusesRepo) GetActiveByCode(ctx context.Context, code string) (*models.Status, error) {
	return f.getActiveByCode(code)
}

type fakeRepoManager struct {
	repomanager.RepositoryManager
	u  *fakeUsersRepo
	c  *fakeCodesRepo
	g  *fakeGroupsRepo
	m  *fakeMembershipsRepo
	t  *fakeTasksRepo
	h  *fakeHistoryRepo
	st *fakeStatusesRepo
}

func (m *fakeRepoManager) Users(db dbx.DBTX) users.Repository                     { return m.u }
func (m *fakeRepoManager) ValidationCodes(db dbx.DBTX) validationcodes.Repository { return m.c }
func (m *fakeRepoManager) Groups(db dbx.DBTX) groups.Repository                   { return m.g }
func (m *fakeRepoManager) Memberships(db dbx.DBTX) memberships.Repository         { return m.m }
func (m *fakeRepoManager) Tasks(db dbx.DBTX) tasks.Repository                     { return m.t }
func (m *fakeRepoManager) StatusHistory(db dbx.DBTX) statushistory.Repository     { return m.h }
func (m *fakeRepoManager) Statuses(db dbx.DBTX) statuses.Repository               { return m.st }

// -------- helpers --------

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewJSONHandler(io.Discard, nil)))
}

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}
