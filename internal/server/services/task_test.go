package services

import (
	"context"
	"testing"
	"time"

	"github.com/fcastro-dev/taskroom/internal/apperr"
	"github.com/fcastro-dev/taskroom/internal/server/models"
	"github.com/fcastro-dev/taskroom/internal/server/ws"
)

func TestCreateTask_InsertsFirstHistoryRow(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectCommit()

	var createdHistory *models.StatusHistory
	view := &models.TaskView{ID: "t-1", Title: "fix bug", GroupID: "g-1",
		Status: &models.Status{Code: models.TaskStatusNew}}
	m := &fakeRepoManager{
		u: &fakeUsersRepo{
			getActiveByID: func(string) (*models.User, error) { return &models.User{ID: "u-1"}, nil },
		},
		g: &fakeGroupsRepo{
			getActiveByID: func(string) (*models.Group, error) { return &models.Group{ID: "g-1"}, nil },
		},
		t: &fakeTasksRepo{
			create: func(task *models.Task) (*models.Task, error) {
				task.ID = "t-1"
				return task, nil
			},
			getViewByID: func(string) (*models.TaskView, error) { return view, nil },
		},
		h: &fakeHistoryRepo{
			create: func(h *models.StatusHistory) (*models.StatusHistory, error) {
				h.ID = "h-1"
				createdHistory = h
				return h, nil
			},
		},
	}
	pub := &fakePublisher{}
	s := NewTaskService(db, m, &fakeLedger{}, pub, testLogger())

	got, err := s.Create(context.Background(), "g-1", "fix bug", "details", rc())
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.ID != "t-1" {
		t.Fatalf("unexpected view: %+v", got)
	}
	if createdHistory.TaskID != "t-1" || createdHistory.StatusCode != models.TaskStatusNew {
		t.Fatalf("unexpected first history row: %+v", createdHistory)
	}
	if len(pub.events) != 1 || pub.events[0].event != ws.EventTaskAdded || pub.events[0].groupID != "g-1" {
		t.Fatalf("unexpected events: %+v", pub.events)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func changeStatusManager(knownStatus string, closed *[]string, created *[]*models.StatusHistory, view *models.TaskView) *fakeRepoManager {
	return &fakeRepoManager{
		u: &fakeUsersRepo{
			getActiveByID: func(string) (*models.User, error) { return &models.User{ID: "u-1"}, nil },
		},
		t: &fakeTasksRepo{
			getActiveByID: func(id string) (*models.Task, error) {
				return &models.Task{ID: id, GroupID: "g-1"}, nil
			},
			getViewByID: func(string) (*models.TaskView, error) { return view, nil },
		},
		h: &fakeHistoryRepo{
			getOpenByTask: func(string) (*models.StatusHistory, error) {
				return &models.StatusHistory{ID: "h-1", StatusCode: "NEW"}, nil
			},
			closeRow: func(id string, at time.Time) error {
				*closed = append(*closed, id)
				return nil
			},
			create: func(h *models.StatusHistory) (*models.StatusHistory, error) {
				*created = append(*created, h)
				return h, nil
			},
		},
		st: &fakeStatusesRepo{
			getActiveByCode: func(code string) (*models.Status, error) {
				if code != knownStatus {
					return nil, apperr.ErrNotFound
				}
				return &models.Status{Code: code}, nil
			},
		},
	}
}

func TestChangeStatus_ClosesOldRowAndOpensNew(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectCommit()

	var closed []string
	var created []*models.StatusHistory
	view := &models.TaskView{ID: "t-1", GroupID: "g-1", Status: &models.Status{Code: "DONE"}}
	pub := &fakePublisher{}
	s := NewTaskService(db, changeStatusManager("DONE", &closed, &created, view), &fakeLedger{}, pub, testLogger())

	got, err := s.ChangeStatus(context.Background(), "t-1", "DONE", rc())
	if err != nil {
		t.Fatalf("ChangeStatus error: %v", err)
	}
	if got.Status.Code != "DONE" {
		t.Fatalf("unexpected view: %+v", got)
	}
	if len(closed) != 1 || closed[0] != "h-1" {
		t.Fatalf("open row not closed: %+v", closed)
	}
	if len(created) != 1 || created[0].StatusCode != "DONE" || created[0].CreatedByID != "u-1" {
		t.Fatalf("unexpected new row: %+v", created)
	}
	if len(pub.events) != 1 || pub.events[0].event != ws.EventTaskUpdated {
		t.Fatalf("unexpected events: %+v", pub.events)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestChangeStatus_UnknownStatusRollsBack(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	var closed []string
	var created []*models.StatusHistory
	pub := &fakePublisher{}
	s := NewTaskService(db, changeStatusManager("DONE", &closed, &created, nil), &fakeLedger{}, pub, testLogger())

	_, err := s.ChangeStatus(context.Background(), "t-1", "BOGUS", rc())
	if apperr.From(err).Kind != apperr.KindInvalidStatus {
		t.Fatalf("expected invalid status, got %v", err)
	}
	if len(created) != 0 || len(pub.events) != 0 {
		t.Fatalf("nothing must be inserted or published: %+v %+v", created, pub.events)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestUpdateTask_EmptyFieldsFallBack(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	var gotTitle, gotDescription string
	m := &fakeRepoManager{t: &fakeTasksRepo{
		getActiveByID: func(id string) (*models.Task, error) {
			return &models.Task{ID: id, Title: "old title", Description: "old description"}, nil
		},
		update: func(id, title, description string) error {
			gotTitle, gotDescription = title, description
			return nil
		},
	}}
	s := NewTaskService(db, m, &fakeLedger{}, &fakePublisher{}, testLogger())

	task, err := s.Update(context.Background(), "t-1", models.TaskPatch{Title: "new title"}, rc())
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if gotTitle != "new title" || gotDescription != "old description" {
		t.Fatalf("unexpected update args: %q %q", gotTitle, gotDescription)
	}
	if task.Title != "new title" || task.Description != "old description" {
		t.Fatalf("unexpected task: %+v", task)
	}
}

func TestRemoveTask_PublishesDeletion(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	var updates []string
	m := &fakeRepoManager{t: &fakeTasksRepo{
		getActiveByID: func(id string) (*models.Task, error) {
			return &models.Task{ID: id, GroupID: "g-1"}, nil
		},
		setStatus: func(id, status string) error {
			updates = append(updates, id+":"+status)
			return nil
		},
	}}
	pub := &fakePublisher{}
	s := NewTaskService(db, m, &fakeLedger{}, pub, testLogger())

	if _, err := s.Remove(context.Background(), "t-1", rc()); err != nil {
		t.Fatalf("Remove error: %v", err)
	}
	if len(updates) != 1 || updates[0] != "t-1:"+models.StatusInactive {
		t.Fatalf("unexpected updates: %+v", updates)
	}
	if len(pub.events) != 1 || pub.events[0].event != ws.EventTaskDeleted || pub.events[0].groupID != "g-1" {
		t.Fatalf("unexpected events: %+v", pub.events)
	}
}

func TestGetTaskByID_NotFound(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	m := &fakeRepoManager{t: &fakeTasksRepo{
		getViewByID: func(string) (*models.TaskView, error) { return nil, apperr.ErrNotFound },
	}}
	s := NewTaskService(db, m, &fakeLedger{}, &fakePublisher{}, testLogger())

	_, err := s.GetByID(context.Background(), "ghost")
	if apperr.From(err).Kind != apperr.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListForGroup_EmptyIsNotNil(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	m := &fakeRepoManager{t: &fakeTasksRepo{
		listByGroup: func(string) ([]*models.TaskView, error) { return nil, nil },
	}}
	s := NewTaskService(db, m, &fakeLedger{}, &fakePublisher{}, testLogger())

	got, err := s.ListForGroup(context.Background(), "g-1")
	if err != nil {
		t.Fatalf("ListForGroup error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty slice, got %#v", got)
	}
}
