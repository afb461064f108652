// Package tasks implements the task CRUD operations over the user and task
// stores.
//
// Existence rules differ by operation and are kept on purpose:
//   - Create checks the user store, so any registered user may add tasks.
//   - List, Get and Update check the task store, so a user who never created
//     a task is reported as UserNotFound.
//   - Delete reports every miss, including a missing sequence, as
//     TaskNotFound.
package tasks

import (
	"context"
	"strings"

	"github.com/R3E-Network/tasktracker/internal/app/core/service"
	"github.com/R3E-Network/tasktracker/internal/app/domain/task"
	"github.com/R3E-Network/tasktracker/internal/app/metrics"
	"github.com/R3E-Network/tasktracker/internal/app/storage"
	apperrors "github.com/R3E-Network/tasktracker/internal/errors"
	"github.com/R3E-Network/tasktracker/pkg/logger"
)

// UserChecker reports whether a user exists. storage.UserStore satisfies it.
type UserChecker interface {
	ContainsUser(ctx context.Context, id string) bool
}

// NewTask carries the decoded create request.
type NewTask struct {
	Title       string
	Description string
	DueDate     *string
	// Status is accepted but not applied: new tasks always start as Todo.
	Status task.Status
}

// Update carries a partial update. Nil fields leave the stored value alone.
type Update struct {
	Title       *string
	Description *string
	Status      *task.Status
}

// Empty reports whether the update changes nothing.
func (u Update) Empty() bool {
	return u.Title == nil && u.Description == nil && u.Status == nil
}

// Service manages tasks scoped to users.
type Service struct {
	users UserChecker
	store storage.TaskStore
	log   *logger.Logger
}

// New creates a task service. users is consulted only by Create.
func New(users UserChecker, store storage.TaskStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("tasks")
	}
	return &Service{users: users, store: store, log: log}
}

// Name returns the lifecycle name of the service.
func (s *Service) Name() string { return "tasks" }

// Descriptor advertises the service for health reporting.
func (s *Service) Descriptor() service.Descriptor {
	return service.Descriptor{Name: s.Name(), Domain: "tasks", Layer: service.LayerCore}.
		WithCapabilities("create", "list", "get", "update", "delete")
}

// Create appends a new Todo task to userID's sequence.
//
// The user store lock is taken and released by ContainsUser before the task
// store is touched; the two locks are never held together.
func (s *Service) Create(ctx context.Context, userID string, in NewTask) (task.Task, error) {
	created, err := s.create(ctx, userID, in)
	metrics.RecordOperation("create_task", err)
	return created, err
}

func (s *Service) create(ctx context.Context, userID string, in NewTask) (task.Task, error) {
	if !s.users.ContainsUser(ctx, userID) {
		return task.Task{}, apperrors.ErrUserNotFound
	}
	if strings.TrimSpace(in.Title) == "" {
		return task.Task{}, apperrors.NewValidationError("title", "must not be blank")
	}

	if in.Status != "" && in.Status != task.StatusTodo {
		s.log.WithField("user_id", userID).
			WithField("requested_status", in.Status).
			Debug("ignoring requested status on create")
	}

	created, err := s.store.AppendTask(ctx, userID, task.Task{
		Title:       in.Title,
		Description: in.Description,
		Status:      task.StatusTodo,
	})
	if err != nil {
		return task.Task{}, err
	}
	metrics.SetTaskCount(s.store.CountTasks(ctx))

	s.log.WithField("user_id", userID).
		WithField("task_id", created.ID).
		Info("task created")
	return created, nil
}

// List returns userID's tasks in insertion order.
func (s *Service) List(ctx context.Context, userID string) ([]task.Task, error) {
	list, ok := s.store.ListTasks(ctx, userID)
	if !ok {
		metrics.RecordOperation("list_tasks", apperrors.ErrUserNotFound)
		return nil, apperrors.ErrUserNotFound
	}
	metrics.RecordOperation("list_tasks", nil)
	return list, nil
}

// Get returns a single task.
func (s *Service) Get(ctx context.Context, userID, taskID string) (task.Task, error) {
	t, err := s.store.GetTask(ctx, userID, taskID)
	metrics.RecordOperation("get_task", err)
	return t, err
}

// Update overwrites the fields present in upd and returns the task after
// mutation. Titles are not validated here.
func (s *Service) Update(ctx context.Context, userID, taskID string, upd Update) (task.Task, error) {
	updated, err := s.store.UpdateTask(ctx, userID, taskID, func(t *task.Task) {
		if upd.Title != nil {
			t.Title = *upd.Title
		}
		if upd.Description != nil {
			t.Description = *upd.Description
		}
		if upd.Status != nil {
			t.Status = *upd.Status
		}
	})
	metrics.RecordOperation("update_task", err)
	if err != nil {
		return task.Task{}, err
	}

	s.log.WithField("user_id", userID).
		WithField("task_id", taskID).
		WithField("status", updated.Status).
		Info("task updated")
	return updated, nil
}

// Delete removes a task permanently.
func (s *Service) Delete(ctx context.Context, userID, taskID string) error {
	if !s.store.RemoveTask(ctx, userID, taskID) {
		metrics.RecordOperation("delete_task", apperrors.ErrTaskNotFound)
		return apperrors.ErrTaskNotFound
	}
	metrics.RecordOperation("delete_task", nil)
	metrics.SetTaskCount(s.store.CountTasks(ctx))

	s.log.WithField("user_id", userID).
		WithField("task_id", taskID).
		Info("task deleted")
	return nil
}

// Count returns the total number of stored tasks.
func (s *Service) Count(ctx context.Context) int {
	return s.store.CountTasks(ctx)
}
