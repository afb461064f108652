// Package memory provides the in-memory user and task stores. Each store owns
// a single exclusive lock over its whole map; the two stores are locked
// independently and neither ever takes the other's lock.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/R3E-Network/tasktracker/internal/app/domain/task"
	"github.com/R3E-Network/tasktracker/internal/app/domain/user"
	"github.com/R3E-Network/tasktracker/internal/app/storage"
	apperrors "github.com/R3E-Network/tasktracker/internal/errors"
	"github.com/R3E-Network/tasktracker/pkg/logger"
)

var _ storage.UserStore = (*UserStore)(nil)
var _ storage.TaskStore = (*TaskStore)(nil)

// poisonGuard turns a panic inside a critical section into a fatal log. The
// store is never used again after a panic while its lock is held.
type poisonGuard struct {
	name string
	log  *logger.Logger
}

func (g poisonGuard) check() {
	if r := recover(); r != nil {
		g.log.WithField("store", g.name).
			WithField("panic", fmt.Sprint(r)).
			Fatal("panic inside store critical section")
	}
}

// UserStore -------------------------------------------------------------------

// UserStore is a mutex-guarded map from user ID to user.
type UserStore struct {
	mu    sync.Mutex
	users map[string]user.User
	ids   storage.IDGenerator
	guard poisonGuard
}

// NewUserStore creates an empty user store. A nil ids uses UUIDs.
func NewUserStore(ids storage.IDGenerator, log *logger.Logger) *UserStore {
	if ids == nil {
		ids = storage.UUIDGenerator{}
	}
	if log == nil {
		log = logger.NewDefault("store")
	}
	return &UserStore{
		users: make(map[string]user.User),
		ids:   ids,
		guard: poisonGuard{name: "users", log: log},
	}
}

func (s *UserStore) InsertUser(_ context.Context, u user.User) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.guard.check()

	if u.ID == "" {
		u.ID = s.ids.NewID()
	}
	if _, exists := s.users[u.ID]; exists {
		return user.User{}, fmt.Errorf("user %s already exists", u.ID)
	}
	s.users[u.ID] = u
	return u, nil
}

func (s *UserStore) GetUser(_ context.Context, id string) (user.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	return u, ok
}

func (s *UserStore) ContainsUser(_ context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.users[id]
	return ok
}

func (s *UserStore) CountUsers(_ context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

// TaskStore -------------------------------------------------------------------

// TaskStore is a mutex-guarded map from user ID to that user's ordered tasks.
type TaskStore struct {
	mu    sync.Mutex
	tasks map[string][]task.Task
	ids   storage.IDGenerator
	guard poisonGuard
}

// NewTaskStore creates an empty task store. A nil ids uses UUIDs.
func NewTaskStore(ids storage.IDGenerator, log *logger.Logger) *TaskStore {
	if ids == nil {
		ids = storage.UUIDGenerator{}
	}
	if log == nil {
		log = logger.NewDefault("store")
	}
	return &TaskStore{
		tasks: make(map[string][]task.Task),
		ids:   ids,
		guard: poisonGuard{name: "tasks", log: log},
	}
}

func (s *TaskStore) AppendTask(_ context.Context, userID string, t task.Task) (task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.guard.check()

	seq := s.tasks[userID]
	if t.ID == "" {
		t.ID = s.ids.NewID()
	} else if indexOf(seq, t.ID) >= 0 {
		return task.Task{}, fmt.Errorf("task %s already exists", t.ID)
	}
	s.tasks[userID] = append(seq, t)
	return t, nil
}

func (s *TaskStore) ListTasks(_ context.Context, userID string) ([]task.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seq, ok := s.tasks[userID]
	if !ok {
		return nil, false
	}
	return append(make([]task.Task, 0, len(seq)), seq...), true
}

func (s *TaskStore) GetTask(_ context.Context, userID, taskID string) (task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seq, ok := s.tasks[userID]
	if !ok {
		return task.Task{}, apperrors.ErrUserNotFound
	}
	idx := indexOf(seq, taskID)
	if idx < 0 {
		return task.Task{}, apperrors.ErrTaskNotFound
	}
	return seq[idx], nil
}

func (s *TaskStore) UpdateTask(_ context.Context, userID, taskID string, mutate func(*task.Task)) (task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.guard.check()

	seq, ok := s.tasks[userID]
	if !ok {
		return task.Task{}, apperrors.ErrUserNotFound
	}
	idx := indexOf(seq, taskID)
	if idx < 0 {
		return task.Task{}, apperrors.ErrTaskNotFound
	}
	// Mutate a copy and write it back so a panicking mutator never leaves a
	// partially updated task behind.
	updated := seq[idx]
	mutate(&updated)
	seq[idx] = updated
	return updated, nil
}

func (s *TaskStore) RemoveTask(_ context.Context, userID, taskID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.guard.check()

	seq := s.tasks[userID]
	idx := indexOf(seq, taskID)
	if idx < 0 {
		return false
	}
	s.tasks[userID] = append(seq[:idx], seq[idx+1:]...)
	return true
}

func (s *TaskStore) CountTasks(_ context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, seq := range s.tasks {
		n += len(seq)
	}
	return n
}

func indexOf(seq []task.Task, taskID string) int {
	for i := range seq {
		if seq[i].ID == taskID {
			return i
		}
	}
	return -1
}
