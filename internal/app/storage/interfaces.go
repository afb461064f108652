package storage

import (
	"context"

	"github.com/R3E-Network/tasktracker/internal/app/domain/task"
	"github.com/R3E-Network/tasktracker/internal/app/domain/user"
)

// UserStore persists user records. Users are never updated or removed.
type UserStore interface {
	// InsertUser stores u, assigning an ID when u.ID is empty. Inserting an
	// existing ID fails.
	InsertUser(ctx context.Context, u user.User) (user.User, error)
	GetUser(ctx context.Context, id string) (user.User, bool)
	ContainsUser(ctx context.Context, id string) bool
	CountUsers(ctx context.Context) int
}

// TaskStore persists each user's ordered task sequence. It is independent of
// UserStore and never consults it.
type TaskStore interface {
	// AppendTask adds t to the end of userID's sequence, creating the sequence
	// on first use and assigning an ID when t.ID is empty.
	AppendTask(ctx context.Context, userID string, t task.Task) (task.Task, error)

	// ListTasks returns the sequence in insertion order, or false when userID
	// has no sequence.
	ListTasks(ctx context.Context, userID string) ([]task.Task, bool)

	// GetTask fails with ErrUserNotFound when userID has no sequence and with
	// ErrTaskNotFound when the sequence lacks taskID.
	GetTask(ctx context.Context, userID, taskID string) (task.Task, error)

	// UpdateTask applies mutate to the stored task while the store is locked
	// and returns the result. Errors match GetTask.
	UpdateTask(ctx context.Context, userID, taskID string, mutate func(*task.Task)) (task.Task, error)

	// RemoveTask deletes taskID from userID's sequence and reports whether it
	// was found.
	RemoveTask(ctx context.Context, userID, taskID string) bool

	CountTasks(ctx context.Context) int
}
