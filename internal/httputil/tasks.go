package httputil

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/R3E-Network/tasktracker/internal/app/core/service"
	"github.com/R3E-Network/tasktracker/internal/app/domain/task"
	"github.com/R3E-Network/tasktracker/internal/app/domain/user"
)

// CreateTaskRequest is the body of POST /users/{userId}/tasks.
type CreateTaskRequest struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	DueDate     *string     `json:"due_date,omitempty"`
	Status      task.Status `json:"status"`
}

// UpdateTaskRequest is the body of PUT /users/{userId}/tasks/{taskId}.
type UpdateTaskRequest struct {
	Title       *string      `json:"title,omitempty"`
	Description *string      `json:"description,omitempty"`
	Status      *task.Status `json:"status,omitempty"`
}

// Health is the body of GET /healthz.
type Health struct {
	Status string `json:"status"`
	Users  int    `json:"users"`
	Tasks  int    `json:"tasks"`

	Services []service.Descriptor `json:"services,omitempty"`
}

func tasksPath(userID string) string {
	return fmt.Sprintf("/users/%s/tasks", url.PathEscape(userID))
}

func taskPath(userID, taskID string) string {
	return fmt.Sprintf("%s/%s", tasksPath(userID), url.PathEscape(taskID))
}

func (c *Client) call(ctx context.Context, method, path string, body, out interface{}) error {
	resp, err := c.Do(ctx, method, path, body)
	if err != nil {
		return err
	}
	return DecodeResponse(resp, out)
}

// CreateUser registers username.
func (c *Client) CreateUser(ctx context.Context, username string) (user.User, error) {
	var out user.User
	err := c.call(ctx, http.MethodPost, "/users", map[string]string{"username": username}, &out)
	return out, err
}

// CreateTask adds a task for userID.
func (c *Client) CreateTask(ctx context.Context, userID string, req CreateTaskRequest) (task.Task, error) {
	if req.Status == "" {
		req.Status = task.StatusTodo
	}
	var out task.Task
	err := c.call(ctx, http.MethodPost, tasksPath(userID), req, &out)
	return out, err
}

// ListTasks returns userID's tasks.
func (c *Client) ListTasks(ctx context.Context, userID string) ([]task.Task, error) {
	var out []task.Task
	err := c.call(ctx, http.MethodGet, tasksPath(userID), nil, &out)
	return out, err
}

// GetTask fetches a single task.
func (c *Client) GetTask(ctx context.Context, userID, taskID string) (task.Task, error) {
	var out task.Task
	err := c.call(ctx, http.MethodGet, taskPath(userID, taskID), nil, &out)
	return out, err
}

// UpdateTask applies a partial update.
func (c *Client) UpdateTask(ctx context.Context, userID, taskID string, req UpdateTaskRequest) (task.Task, error) {
	var out task.Task
	err := c.call(ctx, http.MethodPut, taskPath(userID, taskID), req, &out)
	return out, err
}

// DeleteTask removes a task.
func (c *Client) DeleteTask(ctx context.Context, userID, taskID string) error {
	return c.call(ctx, http.MethodDelete, taskPath(userID, taskID), nil, nil)
}

// Health fetches the server health summary.
func (c *Client) Health(ctx context.Context) (Health, error) {
	var out Health
	err := c.call(ctx, http.MethodGet, "/healthz", nil, &out)
	return out, err
}
