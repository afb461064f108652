// Package httpapi exposes the task tracker over HTTP.
package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	app "github.com/R3E-Network/tasktracker/internal/app"
	"github.com/R3E-Network/tasktracker/internal/app/domain/task"
	"github.com/R3E-Network/tasktracker/internal/app/metrics"
	"github.com/R3E-Network/tasktracker/internal/app/services/tasks"
	apperrors "github.com/R3E-Network/tasktracker/internal/errors"
	"github.com/R3E-Network/tasktracker/internal/httputil"
	"github.com/R3E-Network/tasktracker/internal/logging"
	"github.com/R3E-Network/tasktracker/internal/middleware"
	"github.com/R3E-Network/tasktracker/pkg/logger"
)

// statusByKind maps each core failure kind to its HTTP status.
var statusByKind = map[apperrors.Kind]int{
	apperrors.KindUserNotFound: http.StatusNotFound,
	apperrors.KindTaskNotFound: http.StatusNotFound,
	apperrors.KindInvalidInput: http.StatusBadRequest,
}

// Options tunes the optional endpoints.
type Options struct {
	// AuditMaxEntries bounds the in-memory audit trail.
	AuditMaxEntries int
	// AuditPath, when set, appends every audit entry to a JSONL file.
	AuditPath string
	// Metrics exposes /metrics and records per-route request metrics.
	Metrics bool
}

// API routes requests to the application services.
type API struct {
	app    *app.Application
	router *mux.Router
	audit  *auditLog
	sink   *fileAuditSink
	log    *logger.Logger
}

// New builds the router for application.
func New(application *app.Application, opts Options, log *logger.Logger) (*API, error) {
	if log == nil {
		log = logger.NewDefault("httpapi")
	}
	sink, err := newFileAuditSink(opts.AuditPath)
	if err != nil {
		return nil, fmt.Errorf("open audit sink: %w", err)
	}

	var s auditSink
	if sink != nil {
		s = sink
	}
	a := &API{
		app:    application,
		router: mux.NewRouter(),
		audit:  newAuditLog(opts.AuditMaxEntries, s),
		sink:   sink,
		log:    log,
	}

	r := a.router
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
	if opts.Metrics {
		r.Use(middleware.MetricsMiddleware())
		r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	}
	r.Use(a.auditMiddleware)

	r.HandleFunc("/healthz", a.health).Methods(http.MethodGet)
	r.HandleFunc("/audit", a.listAudit).Methods(http.MethodGet)

	r.HandleFunc("/users", a.createUser).Methods(http.MethodPost)
	r.HandleFunc("/users/{userId}/tasks", a.createTask).Methods(http.MethodPost)
	r.HandleFunc("/users/{userId}/tasks", a.listTasks).Methods(http.MethodGet)
	r.HandleFunc("/users/{userId}/tasks/{taskId}", a.getTask).Methods(http.MethodGet)
	r.HandleFunc("/users/{userId}/tasks/{taskId}", a.updateTask).Methods(http.MethodPut)
	r.HandleFunc("/users/{userId}/tasks/{taskId}", a.deleteTask).Methods(http.MethodDelete)

	return a, nil
}

func (a *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// Close releases the audit sink.
func (a *API) Close() error {
	return a.sink.Close()
}

type createUserRequest struct {
	Username *string `json:"username"`
}

// createTaskRequest mirrors httputil.CreateTaskRequest with pointer fields so
// missing required fields can be told apart from empty ones.
type createTaskRequest struct {
	Title       *string      `json:"title"`
	Description *string      `json:"description"`
	DueDate     *string      `json:"due_date"`
	Status      *task.Status `json:"status"`
}

type updateTaskRequest struct {
	Title       *string      `json:"title"`
	Description *string      `json:"description"`
	Status      *task.Status `json:"status"`
}

func (a *API) createUser(w http.ResponseWriter, r *http.Request) {
	var payload createUserRequest
	if err := httputil.DecodeJSON(r.Body, &payload); err != nil || payload.Username == nil {
		a.writeError(r.Context(), w, apperrors.ErrInvalidInput)
		return
	}

	u, err := a.app.Users.Create(r.Context(), *payload.Username)
	if err != nil {
		a.writeError(r.Context(), w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, u)
}

func (a *API) createTask(w http.ResponseWriter, r *http.Request) {
	var payload createTaskRequest
	err := httputil.DecodeJSON(r.Body, &payload)
	if err != nil || payload.Title == nil || payload.Description == nil || payload.Status == nil {
		a.writeError(r.Context(), w, apperrors.ErrInvalidInput)
		return
	}

	created, err := a.app.Tasks.Create(r.Context(), mux.Vars(r)["userId"], tasks.NewTask{
		Title:       *payload.Title,
		Description: *payload.Description,
		DueDate:     payload.DueDate,
		Status:      *payload.Status,
	})
	if err != nil {
		a.writeError(r.Context(), w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, created)
}

func (a *API) listTasks(w http.ResponseWriter, r *http.Request) {
	list, err := a.app.Tasks.List(r.Context(), mux.Vars(r)["userId"])
	if err != nil {
		a.writeError(r.Context(), w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, list)
}

func (a *API) getTask(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	t, err := a.app.Tasks.Get(r.Context(), vars["userId"], vars["taskId"])
	if err != nil {
		a.writeError(r.Context(), w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, t)
}

func (a *API) updateTask(w http.ResponseWriter, r *http.Request) {
	var payload updateTaskRequest
	if err := httputil.DecodeJSON(r.Body, &payload); err != nil {
		a.writeError(r.Context(), w, apperrors.ErrInvalidInput)
		return
	}

	vars := mux.Vars(r)
	updated, err := a.app.Tasks.Update(r.Context(), vars["userId"], vars["taskId"], tasks.Update{
		Title:       payload.Title,
		Description: payload.Description,
		Status:      payload.Status,
	})
	if err != nil {
		a.writeError(r.Context(), w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, updated)
}

func (a *API) deleteTask(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := a.app.Tasks.Delete(r.Context(), vars["userId"], vars["taskId"]); err != nil {
		a.writeError(r.Context(), w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, nil)
}

func (a *API) health(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, httputil.Health{
		Status:   "ok",
		Users:    a.app.Users.Count(r.Context()),
		Tasks:    a.app.Tasks.Count(r.Context()),
		Services: a.app.Descriptors(),
	})
}

func (a *API) listAudit(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			a.writeError(r.Context(), w, apperrors.NewValidationError("limit", "must be a non-negative integer"))
			return
		}
		limit = n
	}
	httputil.WriteJSON(w, http.StatusOK, a.audit.listLimit(limit))
}

// writeError maps err to its status and fixed message. Errors outside the
// core kinds are logged and reported as 500.
func (a *API) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	kind := apperrors.KindOf(err)
	status, ok := statusByKind[kind]
	if !ok {
		status = http.StatusInternalServerError
		logging.New(a.log).WithContext(ctx).WithError(err).Error("unexpected error")
	}
	httputil.WriteError(w, status, kind.String())
}
