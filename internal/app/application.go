package app

import (
	"context"
	"fmt"

	"github.com/R3E-Network/tasktracker/internal/app/core/service"
	"github.com/R3E-Network/tasktracker/internal/app/metrics"
	"github.com/R3E-Network/tasktracker/internal/app/services/tasks"
	"github.com/R3E-Network/tasktracker/internal/app/services/users"
	"github.com/R3E-Network/tasktracker/internal/app/storage"
	"github.com/R3E-Network/tasktracker/internal/app/storage/memory"
	"github.com/R3E-Network/tasktracker/internal/app/system"
	"github.com/R3E-Network/tasktracker/pkg/logger"
)

// Stores encapsulates persistence dependencies. Nil stores default to the
// in-memory implementation.
type Stores struct {
	Users storage.UserStore
	Tasks storage.TaskStore
}

// Application ties domain services together and manages their lifecycle.
type Application struct {
	manager *system.Manager
	log     *logger.Logger

	Users *users.Service
	Tasks *tasks.Service
}

// New builds a fully initialised application with the provided stores.
func New(stores Stores, log *logger.Logger) (*Application, error) {
	if log == nil {
		log = logger.NewDefault("app")
	}

	if stores.Users == nil {
		stores.Users = memory.NewUserStore(nil, log.Component("store"))
	}
	if stores.Tasks == nil {
		stores.Tasks = memory.NewTaskStore(nil, log.Component("store"))
	}

	manager := system.NewManager()

	userService := users.New(stores.Users, log.Component("users"))
	taskService := tasks.New(stores.Users, stores.Tasks, log.Component("tasks"))

	for _, name := range []string{userService.Name(), taskService.Name()} {
		if err := manager.Register(system.NoopService{ServiceName: name}); err != nil {
			return nil, fmt.Errorf("register %s service: %w", name, err)
		}
	}

	ctx := context.Background()
	metrics.SetUserCount(userService.Count(ctx))
	metrics.SetTaskCount(taskService.Count(ctx))

	return &Application{
		manager: manager,
		log:     log,
		Users:   userService,
		Tasks:   taskService,
	}, nil
}

// Attach registers an additional lifecycle-managed service. Call before Start.
func (a *Application) Attach(svc system.Service) error {
	return a.manager.Register(svc)
}

// Start begins all registered services.
func (a *Application) Start(ctx context.Context) error {
	if err := a.manager.Start(ctx); err != nil {
		return err
	}
	a.log.WithField("services", len(a.manager.Services())).Info("application started")
	return nil
}

// Stop stops all services.
func (a *Application) Stop(ctx context.Context) error {
	return a.manager.Stop(ctx)
}

// Descriptors lists the core services followed by any attached service that
// describes itself.
func (a *Application) Descriptors() []service.Descriptor {
	out := []service.Descriptor{a.Users.Descriptor(), a.Tasks.Descriptor()}
	for _, svc := range a.manager.Services() {
		if d, ok := svc.(system.Describer); ok {
			out = append(out, d.Descriptor())
		}
	}
	return out
}
