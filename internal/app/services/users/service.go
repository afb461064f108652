package users

import (
	"context"
	"fmt"

	"github.com/R3E-Network/tasktracker/internal/app/core/service"
	"github.com/R3E-Network/tasktracker/internal/app/domain/user"
	"github.com/R3E-Network/tasktracker/internal/app/metrics"
	"github.com/R3E-Network/tasktracker/internal/app/storage"
	apperrors "github.com/R3E-Network/tasktracker/internal/errors"
	"github.com/R3E-Network/tasktracker/pkg/logger"
)

// Service manages user creation and lookup.
type Service struct {
	store storage.UserStore
	log   *logger.Logger
}

// New creates a user service backed by store.
func New(store storage.UserStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("users")
	}
	return &Service{store: store, log: log}
}

// Name returns the lifecycle name of the service.
func (s *Service) Name() string { return "users" }

// Descriptor advertises the service for health reporting.
func (s *Service) Descriptor() service.Descriptor {
	return service.Descriptor{Name: s.Name(), Domain: "users", Layer: service.LayerCore}.
		WithCapabilities("create")
}

// Create registers a new user. The username is stored as given.
func (s *Service) Create(ctx context.Context, username string) (user.User, error) {
	created, err := s.store.InsertUser(ctx, user.User{Username: username})
	metrics.RecordOperation("create_user", err)
	if err != nil {
		return user.User{}, fmt.Errorf("insert user: %w", err)
	}
	metrics.SetUserCount(s.store.CountUsers(ctx))

	s.log.WithField("user_id", created.ID).
		WithField("username", username).
		Info("user created")
	return created, nil
}

// Get retrieves a user by identifier.
func (s *Service) Get(ctx context.Context, id string) (user.User, error) {
	u, ok := s.store.GetUser(ctx, id)
	if !ok {
		return user.User{}, apperrors.ErrUserNotFound
	}
	return u, nil
}

// Count returns the number of registered users.
func (s *Service) Count(ctx context.Context) int {
	return s.store.CountUsers(ctx)
}
