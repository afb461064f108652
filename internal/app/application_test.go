package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/R3E-Network/tasktracker/internal/app/core/service"
	"github.com/R3E-Network/tasktracker/internal/app/services/tasks"
	"github.com/R3E-Network/tasktracker/internal/app/system"
	"github.com/R3E-Network/tasktracker/pkg/logger"
)

func TestNew_DefaultsToMemoryStores(t *testing.T) {
	application, err := New(Stores{}, logger.NewNop())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, application.Start(ctx))
	defer application.Stop(ctx)

	u, err := application.Users.Create(ctx, "alice")
	require.NoError(t, err)
	created, err := application.Tasks.Create(ctx, u.ID, tasks.NewTask{Title: "buy milk"})
	require.NoError(t, err)
	assert.Equal(t, 1, application.Tasks.Count(ctx))
	assert.NotEmpty(t, created.ID)
}

func TestAttachAndDescriptors(t *testing.T) {
	application, err := New(Stores{}, logger.NewNop())
	require.NoError(t, err)

	require.NoError(t, application.Attach(system.NoopService{ServiceName: "extra"}))
	assert.Error(t, application.Attach(system.NoopService{ServiceName: "users"}))

	names := make([]string, 0)
	for _, d := range application.Descriptors() {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{"users", "tasks"}, names)
}

type describedService struct {
	system.NoopService
}

func (describedService) Descriptor() service.Descriptor {
	return service.Descriptor{Name: "described", Layer: service.LayerBoundary}
}

func TestDescriptors_IncludeAttachedDescribers(t *testing.T) {
	application, err := New(Stores{}, logger.NewNop())
	require.NoError(t, err)
	require.NoError(t, application.Attach(describedService{system.NoopService{ServiceName: "described"}}))

	descriptors := application.Descriptors()
	require.Len(t, descriptors, 3)
	assert.Equal(t, "described", descriptors[2].Name)
}
