package system

import (
	"context"

	"github.com/R3E-Network/tasktracker/internal/app/core/service"
)

// Service is a component started and stopped by the Manager. Start must not
// block; long-running work belongs in a goroutine that Stop tears down.
type Service interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// Describer is implemented by services that advertise a descriptor for
// health reporting.
type Describer interface {
	Descriptor() service.Descriptor
}
