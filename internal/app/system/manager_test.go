package system

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingService struct {
	name     string
	startErr error
	stopErr  error
	log      *[]string
}

func (r recordingService) Name() string { return r.name }

func (r recordingService) Start(context.Context) error {
	*r.log = append(*r.log, "start:"+r.name)
	return r.startErr
}

func (r recordingService) Stop(context.Context) error {
	*r.log = append(*r.log, "stop:"+r.name)
	return r.stopErr
}

func TestManager_StartStopOrder(t *testing.T) {
	var log []string
	m := NewManager()
	for _, name := range []string{"a", "b", "c"} {
		require.NoError(t, m.Register(recordingService{name: name, log: &log}))
	}

	require.NoError(t, m.Start(context.Background()))
	require.NoError(t, m.Stop(context.Background()))

	assert.Equal(t, []string{"start:a", "start:b", "start:c", "stop:c", "stop:b", "stop:a"}, log)
}

func TestManager_RegisterRejectsDuplicatesAndLateRegistration(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.Register(NoopService{ServiceName: "users"}))
	assert.Error(t, m.Register(NoopService{ServiceName: "users"}))
	assert.Error(t, m.Register(nil))

	require.NoError(t, m.Start(context.Background()))
	assert.Error(t, m.Register(NoopService{ServiceName: "late"}))
	assert.Len(t, m.Services(), 1)
}

func TestManager_StartFailureRollsBack(t *testing.T) {
	var log []string
	m := NewManager()
	require.NoError(t, m.Register(recordingService{name: "a", log: &log}))
	require.NoError(t, m.Register(recordingService{name: "b", startErr: errors.New("boom"), log: &log}))
	require.NoError(t, m.Register(recordingService{name: "c", log: &log}))

	err := m.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "start b")
	assert.Equal(t, []string{"start:a", "start:b", "stop:a"}, log)
}

func TestManager_StopCollectsErrors(t *testing.T) {
	var log []string
	m := NewManager()
	require.NoError(t, m.Register(recordingService{name: "a", stopErr: errors.New("a failed"), log: &log}))
	require.NoError(t, m.Register(recordingService{name: "b", log: &log}))
	require.NoError(t, m.Start(context.Background()))

	err := m.Stop(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stop a")
	assert.Equal(t, []string{"start:a", "start:b", "stop:b", "stop:a"}, log)
}
