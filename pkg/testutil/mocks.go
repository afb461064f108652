// Package testutil provides common testing utilities and mock implementations.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/R3E-Network/tasktracker/internal/app/storage"
)

// MockUserChecker is a test implementation of the user existence check used
// by task creation.
type MockUserChecker struct {
	mu    sync.RWMutex
	users map[string]struct{}
	calls atomic.Int64
}

// NewMockUserChecker creates a checker that knows the given user IDs.
func NewMockUserChecker(userIDs ...string) *MockUserChecker {
	m := &MockUserChecker{users: make(map[string]struct{})}
	for _, id := range userIDs {
		m.users[id] = struct{}{}
	}
	return m
}

// AddUser registers a user ID.
func (m *MockUserChecker) AddUser(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[userID] = struct{}{}
}

// ContainsUser reports whether the user was registered.
func (m *MockUserChecker) ContainsUser(_ context.Context, userID string) bool {
	m.calls.Add(1)
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.users[userID]
	return ok
}

// Calls returns how many times ContainsUser was called.
func (m *MockUserChecker) Calls() int {
	return int(m.calls.Load())
}

// SequentialIDs returns a generator yielding prefix-1, prefix-2, ...
func SequentialIDs(prefix string) storage.IDGenerator {
	var n atomic.Int64
	return storage.IDGeneratorFunc(func() string {
		return fmt.Sprintf("%s-%d", prefix, n.Add(1))
	})
}
