package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/R3E-Network/tasktracker/internal/app/domain/task"
	"github.com/R3E-Network/tasktracker/internal/app/domain/user"
	apperrors "github.com/R3E-Network/tasktracker/internal/errors"
	"github.com/R3E-Network/tasktracker/pkg/logger"
	"github.com/R3E-Network/tasktracker/pkg/testutil"
)

// =============================================================================
// UserStore Tests
// =============================================================================

func TestUserStore_InsertAssignsID(t *testing.T) {
	store := NewUserStore(testutil.SequentialIDs("u"), logger.NewNop())
	ctx := context.Background()

	u, err := store.InsertUser(ctx, user.User{Username: "alice"})
	if err != nil {
		t.Fatalf("InsertUser: %v", err)
	}
	if u.ID != "u-1" {
		t.Errorf("ID = %q, want u-1", u.ID)
	}

	got, ok := store.GetUser(ctx, u.ID)
	if !ok {
		t.Fatal("GetUser: not found")
	}
	if got != u {
		t.Errorf("GetUser = %+v, want %+v", got, u)
	}
	if !store.ContainsUser(ctx, u.ID) {
		t.Error("ContainsUser should be true")
	}
	if store.ContainsUser(ctx, "missing") {
		t.Error("ContainsUser should be false for unknown id")
	}
	if store.CountUsers(ctx) != 1 {
		t.Errorf("CountUsers = %d, want 1", store.CountUsers(ctx))
	}
}

func TestUserStore_InsertDuplicate(t *testing.T) {
	store := NewUserStore(nil, logger.NewNop())
	ctx := context.Background()

	if _, err := store.InsertUser(ctx, user.User{ID: "fixed", Username: "a"}); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if _, err := store.InsertUser(ctx, user.User{ID: "fixed", Username: "b"}); err == nil {
		t.Fatal("expected duplicate insert to fail")
	}
	got, _ := store.GetUser(ctx, "fixed")
	if got.Username != "a" {
		t.Errorf("duplicate insert overwrote user: %+v", got)
	}
}

// =============================================================================
// TaskStore Tests
// =============================================================================

func TestTaskStore_AppendAndList(t *testing.T) {
	store := NewTaskStore(testutil.SequentialIDs("t"), logger.NewNop())
	ctx := context.Background()

	if _, ok := store.ListTasks(ctx, "u1"); ok {
		t.Fatal("ListTasks should report a missing sequence before first append")
	}

	for _, title := range []string{"a", "b", "c"} {
		if _, err := store.AppendTask(ctx, "u1", task.Task{Title: title, Status: task.StatusTodo}); err != nil {
			t.Fatalf("AppendTask(%s): %v", title, err)
		}
	}

	list, ok := store.ListTasks(ctx, "u1")
	if !ok {
		t.Fatal("ListTasks: sequence missing")
	}
	if len(list) != 3 {
		t.Fatalf("len = %d, want 3", len(list))
	}
	for i, want := range []string{"a", "b", "c"} {
		if list[i].Title != want {
			t.Errorf("list[%d].Title = %q, want %q", i, list[i].Title, want)
		}
		if list[i].ID != fmt.Sprintf("t-%d", i+1) {
			t.Errorf("list[%d].ID = %q", i, list[i].ID)
		}
	}
}

func TestTaskStore_ListReturnsCopy(t *testing.T) {
	store := NewTaskStore(nil, logger.NewNop())
	ctx := context.Background()

	created, _ := store.AppendTask(ctx, "u1", task.Task{Title: "orig"})
	list, _ := store.ListTasks(ctx, "u1")
	list[0].Title = "mutated"

	got, err := store.GetTask(ctx, "u1", created.ID)
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if got.Title != "orig" {
		t.Errorf("store was mutated through ListTasks result: %q", got.Title)
	}
}

func TestTaskStore_GetErrors(t *testing.T) {
	store := NewTaskStore(nil, logger.NewNop())
	ctx := context.Background()

	if _, err := store.GetTask(ctx, "nobody", "x"); !errors.Is(err, apperrors.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}

	store.AppendTask(ctx, "u1", task.Task{Title: "a"})
	if _, err := store.GetTask(ctx, "u1", "x"); !errors.Is(err, apperrors.ErrTaskNotFound) {
		t.Errorf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestTaskStore_UpdateInPlace(t *testing.T) {
	store := NewTaskStore(nil, logger.NewNop())
	ctx := context.Background()

	created, _ := store.AppendTask(ctx, "u1", task.Task{Title: "a", Description: "d", Status: task.StatusTodo})
	updated, err := store.UpdateTask(ctx, "u1", created.ID, func(t *task.Task) {
		t.Status = task.StatusDone
	})
	if err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if updated.Status != task.StatusDone || updated.Title != "a" || updated.Description != "d" {
		t.Errorf("unexpected update result: %+v", updated)
	}

	got, _ := store.GetTask(ctx, "u1", created.ID)
	if got != updated {
		t.Errorf("stored task = %+v, want %+v", got, updated)
	}

	if _, err := store.UpdateTask(ctx, "nobody", created.ID, func(*task.Task) {}); !errors.Is(err, apperrors.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := store.UpdateTask(ctx, "u1", "missing", func(*task.Task) {}); !errors.Is(err, apperrors.ErrTaskNotFound) {
		t.Errorf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestTaskStore_Remove(t *testing.T) {
	store := NewTaskStore(nil, logger.NewNop())
	ctx := context.Background()

	a, _ := store.AppendTask(ctx, "u1", task.Task{Title: "a"})
	b, _ := store.AppendTask(ctx, "u1", task.Task{Title: "b"})
	c, _ := store.AppendTask(ctx, "u1", task.Task{Title: "c"})

	if !store.RemoveTask(ctx, "u1", b.ID) {
		t.Fatal("RemoveTask should find b")
	}
	if store.RemoveTask(ctx, "u1", b.ID) {
		t.Fatal("RemoveTask should not find b twice")
	}
	if store.RemoveTask(ctx, "nobody", a.ID) {
		t.Fatal("RemoveTask should fail for a user without a sequence")
	}
	if _, ok := store.ListTasks(ctx, "nobody"); ok {
		t.Fatal("RemoveTask must not create a sequence")
	}

	list, _ := store.ListTasks(ctx, "u1")
	if len(list) != 2 || list[0].ID != a.ID || list[1].ID != c.ID {
		t.Fatalf("unexpected order after remove: %+v", list)
	}

	store.RemoveTask(ctx, "u1", a.ID)
	store.RemoveTask(ctx, "u1", c.ID)
	list, ok := store.ListTasks(ctx, "u1")
	if !ok {
		t.Fatal("emptied sequence should still exist")
	}
	if list == nil || len(list) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", list)
	}
	if store.CountTasks(ctx) != 0 {
		t.Errorf("CountTasks = %d, want 0", store.CountTasks(ctx))
	}
}

func TestTaskStore_ConcurrentAppends(t *testing.T) {
	store := NewTaskStore(nil, logger.NewNop())
	ctx := context.Background()
	const n = 100

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := store.AppendTask(ctx, "u1", task.Task{Title: fmt.Sprintf("t%d", i)}); err != nil {
				t.Errorf("AppendTask: %v", err)
			}
		}(i)
	}
	wg.Wait()

	list, _ := store.ListTasks(ctx, "u1")
	if len(list) != n {
		t.Fatalf("len = %d, want %d", len(list), n)
	}
	seen := make(map[string]bool, n)
	for _, tk := range list {
		if seen[tk.ID] {
			t.Fatalf("duplicate id %s", tk.ID)
		}
		seen[tk.ID] = true
	}
}

func TestTaskStore_PanicInCriticalSectionIsFatal(t *testing.T) {
	log := logger.NewNop()
	exitCode := 0
	log.SetExitFunc(func(code int) { exitCode = code })

	store := NewTaskStore(nil, log)
	ctx := context.Background()
	created, _ := store.AppendTask(ctx, "u1", task.Task{Title: "a"})

	store.UpdateTask(ctx, "u1", created.ID, func(t *task.Task) {
		t.Title = "half"
		panic("boom")
	})

	if exitCode != 1 {
		t.Fatalf("expected fatal exit, got code %d", exitCode)
	}
	got, err := store.GetTask(ctx, "u1", created.ID)
	if err != nil {
		t.Fatalf("GetTask after poison: %v", err)
	}
	if got.Title != "a" {
		t.Errorf("partial mutation leaked into store: %q", got.Title)
	}
}
