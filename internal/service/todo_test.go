package service

import (
	"context"
	"errors"
	"testing"

	"github.com/kellyw/taskdeck/internal/apperror"
	"github.com/kellyw/taskdeck/internal/model"
)

func newTestTodoService(repo *mockTodoRepo) *TodoService {
	return NewTodoService(repo, discardLogger())
}

func TestTodoCreate_Defaults(t *testing.T) {
	svc := newTestTodoService(newMockTodoRepo())

	todo, err := svc.Create(context.Background(), CreateTodoInput{
		UserID: "1234567890",
		Title:  "  buy milk  ",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if todo.Title != "buy milk" {
		t.Errorf("Title = %q, want trimmed %q", todo.Title, "buy milk")
	}
	if todo.Priority != model.PriorityMedium {
		t.Errorf("Priority = %q, want %q", todo.Priority, model.PriorityMedium)
	}
	if todo.Completed {
		t.Error("new todo should not be completed")
	}
}

func TestTodoCreate_Validation(t *testing.T) {
	svc := newTestTodoService(newMockTodoRepo())

	cases := []struct {
		name string
		in   CreateTodoInput
	}{
		{"empty title", CreateTodoInput{UserID: "u1"}},
		{"whitespace title", CreateTodoInput{UserID: "u1", Title: "   "}},
		{"bad priority", CreateTodoInput{UserID: "u1", Title: "x", Priority: "urgent"}},
		{"missing user", CreateTodoInput{Title: "x"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Create(context.Background(), tc.in); !errors.Is(err, apperror.ErrValidation) {
				t.Errorf("Create() error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestTodoUpdate_RejectsBadPriority(t *testing.T) {
	repo := newMockTodoRepo()
	svc := newTestTodoService(repo)

	todo, err := svc.Create(context.Background(), CreateTodoInput{UserID: "u1", Title: "x"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	_, err = svc.Update(context.Background(), todo.ID, map[string]any{"priority": "asap"})
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("Update() error = %v, want ErrValidation", err)
	}
}

func TestTodoUpdate_RejectsBlankTitle(t *testing.T) {
	repo := newMockTodoRepo()
	svc := newTestTodoService(repo)

	todo, err := svc.Create(context.Background(), CreateTodoInput{UserID: "u1", Title: "x"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	_, err = svc.Update(context.Background(), todo.ID, map[string]any{"title": "   "})
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("Update() error = %v, want ErrValidation", err)
	}
}

func TestTodoSetCompleted(t *testing.T) {
	repo := newMockTodoRepo()
	svc := newTestTodoService(repo)

	todo, err := svc.Create(context.Background(), CreateTodoInput{UserID: "u1", Title: "x"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	done, err := svc.SetCompleted(context.Background(), todo.ID, true)
	if err != nil {
		t.Fatalf("SetCompleted() error = %v", err)
	}
	if !done.Completed {
		t.Error("todo should be completed")
	}
	if done.UpdatedAt == nil {
		t.Error("UpdatedAt should be stamped on completion")
	}

	undone, err := svc.SetCompleted(context.Background(), todo.ID, false)
	if err != nil {
		t.Fatalf("SetCompleted(false) error = %v", err)
	}
	if undone.Completed {
		t.Error("todo should be reopened")
	}
}

func TestTodoListByUser_Empty(t *testing.T) {
	svc := newTestTodoService(newMockTodoRepo())

	todos, err := svc.ListByUser(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("ListByUser() error = %v", err)
	}
	if todos == nil {
		t.Fatal("ListByUser() should return an empty slice, not nil")
	}
	if len(todos) != 0 {
		t.Errorf("len = %d, want 0", len(todos))
	}
}

func TestTodoGetByID_NotFound(t *testing.T) {
	svc := newTestTodoService(newMockTodoRepo())

	_, err := svc.GetByID(context.Background(), "missing")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestTodoDelete_Idempotent(t *testing.T) {
	repo := newMockTodoRepo()
	svc := newTestTodoService(repo)

	todo, err := svc.Create(context.Background(), CreateTodoInput{UserID: "u1", Title: "x"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := svc.Delete(context.Background(), todo.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := svc.Delete(context.Background(), todo.ID); err != nil {
		t.Errorf("second Delete() error = %v, want nil", err)
	}
}
