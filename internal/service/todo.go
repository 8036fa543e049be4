package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kellyw/taskdeck/internal/apperror"
	"github.com/kellyw/taskdeck/internal/model"
	"github.com/kellyw/taskdeck/internal/repository"
)

// CreateTodoInput carries the fields for a new todo. UserID comes from the
// authenticated session, never from the request body.
type CreateTodoInput struct {
	UserID      string
	Title       string
	Description string
	Priority    string
	DueDate     string
}

// TodoService handles todo business rules: validation and per-user scoping.
// Ownership checks against the session user live in the handler layer, which
// is the only place that knows who is asking.
type TodoService struct {
	todos  repository.TodoRepository
	logger *slog.Logger
}

func NewTodoService(todos repository.TodoRepository, logger *slog.Logger) *TodoService {
	return &TodoService{
		todos:  todos,
		logger: logger,
	}
}

// Create validates and stores a new todo for the given user.
func (s *TodoService) Create(ctx context.Context, in CreateTodoInput) (*model.Todo, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, apperror.ValidationFailed("title", "title is required")
	}
	if in.Priority != "" && !model.ValidPriority(in.Priority) {
		return nil, apperror.ValidationFailed("priority", fmt.Sprintf("priority must be one of %s, %s, %s", model.PriorityLow, model.PriorityMedium, model.PriorityHigh))
	}
	if in.UserID == "" {
		return nil, apperror.ValidationFailed("user_id", "user id is required")
	}

	todo, err := s.todos.Create(ctx, repository.CreateTodoParams{
		UserID:      in.UserID,
		Title:       in.Title,
		Description: in.Description,
		Priority:    in.Priority,
		DueDate:     in.DueDate,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("todo created",
		slog.String("todoID", todo.ID),
		slog.String("userID", todo.UserID),
	)
	return todo, nil
}

// ListByUser returns the todos belonging to one user, never nil.
func (s *TodoService) ListByUser(ctx context.Context, userID string) ([]model.Todo, error) {
	if userID == "" {
		return nil, apperror.ValidationFailed("user_id", "user id is required")
	}
	todos, err := s.todos.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing todos: %w", err)
	}
	return todos, nil
}

// GetByID returns the todo or ErrNotFound.
func (s *TodoService) GetByID(ctx context.Context, id string) (*model.Todo, error) {
	if id == "" {
		return nil, apperror.ValidationFailed("id", "todo id is required")
	}
	todo, err := s.todos.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if todo == nil {
		return nil, apperror.NotFound("todo", id)
	}
	return todo, nil
}

// Update applies a partial update after validating any priority change. The
// repository enforces the field allow-list.
func (s *TodoService) Update(ctx context.Context, id string, fields map[string]any) (*model.Todo, error) {
	if id == "" {
		return nil, apperror.ValidationFailed("id", "todo id is required")
	}
	if raw, ok := fields["priority"]; ok {
		p, ok := raw.(string)
		if !ok || !model.ValidPriority(p) {
			return nil, apperror.ValidationFailed("priority", fmt.Sprintf("priority must be one of %s, %s, %s", model.PriorityLow, model.PriorityMedium, model.PriorityHigh))
		}
	}
	if raw, ok := fields["title"]; ok {
		t, okStr := raw.(string)
		if !okStr || strings.TrimSpace(t) == "" {
			return nil, apperror.ValidationFailed("title", "title must be a non-empty string")
		}
		fields["title"] = strings.TrimSpace(t)
	}

	todo, err := s.todos.Update(ctx, id, fields)
	if err != nil {
		return nil, err
	}

	s.logger.Info("todo updated", slog.String("todoID", todo.ID))
	return todo, nil
}

// SetCompleted flips the completion flag.
func (s *TodoService) SetCompleted(ctx context.Context, id string, completed bool) (*model.Todo, error) {
	if id == "" {
		return nil, apperror.ValidationFailed("id", "todo id is required")
	}
	return s.todos.Update(ctx, id, map[string]any{"completed": completed})
}

// Delete removes the todo; deleting an absent id succeeds.
func (s *TodoService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperror.ValidationFailed("id", "todo id is required")
	}
	if err := s.todos.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("todo deleted", slog.String("todoID", id))
	return nil
}
