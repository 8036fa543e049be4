package dynamo

import (
	"context"
	"fmt"

	"github.com/rs/xid"

	"github.com/kellyw/taskdeck/internal/model"
	"github.com/kellyw/taskdeck/internal/repository"
	"github.com/kellyw/taskdeck/internal/store"
)

var todoUpdateFields = map[string]bool{
	"title":       true,
	"description": true,
	"completed":   true,
	"priority":    true,
	"due_date":    true,
}

// TodoRepo implements repository.TodoRepository against the todos table.
type TodoRepo struct {
	table table
}

var _ repository.TodoRepository = (*TodoRepo)(nil)

func NewTodoRepo(t *store.Table) *TodoRepo {
	return &TodoRepo{table: t}
}

// Create writes a new todo with the documented defaults: empty description,
// not completed, medium priority. DueDate is stored as given; format
// validation is the caller's concern.
func (r *TodoRepo) Create(ctx context.Context, p repository.CreateTodoParams) (*model.Todo, error) {
	priority := p.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}

	item := store.Item{
		"id":          xid.New().String(),
		"user_id":     p.UserID,
		"title":       p.Title,
		"description": p.Description,
		"completed":   false,
		"priority":    priority,
		"created_at":  now(),
	}
	if p.DueDate != "" {
		item["due_date"] = p.DueDate
	}

	if err := r.table.PutIfAbsent(ctx, item); err != nil {
		return nil, fmt.Errorf("dynamo: creating todo for user %s: %w", p.UserID, err)
	}

	todo := model.TodoFromItem(item)
	return &todo, nil
}

// ListByUser queries the owner index. No todos is an empty slice, not an
// error.
func (r *TodoRepo) ListByUser(ctx context.Context, userID string) ([]model.Todo, error) {
	items, err := r.table.Query(ctx, UserIDIndex, userID)
	if err != nil {
		return nil, fmt.Errorf("dynamo: listing todos for user %s: %w", userID, err)
	}

	todos := make([]model.Todo, 0, len(items))
	for _, item := range items {
		todos = append(todos, model.TodoFromItem(item))
	}
	return todos, nil
}

func (r *TodoRepo) GetByID(ctx context.Context, id string) (*model.Todo, error) {
	item, err := r.table.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("dynamo: getting todo %s: %w", id, err)
	}
	if item == nil {
		return nil, nil
	}

	todo := model.TodoFromItem(item)
	return &todo, nil
}

// Update applies the allow-listed fields and stamps updated_at. The write is
// conditioned on existence, so an absent id surfaces as ErrNotFound.
func (r *TodoRepo) Update(ctx context.Context, id string, fields map[string]any) (*model.Todo, error) {
	assigns := map[string]any{"updated_at": now()}
	for field, value := range fields {
		if todoUpdateFields[field] {
			assigns[field] = value
		}
	}

	item, err := r.table.Update(ctx, id, assigns)
	if err != nil {
		return nil, fmt.Errorf("dynamo: updating todo %s: %w", id, err)
	}

	todo := model.TodoFromItem(item)
	return &todo, nil
}

// Delete removes the todo; deleting an absent id succeeds.
func (r *TodoRepo) Delete(ctx context.Context, id string) error {
	if err := r.table.Delete(ctx, id); err != nil {
		return fmt.Errorf("dynamo: deleting todo %s: %w", id, err)
	}
	return nil
}
