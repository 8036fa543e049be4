package service

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/kellyw/taskdeck/internal/apperror"
	"github.com/kellyw/taskdeck/internal/model"
	"github.com/kellyw/taskdeck/internal/repository"
)

// mockUserRepo is an in-memory UserRepository with the same observable
// semantics as the dynamo implementation: (nil, nil) on absent lookups,
// uniqueness checks on Create, allow-listed updates, idempotent deletes.
type mockUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[string]*model.User
}

var _ repository.UserRepository = (*mockUserRepo)(nil)

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{nextID: 1000000000, users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(ctx context.Context, p repository.CreateUserParams) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Username == p.Username {
			return nil, apperror.DuplicateUsername(p.Username)
		}
	}
	for _, u := range m.users {
		if u.Email == p.Email {
			return nil, apperror.DuplicateEmail(p.Email)
		}
	}

	u := &model.User{
		ID:           m.nextID,
		Username:     p.Username,
		Email:        p.Email,
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		IsActive:     true,
		PasswordHash: p.PasswordHash,
		CreatedAt:    time.Now().UTC().Format(time.RFC3339),
	}
	m.nextID++
	m.users[u.Key()] = u
	cp := *u
	return &cp, nil
}

func (m *mockUserRepo) CreateOAuth(ctx context.Context, p repository.CreateOAuthUserParams) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u := &model.User{
		ID:             m.nextID,
		Username:       p.Username,
		Email:          p.Email,
		FirstName:      p.FirstName,
		LastName:       p.LastName,
		IsActive:       true,
		OAuthProvider:  p.Provider,
		OAuthID:        p.OAuthID,
		ProfilePicture: p.ProfilePicture,
		CreatedAt:      time.Now().UTC().Format(time.RFC3339),
	}
	m.nextID++
	m.users[u.Key()] = u
	cp := *u
	return &cp, nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepo) GetByOAuthIdentity(ctx context.Context, provider, oauthID string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.OAuthProvider == provider && u.OAuthID == oauthID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepo) List(ctx context.Context) ([]model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, *u)
	}
	return out, nil
}

func (m *mockUserRepo) Update(ctx context.Context, id string, fields map[string]any) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	if v, ok := fields["first_name"].(string); ok {
		u.FirstName = v
	}
	if v, ok := fields["last_name"].(string); ok {
		u.LastName = v
	}
	if v, ok := fields["email"].(string); ok {
		for _, other := range m.users {
			if other.Email == v && other.ID != u.ID {
				return nil, apperror.DuplicateEmail(v)
			}
		}
		u.Email = v
	}
	if v, ok := fields["is_active"].(bool); ok {
		u.IsActive = v
	}
	now := time.Now().UTC().Format(time.RFC3339)
	u.UpdatedAt = &now
	cp := *u
	return &cp, nil
}

func (m *mockUserRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, id)
	return nil
}

func (m *mockUserRepo) LinkOAuthIdentity(ctx context.Context, id, provider, oauthID string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	u.OAuthProvider = provider
	u.OAuthID = oauthID
	now := time.Now().UTC().Format(time.RFC3339)
	u.UpdatedAt = &now
	cp := *u
	return &cp, nil
}

func createUserParamsForEmail(username, email string) repository.CreateUserParams {
	return repository.CreateUserParams{
		Username:  username,
		Email:     email,
		FirstName: "Test",
		LastName:  "User",
	}
}

func createOAuthParamsForEmail(username, email string) repository.CreateOAuthUserParams {
	return repository.CreateOAuthUserParams{
		Username: username,
		Email:    email,
		Provider: "google",
		OAuthID:  "oauth-" + username,
	}
}

// mockTodoRepo is an in-memory TodoRepository.
type mockTodoRepo struct {
	mu     sync.Mutex
	nextID int
	todos  map[string]*model.Todo
}

var _ repository.TodoRepository = (*mockTodoRepo)(nil)

func newMockTodoRepo() *mockTodoRepo {
	return &mockTodoRepo{todos: make(map[string]*model.Todo)}
}

func (m *mockTodoRepo) Create(ctx context.Context, p repository.CreateTodoParams) (*model.Todo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	t := &model.Todo{
		ID:          "todo-" + strconv.Itoa(m.nextID),
		UserID:      p.UserID,
		Title:       p.Title,
		Description: p.Description,
		Priority:    p.Priority,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
	}
	if t.Priority == "" {
		t.Priority = model.PriorityMedium
	}
	if p.DueDate != "" {
		due := p.DueDate
		t.DueDate = &due
	}
	m.todos[t.ID] = t
	cp := *t
	return &cp, nil
}

func (m *mockTodoRepo) ListByUser(ctx context.Context, userID string) ([]model.Todo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Todo, 0)
	for _, t := range m.todos {
		if t.UserID == userID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (m *mockTodoRepo) GetByID(ctx context.Context, id string) (*model.Todo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.todos[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, nil
}

func (m *mockTodoRepo) Update(ctx context.Context, id string, fields map[string]any) (*model.Todo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.todos[id]
	if !ok {
		return nil, apperror.NotFound("todo", id)
	}
	if v, ok := fields["title"].(string); ok {
		t.Title = v
	}
	if v, ok := fields["description"].(string); ok {
		t.Description = v
	}
	if v, ok := fields["completed"].(bool); ok {
		t.Completed = v
	}
	if v, ok := fields["priority"].(string); ok {
		t.Priority = v
	}
	if v, ok := fields["due_date"].(string); ok {
		t.DueDate = &v
	}
	now := time.Now().UTC().Format(time.RFC3339)
	t.UpdatedAt = &now
	cp := *t
	return &cp, nil
}

func (m *mockTodoRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.todos, id)
	return nil
}
