// Package repository declares the persistence interfaces the service layer
// programs against. The dynamo subpackage implements them; tests substitute
// mocks.
package repository

import (
	"context"

	"github.com/kellyw/taskdeck/internal/model"
)

// CreateUserParams carries the fields for direct registration. PasswordHash,
// when non-empty, is a bcrypt hash produced by the caller; the repository
// never sees plaintext.
type CreateUserParams struct {
	Username     string
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
}

// CreateOAuthUserParams carries the fields for OAuth sign-up. Uniqueness
// resolution (username derivation, email checks) is the caller's
// responsibility; the repository writes what it is given.
type CreateOAuthUserParams struct {
	Username       string
	Email          string
	FirstName      string
	LastName       string
	Provider       string
	OAuthID        string
	ProfilePicture string
}

// UserRepository is the user directory: accounts unique by id, username,
// email, and linked OAuth identity. Lookups return (nil, nil) when no user
// matches; absence is not an error.
type UserRepository interface {
	// Create enforces username and email uniqueness, username first.
	Create(ctx context.Context, p CreateUserParams) (*model.User, error)

	// CreateOAuth writes an OAuth-backed user without uniqueness checks.
	CreateOAuth(ctx context.Context, p CreateOAuthUserParams) (*model.User, error)

	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByOAuthIdentity(ctx context.Context, provider, oauthID string) (*model.User, error)

	// List returns all users, fully materialized.
	List(ctx context.Context) ([]model.User, error)

	// Update applies an allow-listed partial update (first_name, last_name,
	// email, is_active); unrecognized fields are silently dropped. An email
	// change is re-validated against all other users. Returns the full
	// post-update user. Absent id yields ErrNotFound.
	Update(ctx context.Context, id string, fields map[string]any) (*model.User, error)

	// Delete removes the user. Deleting an absent id succeeds.
	Delete(ctx context.Context, id string) error

	// LinkOAuthIdentity unconditionally overwrites the user's OAuth pair.
	LinkOAuthIdentity(ctx context.Context, id, provider, oauthID string) (*model.User, error)
}

// CreateTodoParams carries the fields for a new todo. Title must already be
// validated by the caller; Priority and Description default when empty.
type CreateTodoParams struct {
	UserID      string
	Title       string
	Description string
	Priority    string
	DueDate     string
}

// TodoRepository persists per-user task items.
type TodoRepository interface {
	Create(ctx context.Context, p CreateTodoParams) (*model.Todo, error)

	// ListByUser returns only todos owned by userID, in no guaranteed order.
	ListByUser(ctx context.Context, userID string) ([]model.Todo, error)

	GetByID(ctx context.Context, id string) (*model.Todo, error)

	// Update applies an allow-listed partial update (title, description,
	// completed, priority, due_date). Absent id yields ErrNotFound.
	Update(ctx context.Context, id string, fields map[string]any) (*model.Todo, error)

	// Delete removes the todo. Deleting an absent id succeeds.
	Delete(ctx context.Context, id string) error
}
