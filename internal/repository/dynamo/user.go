package dynamo

import (
	"context"
	"encoding/binary"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/kellyw/taskdeck/internal/apperror"
	"github.com/kellyw/taskdeck/internal/model"
	"github.com/kellyw/taskdeck/internal/repository"
	"github.com/kellyw/taskdeck/internal/store"
)

// userUpdateFields is the allow-list for partial user updates. Anything else
// in the caller's field map is silently dropped.
var userUpdateFields = map[string]bool{
	"first_name": true,
	"last_name":  true,
	"email":      true,
	"is_active":  true,
}

// UserRepo implements repository.UserRepository against the users table.
type UserRepo struct {
	table table
}

var _ repository.UserRepository = (*UserRepo)(nil)

func NewUserRepo(t *store.Table) *UserRepo {
	return &UserRepo{table: t}
}

// Create registers a new user. The uniqueness checks are two point lookups
// followed by the write; concurrent registrations racing on the same
// username or email can both pass the check. The store cannot index-enforce
// uniqueness on non-key attributes, so this window is accepted and detected
// after the fact rather than prevented.
func (r *UserRepo) Create(ctx context.Context, p repository.CreateUserParams) (*model.User, error) {
	if existing, err := r.GetByUsername(ctx, p.Username); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, apperror.DuplicateUsername(p.Username)
	}

	if existing, err := r.GetByEmail(ctx, p.Email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, apperror.DuplicateEmail(p.Email)
	}

	item := store.Item{
		"id":         newUserID(),
		"username":   p.Username,
		"email":      p.Email,
		"first_name": p.FirstName,
		"last_name":  p.LastName,
		"created_at": now(),
		"is_active":  true,
	}
	if p.PasswordHash != "" {
		item["password_hash"] = p.PasswordHash
	}

	if err := r.table.PutIfAbsent(ctx, item); err != nil {
		return nil, fmt.Errorf("dynamo: creating user %q: %w", p.Username, err)
	}

	user := model.UserFromItem(item)
	return &user, nil
}

// CreateOAuth writes an OAuth-backed user. No uniqueness checks here: the
// sign-in flow resolves the username before calling and matches on email
// beforehand, so re-checking would only duplicate its lookups.
func (r *UserRepo) CreateOAuth(ctx context.Context, p repository.CreateOAuthUserParams) (*model.User, error) {
	item := store.Item{
		"id":              newUserID(),
		"username":        p.Username,
		"email":           p.Email,
		"first_name":      p.FirstName,
		"last_name":       p.LastName,
		"created_at":      now(),
		"is_active":       true,
		"oauth_provider":  p.Provider,
		"oauth_id":        p.OAuthID,
		"oauth_key":       oauthKey(p.Provider, p.OAuthID),
		"profile_picture": p.ProfilePicture,
	}

	if err := r.table.PutIfAbsent(ctx, item); err != nil {
		return nil, fmt.Errorf("dynamo: creating OAuth user %q: %w", p.Username, err)
	}

	user := model.UserFromItem(item)
	return &user, nil
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	item, err := r.table.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("dynamo: getting user %s: %w", id, err)
	}
	return userOrNil(item), nil
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.queryOne(ctx, UsernameIndex, username)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.queryOne(ctx, EmailIndex, email)
}

// GetByOAuthIdentity looks up a user by external identity through the
// composite-key index.
func (r *UserRepo) GetByOAuthIdentity(ctx context.Context, provider, oauthID string) (*model.User, error) {
	return r.queryOne(ctx, OAuthKeyIndex, oauthKey(provider, oauthID))
}

// List scans the whole table; the adapter pages through to exhaustion.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	items, err := r.table.Scan(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("dynamo: listing users: %w", err)
	}

	users := make([]model.User, 0, len(items))
	for _, item := range items {
		users = append(users, model.UserFromItem(item))
	}
	return users, nil
}

// Update applies the allow-listed fields and stamps updated_at. An email
// change is checked against every user except the one being updated, so
// setting the email a user already has is never a conflict.
func (r *UserRepo) Update(ctx context.Context, id string, fields map[string]any) (*model.User, error) {
	existing, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, apperror.NotFound("user", id)
	}

	assigns := map[string]any{"updated_at": now()}
	for field, value := range fields {
		if userUpdateFields[field] {
			assigns[field] = value
		}
	}

	if email, ok := assigns["email"].(string); ok && email != existing.Email {
		owner, err := r.GetByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		if owner != nil && owner.ID != existing.ID {
			return nil, apperror.DuplicateEmail(email)
		}
	}

	item, err := r.table.Update(ctx, id, assigns)
	if err != nil {
		return nil, fmt.Errorf("dynamo: updating user %s: %w", id, err)
	}

	user := model.UserFromItem(item)
	return &user, nil
}

// Delete removes the user. Already-absent ids succeed; delete is idempotent
// for both entity kinds.
func (r *UserRepo) Delete(ctx context.Context, id string) error {
	if err := r.table.Delete(ctx, id); err != nil {
		return fmt.Errorf("dynamo: deleting user %s: %w", id, err)
	}
	return nil
}

// LinkOAuthIdentity overwrites the user's OAuth pair unconditionally and
// stamps updated_at. The composite oauth_key keeps the identity index in
// step with the pair.
func (r *UserRepo) LinkOAuthIdentity(ctx context.Context, id, provider, oauthID string) (*model.User, error) {
	item, err := r.table.Update(ctx, id, map[string]any{
		"oauth_provider": provider,
		"oauth_id":       oauthID,
		"oauth_key":      oauthKey(provider, oauthID),
		"updated_at":     now(),
	})
	if err != nil {
		return nil, fmt.Errorf("dynamo: linking OAuth identity for user %s: %w", id, err)
	}

	user := model.UserFromItem(item)
	return &user, nil
}

func (r *UserRepo) queryOne(ctx context.Context, index, value string) (*model.User, error) {
	items, err := r.table.Query(ctx, index, value)
	if err != nil {
		return nil, fmt.Errorf("dynamo: querying %s: %w", index, err)
	}
	if len(items) == 0 {
		return nil, nil
	}
	return userOrNil(items[0]), nil
}

func userOrNil(item store.Item) *model.User {
	if item == nil {
		return nil
	}
	user := model.UserFromItem(item)
	return &user
}

// oauthKey builds the composite attribute behind the oauth-key-index.
// Provider names never contain '#'.
func oauthKey(provider, oauthID string) string {
	return provider + "#" + oauthID
}

// newUserID generates a 10-digit numeric id derived from a random UUID, so
// the public shape can expose ids as integers while the store keys stay
// strings.
func newUserID() string {
	u := uuid.New()
	n := binary.BigEndian.Uint64(u[:8])
	return strconv.FormatUint(n%9_000_000_000+1_000_000_000, 10)
}
