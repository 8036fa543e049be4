// Package dynamo implements the repository interfaces on top of the
// key-value table adapter. One table per entity kind: users (secondary
// indexes on username, email, and the composite oauth_key) and todos
// (secondary index on user_id).
package dynamo

import (
	"context"
	"time"

	"github.com/kellyw/taskdeck/internal/store"
)

// Index names and their key attributes. The oauth-key-index serves OAuth
// identity lookups through a composite attribute instead of a table scan.
const (
	UsernameIndex = "username-index"
	EmailIndex    = "email-index"
	OAuthKeyIndex = "oauth-key-index"
	UserIDIndex   = "user-id-index"
)

// UserIndexes returns the secondary-index configuration of the users table.
func UserIndexes() map[string]string {
	return map[string]string{
		UsernameIndex: "username",
		EmailIndex:    "email",
		OAuthKeyIndex: "oauth_key",
	}
}

// TodoIndexes returns the secondary-index configuration of the todos table.
func TodoIndexes() map[string]string {
	return map[string]string{
		UserIDIndex: "user_id",
	}
}

// table is the adapter surface the repositories depend on. *store.Table
// satisfies it in production; tests use an in-memory fake.
type table interface {
	Put(ctx context.Context, item store.Item) error
	PutIfAbsent(ctx context.Context, item store.Item) error
	Get(ctx context.Context, id string) (store.Item, error)
	Query(ctx context.Context, indexName, value string) ([]store.Item, error)
	Scan(ctx context.Context, filter map[string]string) ([]store.Item, error)
	Update(ctx context.Context, id string, assigns map[string]any) (store.Item, error)
	Delete(ctx context.Context, id string) error
}

// now returns the current UTC time in RFC 3339, the timestamp format of
// every record. Overridable in tests.
var now = func() string {
	return time.Now().UTC().Format(time.RFC3339)
}
