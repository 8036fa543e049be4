// Package model defines the entities persisted in the key-value store and
// the translators that normalize raw store records into them.
package model

import "strconv"

// User represents a registered account.
//
// Records are keyed in the store by a 10-digit numeric string; the public
// shape exposes the id as an integer, so the translator coerces it. UpdatedAt
// is nil until the first mutation and is stamped on every one after that.
// A user may have at most one linked OAuth identity (provider + subject id).
type User struct {
	ID             int64   `json:"id"`
	Username       string  `json:"username"`
	Email          string  `json:"email"`
	FirstName      string  `json:"first_name"`
	LastName       string  `json:"last_name"`
	IsActive       bool    `json:"is_active"`
	OAuthProvider  string  `json:"oauth_provider"`
	OAuthID        string  `json:"oauth_id"`
	ProfilePicture string  `json:"profile_picture"`
	CreatedAt      string  `json:"created_at"`
	UpdatedAt      *string `json:"updated_at"`

	// PasswordHash is the bcrypt hash for password sign-in. Empty for
	// OAuth-only accounts. Never serialized.
	PasswordHash string `json:"-"`
}

// Key returns the user's primary key as stored (decimal string).
func (u *User) Key() string {
	return strconv.FormatInt(u.ID, 10)
}

// UserFromItem translates a raw store record into a User, filling defaults
// for absent fields. It is total: a nil or empty item yields a zero User,
// and malformed attribute values fall back to their defaults.
func UserFromItem(item map[string]any) User {
	if len(item) == 0 {
		return User{}
	}

	return User{
		ID:             itemInt64(item, "id"),
		Username:       itemString(item, "username"),
		Email:          itemString(item, "email"),
		FirstName:      itemString(item, "first_name"),
		LastName:       itemString(item, "last_name"),
		IsActive:       itemBool(item, "is_active", true),
		OAuthProvider:  itemString(item, "oauth_provider"),
		OAuthID:        itemString(item, "oauth_id"),
		ProfilePicture: itemString(item, "profile_picture"),
		CreatedAt:      itemString(item, "created_at"),
		UpdatedAt:      itemOptString(item, "updated_at"),
		PasswordHash:   itemString(item, "password_hash"),
	}
}

func itemString(item map[string]any, key string) string {
	if s, ok := item[key].(string); ok {
		return s
	}
	return ""
}

// itemOptString distinguishes "never set" from a real value: absent, null,
// and empty all translate to nil.
func itemOptString(item map[string]any, key string) *string {
	if s, ok := item[key].(string); ok && s != "" {
		return &s
	}
	return nil
}

func itemBool(item map[string]any, key string, def bool) bool {
	if b, ok := item[key].(bool); ok {
		return b
	}
	return def
}

// itemInt64 coerces a numeric id stored either as a string (the table's key
// type) or as a number (attributevalue unmarshals N into float64).
func itemInt64(item map[string]any, key string) int64 {
	switch v := item[key].(type) {
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0
		}
		return n
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	default:
		return 0
	}
}
