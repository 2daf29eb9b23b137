// Package recovery implements the one-time-code password reset flow.
// Pending codes live in a Store keyed by role:roleId; a second request
// for the same key overwrites the earlier code.
package recovery

import (
	"context"
	"time"
)

// Entry is one pending reset code.
type Entry struct {
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Store holds pending reset codes. Get returns (nil, nil) when no entry
// exists for the key; expiry is the caller's concern, stores only hold
// what they were given.
type Store interface {
	Save(ctx context.Context, key string, e Entry) error
	Get(ctx context.Context, key string) (*Entry, error)
	Delete(ctx context.Context, key string) error
}

// Key builds the store key for a (role, roleId) pair.
func Key(roleID, role string) string {
	return role + ":" + roleID
}
