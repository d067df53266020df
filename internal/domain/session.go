package domain

import (
	"context"
	"time"
)

// Keys written into a client session.
const (
	SessionKeyUserID   = "user_id"
	SessionKeyUserRole = "user_role"
)

// Session is a key-value store scoped to one client session.
type Session interface {
	ID() string
	// Get returns the value stored under key; ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	// Invalidate discards the whole session. Later calls behave as on an empty session.
	Invalidate(ctx context.Context) error
}

// SessionStore creates and loads sessions.
type SessionStore interface {
	New(ctx context.Context) (Session, error)
	// Load returns ErrNotFound when the session is unknown or expired.
	Load(ctx context.Context, id string) (Session, error)
}

// TokenIssuer issues signed tokens (e.g. JWT) that carry a session id to the client.
type TokenIssuer interface {
	Issue(sessionID string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns the session id it carries.
type TokenVerifier interface {
	Verify(token string) (sessionID string, err error)
}
