package ports

import "context"

// Persisted session keys. They are independent keys, written and cleared by
// the Session Store only.
const (
	KeyAccessToken  = "accessToken"
	KeyRefreshToken = "refreshToken"
	KeyUser         = "user"
)

// SessionKeys lists every persisted key. Storage drivers renew the expiry of
// all of them on each write so they age out together.
var SessionKeys = []string{KeyAccessToken, KeyRefreshToken, KeyUser}

// SessionStorage is the durable key space of one browser session.
type SessionStorage interface {
	// Get returns the value stored under key and whether it exists.
	Get(ctx context.Context, key string) (string, bool, error)
	// SetMany writes all values in a single atomic step and renews the expiry
	// of every key in SessionKeys.
	SetMany(ctx context.Context, values map[string]string) error
	// Delete removes keys; missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error
}

// StorageProvider opens the key space of the session identified by sid.
type StorageProvider interface {
	Session(sid string) SessionStorage
}
