package session

import (
	"context"
)

// Keys of the persisted session layout. All values are strings.
const (
	AccessTokenKey  = "access_token"
	RefreshTokenKey = "refresh_token"
	UsernameKey     = "username"
)

// Keys lists every persisted session key, used when clearing a session.
var Keys = []string{AccessTokenKey, RefreshTokenKey, UsernameKey}

// Store is the durable mirror of the session. A Set or Delete must be visible to the next Get
// once it has returned.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

// Detached is the store used when there is no persistent context to attach to (for example a
// one-shot render). Reads find nothing and writes are discarded.
type Detached struct{}

var _ Store = Detached{}

func (Detached) Get(context.Context, string) (string, bool, error) { return "", false, nil }
func (Detached) Set(context.Context, string, string) error         { return nil }
func (Detached) Delete(context.Context, ...string) error           { return nil }
