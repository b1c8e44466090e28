package ports

import (
	"context"

	"github.com/bnema/vault-kv-cli/internal/domain"
)

// KeyValueStore persists one opaque string state per name in a remote store.
// GetValue reports found=false with a nil error when the name is absent.
// Values must be valid UTF-8; SetValue rejects anything else before any
// write, since the store carries states as JSON strings.
type KeyValueStore interface {
	SetValue(ctx context.Context, name string, value string) error
	GetValue(ctx context.Context, name string) (value string, found bool, err error)
}

type KeyValueStoreFactory func(target domain.Target) KeyValueStore
