package vault

import (
	"context"
	"errors"

	"github.com/bnema/vault-kv-cli/internal/ports"
)

// ErrKeyValueNotFound is returned by HostStore.Value for an absent key.
var ErrKeyValueNotFound = errors.New("value for key not found")

// HostStore exposes a ports.KeyValueStore through the byte-oriented
// Value/SetValue shape that blockchain client SDKs expect of their
// credential store. Those interfaces carry no context, so each call is
// bounded only by the wrapped store's own timeout.
type HostStore struct {
	store ports.KeyValueStore
}

func NewHostStore(store ports.KeyValueStore) *HostStore {
	return &HostStore{store: store}
}

func (h *HostStore) Value(key string) ([]byte, error) {
	value, found, err := h.store.GetValue(context.Background(), key)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrKeyValueNotFound
	}

	return []byte(value), nil
}

func (h *HostStore) SetValue(key string, value []byte) error {
	return h.store.SetValue(context.Background(), key, string(value))
}
