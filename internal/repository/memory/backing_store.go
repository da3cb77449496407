package memory

import (
	"context"

	"note-editor-be/internal/repository/contract"

	"github.com/patrickmn/go-cache"
)

// BackingStore is an in-memory durable-store stand-in. Used by unit tests and
// as a zero-dependency fallback backend.
type BackingStore struct {
	cache *cache.Cache
}

func NewBackingStore() *BackingStore {
	return &BackingStore{
		cache: cache.New(cache.NoExpiration, 0),
	}
}

var _ contract.BackingStore = (*BackingStore)(nil)

func (r *BackingStore) Get(ctx context.Context, key string) (string, bool, error) {
	if x, found := r.cache.Get(key); found {
		return x.(string), true, nil
	}
	return "", false, nil
}

func (r *BackingStore) Set(ctx context.Context, key, value string) error {
	r.cache.Set(key, value, cache.NoExpiration)
	return nil
}

func (r *BackingStore) Delete(ctx context.Context, key string) error {
	r.cache.Delete(key)
	return nil
}
