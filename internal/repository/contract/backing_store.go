package contract

import "context"

// BackingStore is the durable key-value collaborator behind the persistent
// store. Capacity and availability are outside this system's control; errors
// propagate to the caller and are never retried here.
type BackingStore interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
