package metadata

import (
	"context"
)

// Repository is a flat key-value table. Values are opaque bytes; callers
// layer JSON or plain strings on top.
type Repository interface {
	// Get returns (nil, nil) when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
