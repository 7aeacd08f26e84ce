// file: service/cache.go

package service

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// ICacheClient defines the contract for the consumed-token marker store.
// This abstraction decouples the ResetService from a concrete Redis
// implementation, enabling easier testing and future flexibility.
type ICacheClient interface {
	// SetNX must be atomic: exactly one of any number of concurrent calls
	// with the same key may succeed.
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
}
