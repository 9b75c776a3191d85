package usecase

import (
	"context"
	"time"
)

// MemberCache is the slice of the cache layer the usecases need. Implemented
// by *cache.Cache; tests pass fakes.
type MemberCache interface {
	Get(ctx context.Context, key string, dest any) bool
	Set(ctx context.Context, key string, value any, ttl time.Duration)
	Invalidate(ctx context.Context, key string)
	InvalidatePattern(ctx context.Context, pattern string)
}
