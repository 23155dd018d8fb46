package utils

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ProgramMysticxxx/blog-project/access"
)

const (
	CACHE_PRINCIPAL_KEY_PREFIX  = "cache:principal:"
	CACHE_PRINCIPAL_EXPIRE_TIME = 30 * time.Minute
)

func principalKey(id uint) string {
	return CACHE_PRINCIPAL_KEY_PREFIX + strconv.FormatUint(uint64(id), 10)
}

// CachedPrincipal looks the principal of user id up in the cache. A nil client
// always misses.
func CachedPrincipal(ctx context.Context, rdb *redis.Client, id uint) (access.Principal, bool) {
	var p access.Principal
	if rdb == nil {
		return p, false
	}
	if err := rdb.HGetAll(ctx, principalKey(id)).Scan(&p); err != nil || p.ID != id {
		return access.Principal{}, false
	}
	return p, true
}

// CachePrincipal stores p and sets an expiration time.
func CachePrincipal(ctx context.Context, rdb *redis.Client, p access.Principal) {
	if rdb == nil {
		return
	}
	key := principalKey(p.ID)
	rdb.HSet(ctx, key, &p)
	rdb.Expire(ctx, key, CACHE_PRINCIPAL_EXPIRE_TIME)
}

// ForgetPrincipal drops the cached principal of user id.
func ForgetPrincipal(ctx context.Context, rdb *redis.Client, id uint) {
	if rdb == nil {
		return
	}
	rdb.Del(ctx, principalKey(id))
}
