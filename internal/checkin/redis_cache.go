package checkin

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisScheduleCache memoizes date+program schedule resolutions in
// Redis.  Entries are short-lived: a showing's schedule id is stable,
// but a short TTL keeps a mis-resolution from sticking for the whole
// day.  All Redis failures degrade to a cache miss.
type RedisScheduleCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisScheduleCache wraps the given client.  Returns nil when the
// client is nil; callers must then leave Options.Cache unset so the
// coordinator sees a nil interface and skips memoization.
func NewRedisScheduleCache(rdb *redis.Client, ttl time.Duration) *RedisScheduleCache {
	if rdb == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisScheduleCache{rdb: rdb, ttl: ttl}
}

func scheduleKey(date string, programID uint64) string {
	return fmt.Sprintf("checkin:schedule:%s:%d", date, programID)
}

// Get looks up a cached schedule id.
func (c *RedisScheduleCache) Get(ctx context.Context, date string, programID uint64) (uint64, bool) {
	v, err := c.rdb.Get(ctx, scheduleKey(date, programID)).Result()
	if err != nil {
		return 0, false
	}
	id, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// Put stores a resolution.  Errors are ignored; the next resolution
// simply searches again.
func (c *RedisScheduleCache) Put(ctx context.Context, date string, programID uint64, scheduleID uint64) {
	_ = c.rdb.Set(ctx, scheduleKey(date, programID), strconv.FormatUint(scheduleID, 10), c.ttl).Err()
}
