package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
)

const availabilityTTL = 60 * time.Second

// AvailabilityCache keeps rendered availability responses per
// (specialist, date) in Redis. Bookings and cancellations invalidate the
// affected day. All operations are best-effort: a Redis failure degrades to a
// cache miss, never to a request failure.
type AvailabilityCache struct {
	rdb *redis.Client
}

// NewAvailabilityCache returns nil when addr is empty; callers treat a nil
// cache as disabled.
func NewAvailabilityCache(addr, password string, db int) *AvailabilityCache {
	if addr == "" {
		return nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &AvailabilityCache{rdb: rdb}
}

func (c *AvailabilityCache) Get(ctx context.Context, specialistID uint, date string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}

	payload, err := c.rdb.Get(ctx, key(specialistID, date)).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Println("availability cache get:", err)
		}
		return nil, false
	}

	return payload, true
}

func (c *AvailabilityCache) Set(ctx context.Context, specialistID uint, date string, payload []byte) {
	if c == nil {
		return
	}

	if err := c.rdb.Set(ctx, key(specialistID, date), payload, availabilityTTL).Err(); err != nil {
		log.Println("availability cache set:", err)
	}
}

func (c *AvailabilityCache) Invalidate(ctx context.Context, specialistID uint, date string) {
	if c == nil {
		return
	}

	if err := c.rdb.Del(ctx, key(specialistID, date)).Err(); err != nil {
		log.Println("availability cache invalidate:", err)
	}
}

func key(specialistID uint, date string) string {
	return fmt.Sprintf("availability:%d:%s", specialistID, date)
}
