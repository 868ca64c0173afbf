package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	dom "planhub/internal/domain"

	"github.com/redis/go-redis/v9"
)

const keyDaily = "plan:daily:"

// PlanCache caches a user's daily plan lines in Redis, keyed by calendar day.
type PlanCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewPlanCache returns a new PlanCache.
func NewPlanCache(rdb *redis.Client, ttl time.Duration) *PlanCache {
	return &PlanCache{rdb: rdb, ttl: ttl}
}

// GetDay returns the cached lines for (userID, day) or nil if miss.
func (c *PlanCache) GetDay(ctx context.Context, userID int64, day time.Time) ([]dom.DailyPlanLine, error) {
	b, err := c.rdb.Get(ctx, dayKey(userID, day)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var lines []dom.DailyPlanLine
	if err := json.Unmarshal(b, &lines); err != nil {
		return nil, err
	}
	return lines, nil
}

// SetDay stores the lines for (userID, day).
func (c *PlanCache) SetDay(ctx context.Context, userID int64, day time.Time, lines []dom.DailyPlanLine) error {
	b, err := json.Marshal(lines)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, dayKey(userID, day), b, c.ttl).Err()
}

// InvalidateDay removes the cached lines for (userID, day).
func (c *PlanCache) InvalidateDay(ctx context.Context, userID int64, day time.Time) error {
	return c.rdb.Del(ctx, dayKey(userID, day)).Err()
}

func dayKey(userID int64, day time.Time) string {
	return keyDaily + strconv.FormatInt(userID, 10) + ":" + day.Format("2006-01-02")
}
