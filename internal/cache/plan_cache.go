package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"mkhwan/coach-app/internal/config"
	"mkhwan/coach-app/internal/service"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const planKeyPrefix = "plan:"

// planCache is a Redis-backed service.PlanCache. Every operation is best
// effort; failures are logged and the caller proceeds without the cache.
type planCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewPlanCache connects to Redis and returns a plan cache. The connection
// is verified with a ping so a misconfigured address fails at startup.
func NewPlanCache(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) (service.PlanCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	ttl := cfg.PlanTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}

	return &planCache{client: client, ttl: ttl, logger: logger}, nil
}

func (c *planCache) GetPlan(ctx context.Context, programID string) (*service.ProgramPlan, bool) {
	data, err := c.client.Get(ctx, planKeyPrefix+programID).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("plan cache read failed", zap.String("programId", programID), zap.Error(err))
		}
		return nil, false
	}

	var plan service.ProgramPlan
	if err := json.Unmarshal(data, &plan); err != nil {
		c.logger.Warn("plan cache entry corrupt", zap.String("programId", programID), zap.Error(err))
		c.client.Del(ctx, planKeyPrefix+programID)
		return nil, false
	}
	return &plan, true
}

func (c *planCache) SetPlan(ctx context.Context, programID string, plan *service.ProgramPlan) {
	data, err := json.Marshal(plan)
	if err != nil {
		c.logger.Warn("plan cache encode failed", zap.String("programId", programID), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, planKeyPrefix+programID, data, c.ttl).Err(); err != nil {
		c.logger.Warn("plan cache write failed", zap.String("programId", programID), zap.Error(err))
	}
}

func (c *planCache) InvalidatePlan(ctx context.Context, programID string) {
	if err := c.client.Del(ctx, planKeyPrefix+programID).Err(); err != nil {
		c.logger.Warn("plan cache invalidate failed", zap.String("programId", programID), zap.Error(err))
	}
}
