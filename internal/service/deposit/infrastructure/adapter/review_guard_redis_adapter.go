package adapter

import (
	"context"
	"time"

	"fundgate/internal/pkg/logger"
	"fundgate/internal/pkg/redis"

	"github.com/google/uuid"
)

const (
	reviewReleaseScript = "review_guard_release"
	reviewKeyPrefix     = "fundgate:deposit_review:"
)

// 只删除自己持有的 key，避免超时后误删别人的占用
const compareAndDelete = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`

// RedisReviewGuardAdapter 用 SET NX PX 实现审核动作的互斥，实现了 port.ReviewGuard 接口。
type RedisReviewGuardAdapter struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisReviewGuardAdapter(client *redis.Client, ttl time.Duration) (*RedisReviewGuardAdapter, error) {
	if err := client.LoadScriptFromContent(reviewReleaseScript, compareAndDelete); err != nil {
		return nil, err
	}
	return &RedisReviewGuardAdapter{client: client, ttl: ttl}, nil
}

func (a *RedisReviewGuardAdapter) Acquire(ctx context.Context, requestID string) (func(context.Context), bool, error) {
	key := reviewKeyPrefix + requestID
	token := uuid.NewString()

	ok, err := a.client.GetClient().SetNX(ctx, key, token, a.ttl).Result()
	if err != nil || !ok {
		return nil, false, err
	}

	release := func(ctx context.Context) {
		if _, err := a.client.RunScript(ctx, reviewReleaseScript, []string{key}, token); err != nil {
			logger.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("Failed to release review guard, it will expire on its own")
		}
	}
	return release, true, nil
}
