package adapter

import (
	"context"

	"fundgate/internal/pkg/logger"
	"fundgate/internal/pkg/zookeeper"
)

const reviewLockRoot = "/fundgate/review_locks"

// ZookeeperReviewGuardAdapter 用临时顺序节点实现审核动作的互斥，实现了 port.ReviewGuard 接口。
type ZookeeperReviewGuardAdapter struct {
	conn zookeeper.Conn
}

func NewZookeeperReviewGuardAdapter(conn zookeeper.Conn) *ZookeeperReviewGuardAdapter {
	return &ZookeeperReviewGuardAdapter{conn: conn}
}

func (a *ZookeeperReviewGuardAdapter) Acquire(ctx context.Context, requestID string) (func(context.Context), bool, error) {
	lock, err := zookeeper.NewDistributedLock(a.conn, reviewLockRoot, requestID)
	if err != nil {
		return nil, false, err
	}
	ok, err := lock.TryLock()
	if err != nil || !ok {
		return nil, false, err
	}

	release := func(ctx context.Context) {
		if err := lock.Unlock(); err != nil {
			logger.Ctx(ctx).Warn().Err(err).Str("request", requestID).Msg("Failed to release review lock")
		}
	}
	return release, true, nil
}
