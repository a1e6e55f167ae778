package port

import "context"

// ReviewGuard 保证同一申请同时只有一个审核动作在执行
type ReviewGuard interface {
	// Acquire 抢占成功时返回 release；已被占用时 ok 为 false。
	Acquire(ctx context.Context, requestID string) (release func(context.Context), ok bool, err error)
}
