package port

import (
	"context"

	"fundgate/internal/service/deposit/domain"
)

// DepositProcessor 对应原子存储过程 process_deposit_request。
// 状态流转、审核人/时间戳以及钱包入账或订阅激活必须在同一个事务里完成。
type DepositProcessor interface {
	// Process 返回 false 表示申请已不处于 pending，未做任何修改。
	Process(ctx context.Context, requestID, adminID string, action domain.Action) (bool, error)
}
