// internal/service/deposit/domain/state.go
package domain

// Status 定义了充值申请的生命周期状态
type Status string

const (
	StatusPending  Status = "pending"  // 用户已提交，等待管理员审核
	StatusApproved Status = "approved" // 已通过，钱包已入账或订阅已激活
	StatusRejected Status = "rejected" // 已驳回
	StatusVoided   Status = "voided"   // 提交流程的补偿动作作废，不会进入审核
)

// IsTerminal 终态不可再变更
func (s Status) IsTerminal() bool {
	return s != StatusPending
}

// Action 是管理员可以执行的审核动作，也是 process_deposit_request 的 action 参数
type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
)

// Valid 校验动作是否合法
func (a Action) Valid() bool {
	return a == ActionApprove || a == ActionReject
}
