// internal/service/deposit/domain/deposit.go
package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DepositRequest 是充值申请聚合的根实体：用户声明已完成一笔线下银行转账
type DepositRequest struct {
	ID              string
	UserID          string
	Amount          decimal.Decimal
	BankName        string
	AccountNumber   string // 可选
	DepositorName   string
	ReferenceNumber string // 可选
	ProofURL        string
	UserNotes       string // 用户提交时填写
	AdminNotes      string // 审核人填写，驳回原因也写在这里
	Narration       string // 包含 "subscription" 时视为订阅付款
	Status          Status
	CreatedAt       time.Time
	ProcessedAt     *time.Time
	ProcessedBy     string
}

// Submission 是提交表单里的原始字段，金额保持字符串，由 Validate 解析
type Submission struct {
	Amount          string
	BankName        string
	AccountNumber   string
	DepositorName   string
	ReferenceNumber string
	Notes           string
	Narration       string
	ProofFilename   string
	ProofSize       int
}

// Validate 在发起任何远程调用之前完成全部校验，返回解析后的金额
func (s Submission) Validate() (decimal.Decimal, error) {
	amount, err := ParseAmount(s.Amount)
	if err != nil {
		return decimal.Zero, err
	}
	if strings.TrimSpace(s.BankName) == "" {
		return decimal.Zero, missing("bank_name")
	}
	if strings.TrimSpace(s.DepositorName) == "" {
		return decimal.Zero, missing("depositor_name")
	}
	if strings.TrimSpace(s.ProofFilename) == "" || s.ProofSize == 0 {
		return decimal.Zero, missing("proof_of_payment")
	}
	return amount, nil
}

// ParseAmount 解析金额，非数字或 <= 0 都视为非法
func ParseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if !amount.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return amount, nil
}

// 工厂函数: NewDepositRequest 在凭证上传成功后创建待审核的申请
func NewDepositRequest(userID string, sub Submission, proofURL string, now time.Time) (*DepositRequest, error) {
	if userID == "" {
		return nil, errors.New("cannot create deposit request without a user")
	}
	amount, err := sub.Validate()
	if err != nil {
		return nil, err
	}
	if proofURL == "" {
		return nil, missing("proof_of_payment")
	}

	return &DepositRequest{
		ID:              uuid.NewString(),
		UserID:          userID,
		Amount:          amount,
		BankName:        strings.TrimSpace(sub.BankName),
		AccountNumber:   strings.TrimSpace(sub.AccountNumber),
		DepositorName:   strings.TrimSpace(sub.DepositorName),
		ReferenceNumber: strings.TrimSpace(sub.ReferenceNumber),
		ProofURL:        proofURL,
		UserNotes:       strings.TrimSpace(sub.Notes),
		Narration:       strings.TrimSpace(sub.Narration),
		Status:          StatusPending, // 初始状态
		CreatedAt:       now,
	}, nil
}

// Approve 通过申请，只允许从 pending 流转一次
func (d *DepositRequest) Approve(adminID string, at time.Time) error {
	if d.Status != StatusPending {
		return ErrNotPending
	}
	d.Status = StatusApproved
	d.stamp(adminID, at)
	return nil
}

// Reject 驳回申请，必须填写原因，原因会写入 admin notes
func (d *DepositRequest) Reject(adminID, reason string, at time.Time) error {
	if d.Status != StatusPending {
		return ErrNotPending
	}
	if !CanReject(reason) {
		return ErrRejectReasonRequired
	}
	d.Status = StatusRejected
	d.AdminNotes = strings.TrimSpace(reason)
	d.stamp(adminID, at)
	return nil
}

// Void 只由提交流程的补偿动作调用
func (d *DepositRequest) Void(reason string, at time.Time) error {
	if d.Status != StatusPending {
		return ErrNotPending
	}
	d.Status = StatusVoided
	d.AdminNotes = "voided: " + reason
	d.stamp("", at)
	return nil
}

func (d *DepositRequest) stamp(adminID string, at time.Time) {
	d.ProcessedAt = &at
	d.ProcessedBy = adminID
}

// AvailableActions 返回当前可执行的审核动作，非 pending 时为空
func (d *DepositRequest) AvailableActions() []Action {
	if d.Status != StatusPending {
		return nil
	}
	return []Action{ActionApprove, ActionReject}
}

// CanReject 驳回原因不能为空白
func CanReject(reason string) bool {
	return strings.TrimSpace(reason) != ""
}

// IsSubscription 通过 narration 区分订阅付款与普通钱包充值
func (d *DepositRequest) IsSubscription() bool {
	return strings.Contains(strings.ToLower(d.Narration), "subscription")
}

// SubscriptionPlan 从形如 "Premium subscription - annual" 的 narration 中解析套餐与计费周期
func (d *DepositRequest) SubscriptionPlan() (tier, cycle string, ok bool) {
	if !d.IsSubscription() {
		return "", "", false
	}
	lower := strings.ToLower(strings.TrimSpace(d.Narration))
	idx := strings.Index(lower, "subscription")
	tier = strings.TrimSpace(lower[:idx])
	if tier == "" {
		return "", "", false
	}
	cycle = "monthly"
	if rest := lower[idx+len("subscription"):]; strings.Contains(rest, "annual") || strings.Contains(rest, "year") {
		cycle = "annual"
	}
	return tier, cycle, true
}
