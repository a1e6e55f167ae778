package saga

import (
	"context"
	"sync"
	"time"

	"fundgate/internal/pkg/logger"
	"fundgate/internal/pkg/metrics"
	"fundgate/internal/service/deposit/domain"
	"fundgate/internal/service/deposit/domain/port"

	"go.opentelemetry.io/otel/trace"
)

// ProofFile 是随申请上传的付款凭证
type ProofFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Buckets 主桶不存在时退回备用桶
type Buckets struct {
	Primary  string
	Fallback string
}

// SubmitContext 在提交充值的 Saga 流程中传递上下文数据。
// 依赖全部是出站端口，步骤产出也记录在这里供后续步骤与补偿使用。
type SubmitContext struct {
	Ctx    context.Context
	Tracer trace.Tracer
	Now    time.Time

	UserID     string
	Submission domain.Submission
	Proof      ProofFile
	Promo      *port.AppliedPromo

	Storage port.ProofStorage
	Buckets Buckets
	Repo    domain.DepositRepository
	Promos  port.PromoRedeemer
	Events  port.EventPublisher

	// 步骤产出
	ProofBucket string
	ProofPath   string
	ProofURL    string
	Deposit     *domain.DepositRequest
	PromoUseID  string

	compensations []func(ctx context.Context)
	compLock      sync.Mutex
}

// AddCompensation 补偿按注册的逆序执行
func (c *SubmitContext) AddCompensation(comp func(ctx context.Context)) {
	c.compLock.Lock()
	defer c.compLock.Unlock()
	c.compensations = append([]func(context.Context){comp}, c.compensations...)
}

// TriggerCompensation 执行并清空已注册的补偿
func (c *SubmitContext) TriggerCompensation(ctx context.Context) {
	c.compLock.Lock()
	defer c.compLock.Unlock()
	logger.Ctx(ctx).Warn().Str("user", c.UserID).Int("count", len(c.compensations)).Msg("Executing deposit submission compensations")
	metrics.SagaCompensations.WithLabelValues("deposit_submit").Inc()
	for _, comp := range c.compensations {
		comp(ctx)
	}
	c.compensations = nil
}

type Handler interface {
	SetNext(handler Handler) Handler
	Handle(submitCtx *SubmitContext) error
}

type NextHandler struct {
	next Handler
}

func (h *NextHandler) SetNext(handler Handler) Handler {
	h.next = handler
	return handler
}

func (h *NextHandler) executeNext(submitCtx *SubmitContext) error {
	if h.next != nil {
		return h.next.Handle(submitCtx)
	}
	return nil
}
