// internal/service/deposit/application/service.go
package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fundgate/internal/pkg/appctx"
	"fundgate/internal/pkg/logger"
	"fundgate/internal/pkg/metrics"
	"fundgate/internal/service/deposit/application/saga"
	"fundgate/internal/service/deposit/domain"
	"fundgate/internal/service/deposit/domain/port"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const enrichConcurrency = 8

// Dependencies 汇总充值用例依赖的出站端口
type Dependencies struct {
	Repo      domain.DepositRepository
	Storage   port.ProofStorage
	Buckets   saga.Buckets
	Processor port.DepositProcessor
	Guard     port.ReviewGuard // 可为空，此时不做并发审核保护
	Promos    port.PromoRedeemer
	Events    port.EventPublisher
	Profiles  appctx.ProfileSource
	Sessions  port.SessionInvalidator // 可为空
	Tracer    trace.Tracer
}

// DepositApplicationService 只关注充值与审核流程的编排。
type DepositApplicationService struct {
	Dependencies
	now func() time.Time
}

func NewDepositApplicationService(deps Dependencies) *DepositApplicationService {
	return &DepositApplicationService{Dependencies: deps, now: time.Now}
}

// Submit 提交一笔充值申请。
// 校验全部在远程调用之前完成；之后的上传、写库、核销优惠码按 Saga 执行，任一步失败都会补偿已完成的步骤。
func (s *DepositApplicationService) Submit(ctx context.Context, session *appctx.Session, req *SubmitDepositRequest) (view *DepositView, err error) {
	ctx, span := s.Tracer.Start(ctx, "app.SubmitDeposit")
	defer span.End()
	defer func() { metrics.DepositsSubmitted.WithLabelValues(metrics.Result(err)).Inc() }()

	// 1. 身份与表单校验
	if err := appctx.RequireUser(session); err != nil {
		return nil, err
	}
	submission := req.toSubmission()
	if _, err := submission.Validate(); err != nil {
		span.SetStatus(codes.Error, "Invalid submission")
		return nil, err
	}
	span.SetAttributes(attribute.String("user.id", session.UserID), attribute.Bool("promo.supplied", req.Promo != nil))

	// 优惠码在服务端重新校验，客户端传来的折扣一概不信
	var promo *port.AppliedPromo
	if req.Promo != nil {
		if promo, err = s.quotePromo(ctx, session.UserID, *req.Promo); err != nil {
			span.SetStatus(codes.Error, "Promo code not accepted")
			return nil, err
		}
	}

	// 2. 构造责任链所需的上下文
	submitCtx := &saga.SubmitContext{
		Ctx:        ctx,
		Tracer:     s.Tracer,
		Now:        s.now(),
		UserID:     session.UserID,
		Submission: submission,
		Proof:      req.Proof,
		Promo:      promo,
		Storage:    s.Storage,
		Buckets:    s.Buckets,
		Repo:       s.Repo,
		Promos:     s.Promos,
		Events:     s.Events,
	}

	// 3. 执行责任链
	if err := s.buildSubmitChain().Handle(submitCtx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Deposit submission failed in chain")
		logger.Ctx(ctx).Error().Err(err).Str("user", session.UserID).Msg("Deposit submission failed, SAGA compensation triggered")
		submitCtx.TriggerCompensation(context.WithoutCancel(ctx))
		return nil, err
	}

	logger.Ctx(ctx).Info().Str("deposit", submitCtx.Deposit.ID).Msg("✅ Deposit request submitted")
	return ToDepositView(submitCtx.Deposit), nil
}

// quotePromo 返回 nil 表示优惠码有效但本次不打折，不做核销
func (s *DepositApplicationService) quotePromo(ctx context.Context, userID string, req port.PromoRequest) (*port.AppliedPromo, error) {
	applied, err := s.Promos.Quote(ctx, userID, req)
	if err != nil {
		if errors.Is(err, domain.ErrPromoRejected) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s", domain.ErrPromoRedemptionFailed, err.Error())
	}
	if !applied.Applied {
		logger.Ctx(ctx).Info().Str("code", applied.Code).Msg("Promo code not applicable to this checkout, skipping redemption")
		return nil, nil
	}
	return &applied, nil
}

func (s *DepositApplicationService) buildSubmitChain() saga.Handler {
	upload := &saga.UploadProofHandler{}
	upload.SetNext(&saga.CreateDepositHandler{}).
		SetNext(&saga.RedeemPromoHandler{}).
		SetNext(&saga.NotificationHandler{})
	return upload
}

// ListMine 返回当前用户自己的充值申请，最新的在前
func (s *DepositApplicationService) ListMine(ctx context.Context, session *appctx.Session) ([]*DepositView, error) {
	ctx, span := s.Tracer.Start(ctx, "app.ListMyDeposits")
	defer span.End()

	if err := appctx.RequireUser(session); err != nil {
		return nil, err
	}
	deposits, err := s.Repo.ListByUser(ctx, session.UserID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	views := make([]*DepositView, 0, len(deposits))
	for _, d := range deposits {
		views = append(views, ToDepositView(d))
	}
	return views, nil
}

// ListForReview 返回全部申请并补充提交人姓名与邮箱。
// 资料查询彼此独立并发执行，查询失败的行显示占位符。
func (s *DepositApplicationService) ListForReview(ctx context.Context, admin *appctx.Session) ([]*DepositView, error) {
	ctx, span := s.Tracer.Start(ctx, "app.ListDepositsForReview")
	defer span.End()

	if err := appctx.RequireAdmin(admin); err != nil {
		return nil, err
	}
	deposits, err := s.Repo.ListAll(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to list deposits")
		return nil, err
	}

	userIDs := make([]string, 0, len(deposits))
	seen := make(map[string]struct{}, len(deposits))
	for _, d := range deposits {
		if _, ok := seen[d.UserID]; !ok {
			seen[d.UserID] = struct{}{}
			userIDs = append(userIDs, d.UserID)
		}
	}

	profiles := make([]*appctx.Profile, len(userIDs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(enrichConcurrency)
	for i, id := range userIDs {
		g.Go(func() error {
			p, err := s.Profiles.LoadProfile(gctx, id)
			if err != nil {
				logger.Ctx(gctx).Warn().Err(err).Str("user", id).Msg("Profile lookup failed, using placeholder")
				return nil
			}
			profiles[i] = &p
			return nil
		})
	}
	_ = g.Wait()

	byUser := make(map[string]*appctx.Profile, len(userIDs))
	for i, id := range userIDs {
		byUser[id] = profiles[i]
	}

	views := make([]*DepositView, 0, len(deposits))
	for _, d := range deposits {
		v := ToDepositView(d)
		v.UserName, v.UserEmail = UnknownUserName, UnknownUserEmail
		if p := byUser[d.UserID]; p != nil {
			if p.FullName != "" {
				v.UserName = p.FullName
			}
			if p.Email != "" {
				v.UserEmail = p.Email
			}
		}
		views = append(views, v)
	}
	span.SetAttributes(attribute.Int("deposits.count", len(views)))
	return views, nil
}

// Approve 通过申请，入账或激活订阅由存储过程原子完成
func (s *DepositApplicationService) Approve(ctx context.Context, admin *appctx.Session, requestID string) (*DepositView, error) {
	return s.review(ctx, admin, requestID, domain.ActionApprove, "")
}

// Reject 驳回申请，原因必填
func (s *DepositApplicationService) Reject(ctx context.Context, admin *appctx.Session, requestID, reason string) (*DepositView, error) {
	return s.review(ctx, admin, requestID, domain.ActionReject, reason)
}

func (s *DepositApplicationService) review(ctx context.Context, admin *appctx.Session, requestID string, action domain.Action, reason string) (view *DepositView, err error) {
	ctx, span := s.Tracer.Start(ctx, "app.ReviewDeposit", trace.WithAttributes(
		attribute.String("deposit.id", requestID),
		attribute.String("review.action", string(action)),
	))
	defer span.End()
	defer func() {
		metrics.DepositReviews.WithLabelValues(string(action), metrics.Result(err)).Inc()
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "Deposit review failed")
		}
	}()

	// 1. 权限与参数
	if err := appctx.RequireAdmin(admin); err != nil {
		return nil, err
	}
	if action == domain.ActionReject && !domain.CanReject(reason) {
		return nil, domain.ErrRejectReasonRequired
	}

	// 2. 同一申请同一时间只允许一个审核动作
	if s.Guard != nil {
		release, ok, err := s.Guard.Acquire(ctx, requestID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, domain.ErrReviewInProgress
		}
		defer release(context.WithoutCancel(ctx))
	}

	// 3. 只有 pending 的申请可以审核
	deposit, err := s.Repo.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if len(deposit.AvailableActions()) == 0 {
		return nil, domain.ErrNotPending
	}
	previousNotes := deposit.AdminNotes
	if action == domain.ActionReject {
		if err := s.Repo.UpdateAdminNotes(ctx, requestID, reason); err != nil {
			return nil, err
		}
	}

	// 4. 调用原子存储过程，失败时撤回已写入的驳回原因
	processed, err := s.Processor.Process(ctx, requestID, admin.UserID, action)
	if err != nil {
		if action == domain.ActionReject {
			s.restoreAdminNotes(ctx, requestID, previousNotes)
		}
		return nil, err
	}
	if !processed {
		return nil, domain.ErrNotPending
	}
	span.AddEvent("Deposit request processed")

	// 5. 重新读取，拿到服务端写入的处理时间
	at := s.now()
	if fresh, err := s.Repo.FindByID(ctx, requestID); err == nil {
		deposit = fresh
	} else {
		logger.Ctx(ctx).Warn().Err(err).Str("deposit", requestID).Msg("Failed to reload processed deposit")
		if action == domain.ActionApprove {
			_ = deposit.Approve(admin.UserID, at)
		} else {
			_ = deposit.Reject(admin.UserID, reason, at)
		}
	}

	eventType := domain.EventDepositApproved
	if action == domain.ActionReject {
		eventType = domain.EventDepositRejected
	} else if deposit.IsSubscription() && s.Sessions != nil {
		s.Sessions.Invalidate(deposit.UserID)
	}
	s.publish(ctx, domain.NewDepositEvent(eventType, deposit, reason, at))

	logger.Ctx(ctx).Info().Str("deposit", requestID).Str("admin", admin.UserID).Str("action", string(action)).Msg("✅ Deposit request reviewed")
	return ToDepositView(deposit), nil
}

func (s *DepositApplicationService) restoreAdminNotes(ctx context.Context, requestID, notes string) {
	if err := s.Repo.UpdateAdminNotes(context.WithoutCancel(ctx), requestID, notes); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("deposit", requestID).Msg("Failed to restore admin notes after procedure error")
	}
}

func (s *DepositApplicationService) publish(ctx context.Context, event domain.DepositEvent) {
	if s.Events == nil {
		return
	}
	if err := s.Events.PublishDepositEvent(ctx, event); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("event", event.Type).Str("deposit", event.RequestID).Msg("Failed to publish deposit event")
	}
}
