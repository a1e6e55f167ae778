// cmd/wallet-service/main.go
package main

import (
	"context"
	"os"
	"time"

	"fundgate/internal/pkg/appctx"
	"fundgate/internal/pkg/bootstrap"
	"fundgate/internal/pkg/events"
	"fundgate/internal/pkg/logger"
	"fundgate/internal/pkg/mq"
	depositApp "fundgate/internal/service/deposit/application"
	"fundgate/internal/service/deposit/application/saga"
	depositAdapter "fundgate/internal/service/deposit/infrastructure/adapter"
	depositHTTP "fundgate/internal/service/deposit/interfaces"
	promoApp "fundgate/internal/service/promotion/application"
	promoDomain "fundgate/internal/service/promotion/domain"
	"fundgate/internal/service/promotion/infrastructure/rule"
	promoHTTP "fundgate/internal/service/promotion/interfaces"
	walletApp "fundgate/internal/service/wallet/application"
	walletAdapter "fundgate/internal/service/wallet/infrastructure/adapter"
	walletHTTP "fundgate/internal/service/wallet/interfaces"

	"go.opentelemetry.io/otel"
)

const (
	serviceName = "wallet-service"
	sessionTTL  = time.Minute
)

// main 函数是应用的"组装根" (Composition Root)
// 它的核心职责是：创建并组装所有依赖项，然后启动应用。
func main() {
	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName:      serviceName,
		ConfigPath:       configPath(),
		RegisterHandlers: registerHandlers,
	})
}

func configPath() string {
	if p, ok := os.LookupEnv("CONFIG_PATH"); ok {
		return p
	}
	return "configs/config.yaml"
}

func registerHandlers(app *bootstrap.AppCtx) error {
	cfg := app.Config
	tracer := otel.Tracer(serviceName)

	// 1. 存储：supabase 或自建 MySQL
	st, err := openStores(app, tracer)
	if err != nil {
		return err
	}

	// 2. 身份与权限
	auth := appctx.NewProvider(appctx.NewTokenVerifier(cfg.Supabase.JWTSecret), st.profiles, sessionTTL)

	// 3. Kafka 事件发布
	writer := mq.NewKafkaWriter(cfg.Kafka.Brokers, cfg.Kafka.EventsTopic)
	app.OnShutdown(func(ctx context.Context) {
		if err := writer.Close(); err != nil {
			logger.L().Error().Err(err).Msg("Error closing kafka writer")
		}
	})
	publisher := events.NewPublisher(writer)

	// 4. 优惠码
	prices, err := promoDomain.NewPriceBook(cfg.Pricing.Plans)
	if err != nil {
		return err
	}
	promoDeps := promoApp.Dependencies{
		Repo:       st.promos,
		Procedures: st.procedures,
		Prices:     prices,
		CodeLength: cfg.Promotion.CodeLength,
		Tracer:     tracer,
	}
	if expr := cfg.Promotion.EligibilityRule; expr != "" {
		celRule, err := rule.NewCELRule(expr)
		if err != nil {
			return err
		}
		promoDeps.Rule = celRule
	}
	promotions := promoApp.NewPromotionService(promoDeps)

	// 5. 充值审核，管理后台的实时推送与 Kafka 同时接收事件
	feed := depositHTTP.NewFeedHub(auth)
	go feed.Run(app.Ctx)
	guard, err := openReviewGuard(app)
	if err != nil {
		return err
	}
	deposits := depositApp.NewDepositApplicationService(depositApp.Dependencies{
		Repo:      st.deposits,
		Storage:   st.storage,
		Buckets:   saga.Buckets{Primary: cfg.Supabase.ProofBucket, Fallback: cfg.Supabase.FallbackProofBucket},
		Processor: st.processor,
		Guard:     guard,
		Promos:    depositAdapter.NewPromotionAdapter(promotions),
		Events:    depositEvents(st, feed, publisher),
		Profiles:  st.profiles,
		Sessions:  auth,
		Tracer:    tracer,
	})
	if st.realtime != nil {
		st.realtime.OnTableChange("public", "deposit_requests", "*", feed.HandleChange)
		go func() {
			if err := st.realtime.Run(app.Ctx); err != nil && app.Ctx.Err() == nil {
				logger.L().Error().Err(err).Msg("realtime subscription stopped")
			}
		}()
	}

	// 6. 钱包与提现
	wallets := walletApp.NewWalletService(st.wallets, st.withdrawals, walletAdapter.NewNotificationKafkaAdapter(publisher), tracer)

	// 7. 路由
	depositHTTP.NewDepositHandler(deposits).RegisterRoutes(app.Router, auth)
	feed.RegisterRoutes(app.Router)
	promoHTTP.NewPromotionHandler(promotions).RegisterRoutes(app.Router, auth)
	walletHTTP.NewWalletHandler(wallets).RegisterRoutes(app.Router, auth)

	logger.L().Info().Str("store", cfg.Store.Driver).Str("guard", cfg.ReviewGuard.Backend).Msg("✅ Wallet service wired")
	return nil
}

// depositEvents 订阅了 Realtime 时由它推送管理后台，否则由应用层直接推送
func depositEvents(st *stores, feed *depositHTTP.FeedHub, publisher *events.Publisher) depositAdapter.FanoutPublisher {
	out := depositAdapter.FanoutPublisher{depositAdapter.NewNotificationKafkaAdapter(publisher)}
	if st.realtime == nil {
		out = append(out, feed)
	}
	return out
}
