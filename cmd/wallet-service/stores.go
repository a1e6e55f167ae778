package main

import (
	"context"
	"fmt"

	"fundgate/internal/pkg/appctx"
	"fundgate/internal/pkg/bootstrap"
	"fundgate/internal/pkg/logger"
	"fundgate/internal/pkg/redis"
	"fundgate/internal/pkg/supabase"
	"fundgate/internal/pkg/zookeeper"
	depositDomain "fundgate/internal/service/deposit/domain"
	"fundgate/internal/service/deposit/domain/port"
	depositInfra "fundgate/internal/service/deposit/infrastructure"
	depositAdapter "fundgate/internal/service/deposit/infrastructure/adapter"
	promoDomain "fundgate/internal/service/promotion/domain"
	promoInfra "fundgate/internal/service/promotion/infrastructure"
	walletDomain "fundgate/internal/service/wallet/domain"
	walletInfra "fundgate/internal/service/wallet/infrastructure"

	"go.opentelemetry.io/otel/trace"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// stores 汇总按 store.driver 选出的全部仓储实现
type stores struct {
	profiles    appctx.ProfileSource
	deposits    depositDomain.DepositRepository
	processor   port.DepositProcessor
	storage     port.ProofStorage
	promos      promoDomain.PromoRepository
	procedures  promoDomain.PromoProcedures
	wallets     walletDomain.WalletRepository
	withdrawals walletDomain.WithdrawalRepository
	realtime    *supabase.Realtime // 仅 supabase 且开启 realtime 时非空
}

func openStores(app *bootstrap.AppCtx, tracer trace.Tracer) (*stores, error) {
	cfg := app.Config
	// 付款凭证始终存放在 Supabase Storage
	client, err := supabase.New(supabase.Config{
		URL:     cfg.Supabase.URL,
		APIKey:  cfg.Supabase.ServiceKey,
		Timeout: cfg.Supabase.Timeout,
		Tracer:  tracer,
	})
	if err != nil {
		return nil, err
	}
	storage := depositAdapter.NewSupabaseStorageAdapter(client)

	if cfg.Store.Driver == "mysql" {
		db, err := gorm.Open(mysql.Open(cfg.Store.MySQLDSN), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Warn),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to mysql: %w", err)
		}
		app.OnShutdown(func(ctx context.Context) {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		})
		logger.L().Info().Msg("✅ Successfully connected to MySQL.")
		return &stores{
			profiles:    appctx.NewGormProfileSource(db),
			deposits:    depositInfra.NewGormDepositRepository(db),
			processor:   depositInfra.NewGormDepositProcessor(db),
			storage:     storage,
			promos:      promoInfra.NewGormPromoRepository(db),
			procedures:  promoInfra.NewGormPromoProcedures(db),
			wallets:     walletInfra.NewGormWalletRepository(db),
			withdrawals: walletInfra.NewGormWithdrawalRepository(db),
		}, nil
	}

	st := &stores{
		profiles:    appctx.NewSupabaseProfileSource(client),
		deposits:    depositInfra.NewSupabaseDepositRepository(client),
		processor:   depositInfra.NewSupabaseDepositProcessor(client),
		storage:     storage,
		promos:      promoInfra.NewSupabasePromoRepository(client),
		procedures:  promoInfra.NewSupabasePromoProcedures(client),
		wallets:     walletInfra.NewSupabaseWalletRepository(client),
		withdrawals: walletInfra.NewSupabaseWithdrawalRepository(client),
	}
	if cfg.Supabase.Realtime {
		st.realtime = supabase.NewRealtime(client.BaseURL(), cfg.Supabase.ServiceKey)
	}
	return st, nil
}

// openReviewGuard 按 review_guard.backend 选择审核互斥的实现，none 时返回 nil
func openReviewGuard(app *bootstrap.AppCtx) (port.ReviewGuard, error) {
	cfg := app.Config
	switch cfg.ReviewGuard.Backend {
	case "redis":
		client, err := redis.NewClient(app.Ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, err
		}
		app.OnShutdown(func(ctx context.Context) { _ = client.Close() })
		return depositAdapter.NewRedisReviewGuardAdapter(client, cfg.ReviewGuard.TTL)
	case "zookeeper":
		conn, err := zookeeper.Connect(cfg.Zookeeper.Servers, cfg.Zookeeper.SessionTimeout)
		if err != nil {
			return nil, err
		}
		app.OnShutdown(func(ctx context.Context) { conn.Close() })
		return depositAdapter.NewZookeeperReviewGuardAdapter(conn), nil
	default:
		return nil, nil
	}
}
