// cmd/notification-service/main.go
package main

import (
	"context"
	"fmt"
	"os"

	"fundgate/internal/pkg/bootstrap"
	"fundgate/internal/pkg/logger"
	"fundgate/internal/pkg/mq"
	"fundgate/internal/pkg/supabase"
	"fundgate/internal/service/notification/application"
	"fundgate/internal/service/notification/domain"
	"fundgate/internal/service/notification/infrastructure"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const serviceName = "notification-service"

// notification-service 只暴露 /healthz 和 /metrics，业务入口是 Kafka 消费者
func main() {
	configPath := "configs/config.yaml"
	if p, ok := os.LookupEnv("CONFIG_PATH"); ok {
		configPath = p
	}
	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName:      serviceName,
		ConfigPath:       configPath,
		RegisterHandlers: startConsumer,
	})
}

func startConsumer(app *bootstrap.AppCtx) error {
	cfg := app.Config
	tracer := otel.Tracer(serviceName)

	repo, err := openRepository(app, tracer)
	if err != nil {
		return err
	}
	service := application.NewNotificationService(repo, tracer)

	// 重试耗尽的事件进入死信主题，由独立的消费组记录
	dltTopic := mq.DeadLetterTopic(cfg.Kafka.EventsTopic)
	dltWriter := mq.NewKafkaWriter(cfg.Kafka.Brokers, dltTopic)

	reader := mq.NewKafkaReader(cfg.Kafka.Brokers, cfg.Kafka.EventsTopic, cfg.Kafka.ConsumerGroup)
	consumer := infrastructure.NewNotificationConsumer(reader, service, tracer, infrastructure.WithDeadLetter(dltWriter))
	consumer.Start(app.Ctx)

	dltConsumer := infrastructure.NewDeadLetterConsumer(mq.NewKafkaReader(cfg.Kafka.Brokers, dltTopic, cfg.Kafka.ConsumerGroup+"-dlt"))
	dltConsumer.Start(app.Ctx)

	app.OnShutdown(func(ctx context.Context) {
		if err := consumer.Stop(); err != nil {
			logger.L().Error().Err(err).Msg("Error closing kafka reader")
		}
		if err := dltConsumer.Stop(); err != nil {
			logger.L().Error().Err(err).Msg("Error closing dead letter reader")
		}
		if err := dltWriter.Close(); err != nil {
			logger.L().Error().Err(err).Msg("Error closing dead letter writer")
		}
	})

	logger.L().Info().Str("topic", cfg.Kafka.EventsTopic).Msg("✅ Notification Service started as a Kafka consumer")
	return nil
}

func openRepository(app *bootstrap.AppCtx, tracer trace.Tracer) (domain.NotificationRepository, error) {
	cfg := app.Config
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
		return infrastructure.NewGormNotificationRepository(db), nil
	}

	client, err := supabase.New(supabase.Config{
		URL:     cfg.Supabase.URL,
		APIKey:  cfg.Supabase.ServiceKey,
		Timeout: cfg.Supabase.Timeout,
		Tracer:  tracer,
	})
	if err != nil {
		return nil, err
	}
	return infrastructure.NewSupabaseNotificationRepository(client), nil
}
