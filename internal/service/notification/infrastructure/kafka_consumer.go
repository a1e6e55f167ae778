// internal/service/notification/infrastructure/kafka_consumer.go
package infrastructure

import (
	"context"
	"sync"
	"time"

	"fundgate/internal/pkg/events"
	"fundgate/internal/pkg/logger"
	"fundgate/internal/pkg/mq"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultMaxAttempts = 3
	defaultRetryDelay  = time.Second
)

// MessageReader 是 kafka.Reader 的最小接口
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Deliverer 由 application.NotificationService 实现
type Deliverer interface {
	Deliver(ctx context.Context, e events.Envelope) error
}

// ConsumerOption 调整消费者的重试行为
type ConsumerOption func(*NotificationConsumer)

// WithRetry 设置单条消息的最大投递次数和间隔
func WithRetry(attempts int, delay time.Duration) ConsumerOption {
	return func(c *NotificationConsumer) {
		if attempts > 0 {
			c.maxAttempts = attempts
		}
		c.retryDelay = delay
	}
}

// WithDeadLetter 重试耗尽或无法解析的消息转发到死信主题，未设置时只记录日志
func WithDeadLetter(writer mq.MessageWriter) ConsumerOption {
	return func(c *NotificationConsumer) { c.deadLetter = writer }
}

// NotificationConsumer 是一个驱动适配器，它监听 Kafka 消息并驱动应用服务。
// 偏移量是按分区累积提交的，所以每条消息都必须有结果（投递成功或进入死信）才能继续。
type NotificationConsumer struct {
	reader      MessageReader
	deliverer   Deliverer
	deadLetter  mq.MessageWriter
	tracer      trace.Tracer
	maxAttempts int
	retryDelay  time.Duration
	wg          sync.WaitGroup
}

func NewNotificationConsumer(reader MessageReader, deliverer Deliverer, tracer trace.Tracer, opts ...ConsumerOption) *NotificationConsumer {
	c := &NotificationConsumer{
		reader:      reader,
		deliverer:   deliverer,
		tracer:      tracer,
		maxAttempts: defaultMaxAttempts,
		retryDelay:  defaultRetryDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start 开始消费，ctx 取消后退出
func (c *NotificationConsumer) Start(ctx context.Context) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		logger.Ctx(ctx).Info().Msg("✅ Notification consumer started")
		for {
			// 使用 FetchMessage 而不是 ReadMessage，处理完成后再提交偏移量
			msg, err := c.reader.FetchMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					logger.Ctx(ctx).Info().Msg("🛑 Notification consumer shutting down")
					return
				}
				logger.Ctx(ctx).Error().Err(err).Msg("could not fetch message, retrying")
				if !c.sleep(ctx) {
					return
				}
				continue
			}

			if !c.process(ctx, msg) {
				// 只有退出时才会走到这里，不提交，重启后重新投递
				return
			}
			if err := c.reader.CommitMessages(ctx, msg); err != nil {
				logger.Ctx(ctx).Error().Err(err).Msg("failed to commit message")
			}
		}
	}()
}

// Stop 等待消费循环退出并关闭 reader，调用前应先取消 Start 的 ctx
func (c *NotificationConsumer) Stop() error {
	c.wg.Wait()
	return c.reader.Close()
}

// process 返回 true 表示这条消息已有结果，可以提交
func (c *NotificationConsumer) process(parent context.Context, msg kafka.Message) bool {
	ctx := mq.ExtractTraceContext(parent, msg.Headers)
	ctx, span := c.tracer.Start(ctx, "notification-service.ProcessEvent",
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination", msg.Topic),
			attribute.Int("messaging.kafka.partition", msg.Partition),
			attribute.Int64("messaging.kafka.message.offset", msg.Offset),
			attribute.String("messaging.kafka.message.key", string(msg.Key)),
		),
	)
	defer span.End()

	e, err := events.Decode(msg.Value)
	if err != nil {
		// 格式错误的消息重试也没有意义
		span.RecordError(err)
		span.SetStatus(codes.Error, "malformed event")
		logger.Ctx(ctx).Error().Err(err).Int64("offset", msg.Offset).Msg("Skipping malformed event")
		c.sendToDeadLetter(ctx, msg, err)
		return true
	}
	span.SetAttributes(attribute.String("event.id", e.ID), attribute.String("event.type", e.Type))

	for attempt := 1; ; attempt++ {
		err = c.deliverer.Deliver(ctx, e)
		if err == nil {
			return true
		}
		span.RecordError(err)
		logger.Ctx(ctx).Warn().Err(err).Str("event", e.ID).Int("attempt", attempt).Msg("Failed to deliver notification")
		if attempt >= c.maxAttempts {
			break
		}
		if !c.sleep(parent) {
			return false
		}
	}

	span.SetStatus(codes.Error, err.Error())
	logger.Ctx(ctx).Error().Err(err).Str("event", e.ID).Msg("Giving up on notification")
	c.sendToDeadLetter(ctx, msg, err)
	return true
}

func (c *NotificationConsumer) sendToDeadLetter(ctx context.Context, msg kafka.Message, cause error) {
	if c.deadLetter == nil {
		return
	}
	if err := mq.SendToDeadLetter(ctx, c.deadLetter, msg, cause); err != nil {
		logger.Ctx(ctx).Error().Err(err).Int64("offset", msg.Offset).Msg("Failed to forward message to dead letter topic")
	}
}

func (c *NotificationConsumer) sleep(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(c.retryDelay):
		return true
	}
}
