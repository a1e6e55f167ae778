// internal/service/notification/infrastructure/dlt_consumer.go
package infrastructure

import (
	"context"
	"sync"

	"fundgate/internal/pkg/logger"
	"fundgate/internal/pkg/mq"

	"github.com/segmentio/kafka-go"
)

// DeadLetterConsumer 监听死信队列并记录日志，供人工排查后重放
type DeadLetterConsumer struct {
	reader MessageReader
	wg     sync.WaitGroup
}

func NewDeadLetterConsumer(reader MessageReader) *DeadLetterConsumer {
	return &DeadLetterConsumer{reader: reader}
}

func (a *DeadLetterConsumer) Start(ctx context.Context) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		logger.Ctx(ctx).Info().Msg("✅ DLT consumer started")
		for {
			msg, err := a.reader.FetchMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					logger.Ctx(ctx).Info().Msg("🛑 DLT consumer shutting down")
					return
				}
				continue
			}

			logDeadLetter(ctx, msg)

			// 死信记录日志后即视为已处理
			if err := a.reader.CommitMessages(ctx, msg); err != nil {
				logger.Ctx(ctx).Error().Err(err).Msg("failed to commit dead letter")
			}
		}
	}()
}

// Stop 调用前应先取消 Start 的 ctx
func (a *DeadLetterConsumer) Stop() error {
	a.wg.Wait()
	return a.reader.Close()
}

func logDeadLetter(ctx context.Context, msg kafka.Message) {
	headers := mq.HeaderMap(msg.Headers)
	logger.Ctx(ctx).Error().
		Str("reason", "dead_letter_message_received").
		Str("original_topic", headers[mq.HeaderOriginalTopic]).
		Str("original_partition", headers[mq.HeaderOriginalPartition]).
		Str("original_offset", headers[mq.HeaderOriginalOffset]).
		Str("exception_message", headers[mq.HeaderExceptionMessage]).
		Str("key", string(msg.Key)).
		Str("value", string(msg.Value)).
		Msg("🚨 CRITICAL: Dead letter message received")
}
