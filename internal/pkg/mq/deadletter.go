package mq

import (
	"context"
	"strconv"

	"github.com/segmentio/kafka-go"
)

// 死信消息携带的头部，记录原始位置和失败原因
const (
	HeaderOriginalTopic     = "dlt-original-topic"
	HeaderOriginalPartition = "dlt-original-partition"
	HeaderOriginalOffset    = "dlt-original-offset"
	HeaderExceptionMessage  = "dlt-exception-message"
)

// DeadLetterTopic 返回 topic 对应的死信主题名
func DeadLetterTopic(topic string) string {
	return topic + ".dlt"
}

// SendToDeadLetter 把处理失败的消息原样转发到死信主题，保留原有头部（包括追踪上下文）
func SendToDeadLetter(ctx context.Context, writer MessageWriter, msg kafka.Message, cause error) error {
	headers := make([]kafka.Header, 0, len(msg.Headers)+4)
	headers = append(headers, msg.Headers...)
	headers = append(headers,
		kafka.Header{Key: HeaderOriginalTopic, Value: []byte(msg.Topic)},
		kafka.Header{Key: HeaderOriginalPartition, Value: []byte(strconv.Itoa(msg.Partition))},
		kafka.Header{Key: HeaderOriginalOffset, Value: []byte(strconv.FormatInt(msg.Offset, 10))},
	)
	if cause != nil {
		headers = append(headers, kafka.Header{Key: HeaderExceptionMessage, Value: []byte(cause.Error())})
	}
	return writer.WriteMessages(ctx, kafka.Message{Key: msg.Key, Value: msg.Value, Headers: headers})
}

// HeaderMap 把消息头转换成 map，便于日志输出
func HeaderMap(headers []kafka.Header) map[string]string {
	out := make(map[string]string, len(headers))
	for _, h := range headers {
		out[h.Key] = string(h.Value)
	}
	return out
}
