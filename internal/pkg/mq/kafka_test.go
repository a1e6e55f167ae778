package mq

import (
	"context"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

type captureWriter struct {
	msgs []kafka.Message
}

func (w *captureWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func TestProduceMessagePropagatesTraceContext(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	w := &captureWriter{}
	require.NoError(t, ProduceMessage(ctx, w, []byte("user-1"), []byte(`{}`)))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "user-1", string(w.msgs[0].Key))

	restored := ExtractTraceContext(context.Background(), w.msgs[0].Headers)
	got := trace.SpanContextFromContext(restored)
	assert.Equal(t, traceID, got.TraceID())
	assert.True(t, got.IsRemote())
}

func TestSendToDeadLetterKeepsOrigin(t *testing.T) {
	w := &captureWriter{}
	msg := kafka.Message{
		Topic: "wallet-events", Partition: 2, Offset: 41,
		Key: []byte("u-1"), Value: []byte("{}"),
		Headers: []kafka.Header{{Key: "traceparent", Value: []byte("00-abc")}},
	}

	require.NoError(t, SendToDeadLetter(context.Background(), w, msg, errors.New("store down")))
	require.Len(t, w.msgs, 1)

	headers := HeaderMap(w.msgs[0].Headers)
	assert.Equal(t, "wallet-events", headers[HeaderOriginalTopic])
	assert.Equal(t, "2", headers[HeaderOriginalPartition])
	assert.Equal(t, "41", headers[HeaderOriginalOffset])
	assert.Equal(t, "store down", headers[HeaderExceptionMessage])
	assert.Equal(t, "00-abc", headers["traceparent"])
	assert.Equal(t, "wallet-events.dlt", DeadLetterTopic("wallet-events"))
}
