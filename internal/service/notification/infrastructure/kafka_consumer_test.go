package infrastructure

import (
	"bytes"
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"fundgate/internal/pkg/events"
	"fundgate/internal/pkg/logger"
	"fundgate/internal/pkg/mq"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

// fakeReader 依次返回预置消息，耗尽后阻塞直到 ctx 取消
type fakeReader struct {
	mu        sync.Mutex
	msgs      []kafka.Message
	committed []int64
	closed    bool
	drained   chan struct{}
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.msgs) > 0 {
		m := r.msgs[0]
		r.msgs = r.msgs[1:]
		r.mu.Unlock()
		return m, nil
	}
	r.mu.Unlock()
	select {
	case r.drained <- struct{}{}:
	default:
	}
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error {
	r.closed = true
	return nil
}

type recordingDeliverer struct {
	mu   sync.Mutex
	got  []events.Envelope
	fail map[string]bool
}

func (d *recordingDeliverer) Deliver(ctx context.Context, e events.Envelope) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.fail[e.UserID] {
		return errors.New("store unavailable")
	}
	d.got = append(d.got, e)
	return nil
}

type captureWriter struct {
	mu   sync.Mutex
	msgs []kafka.Message
}

func (w *captureWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func runUntilDrained(t *testing.T, reader *fakeReader, start func(ctx context.Context), stop func() error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	start(ctx)
	select {
	case <-reader.drained:
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not drain messages")
	}
	cancel()
	assert.NoError(t, stop())
}

func TestConsumerRoutesFailuresToDeadLetter(t *testing.T) {
	reader := &fakeReader{
		drained: make(chan struct{}, 1),
		msgs: []kafka.Message{
			{Topic: "wallet-events", Offset: 1, Value: []byte(`{"id":"e1","type":"deposit.approved","user_id":"u1","message":"ok"}`)},
			{Topic: "wallet-events", Offset: 2, Value: []byte(`garbage`)},
			{Topic: "wallet-events", Offset: 3, Value: []byte(`{"id":"e3","type":"deposit.rejected","user_id":"broken","message":"no"}`)},
		},
	}
	deliverer := &recordingDeliverer{fail: map[string]bool{"broken": true}}
	dlt := &captureWriter{}
	consumer := NewNotificationConsumer(reader, deliverer, noop.NewTracerProvider().Tracer("test"),
		WithRetry(2, 0), WithDeadLetter(dlt))

	runUntilDrained(t, reader, consumer.Start, consumer.Stop)

	assert.True(t, reader.closed)
	assert.Equal(t, []int64{1, 2, 3}, reader.committed)
	if assert.Len(t, deliverer.got, 1) {
		assert.Equal(t, "e1", deliverer.got[0].ID)
	}
	require.Len(t, dlt.msgs, 2)
	assert.Equal(t, "2", mq.HeaderMap(dlt.msgs[0].Headers)[mq.HeaderOriginalOffset])
	assert.Equal(t, "store unavailable", mq.HeaderMap(dlt.msgs[1].Headers)[mq.HeaderExceptionMessage])
}

func TestConsumerRetriesTransientFailure(t *testing.T) {
	reader := &fakeReader{
		drained: make(chan struct{}, 1),
		msgs:    []kafka.Message{{Offset: 7, Value: []byte(`{"id":"e7","type":"withdrawal.requested","user_id":"u7"}`)}},
	}
	deliverer := &flakyDeliverer{failures: 1}
	consumer := NewNotificationConsumer(reader, deliverer, noop.NewTracerProvider().Tracer("test"), WithRetry(3, 0))

	runUntilDrained(t, reader, consumer.Start, consumer.Stop)

	assert.Equal(t, 2, deliverer.calls)
	assert.Equal(t, []int64{7}, reader.committed)
}

type flakyDeliverer struct {
	failures int
	calls    int
}

func (d *flakyDeliverer) Deliver(ctx context.Context, e events.Envelope) error {
	d.calls++
	if d.calls <= d.failures {
		return errors.New("timeout")
	}
	return nil
}

func TestDeadLetterConsumerLogsAndCommits(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	defer logger.SetOutput(os.Stdout)

	reader := &fakeReader{
		drained: make(chan struct{}, 1),
		msgs: []kafka.Message{{
			Offset: 5, Key: []byte("u1"), Value: []byte(`{}`),
			Headers: []kafka.Header{{Key: mq.HeaderOriginalTopic, Value: []byte("wallet-events")}},
		}},
	}
	consumer := NewDeadLetterConsumer(reader)

	runUntilDrained(t, reader, consumer.Start, consumer.Stop)

	assert.Equal(t, []int64{5}, reader.committed)
	assert.Contains(t, buf.String(), `"original_topic":"wallet-events"`)
	assert.Contains(t, buf.String(), "Dead letter message received")
}
