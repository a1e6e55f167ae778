package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"fundgate/internal/pkg/logger"

	"github.com/gorilla/websocket"
)

const (
	heartbeatInterval = 25 * time.Second
	maxReconnectDelay = 30 * time.Second
)

// ChangeEvent 是一条 postgres_changes 推送
type ChangeEvent struct {
	Type            string         `json:"type"` // INSERT / UPDATE / DELETE
	Schema          string         `json:"schema"`
	Table           string         `json:"table"`
	CommitTimestamp string         `json:"commit_timestamp"`
	Record          map[string]any `json:"record"`
	OldRecord       map[string]any `json:"old_record"`
}

// ChangeHandler 处理表变更，在读循环中同步调用
type ChangeHandler func(ctx context.Context, event ChangeEvent)

type subscription struct {
	topic   string
	schema  string
	table   string
	event   string
	handler ChangeHandler
}

// Realtime 订阅 Supabase Realtime 的表变更，断线后自动重连并重新加入频道
type Realtime struct {
	url    string
	dialer websocket.Dialer

	ref  atomic.Int64
	mu   sync.Mutex
	subs map[string]subscription
}

// NewRealtime 为 baseURL 对应的项目创建 Realtime 客户端
func NewRealtime(baseURL, apiKey string) *Realtime {
	wsURL := baseURL
	switch {
	case strings.HasPrefix(wsURL, "https://"):
		wsURL = "wss://" + strings.TrimPrefix(wsURL, "https://")
	case strings.HasPrefix(wsURL, "http://"):
		wsURL = "ws://" + strings.TrimPrefix(wsURL, "http://")
	}
	wsURL += "/realtime/v1/websocket?apikey=" + url.QueryEscape(apiKey) + "&vsn=1.0.0"

	return &Realtime{
		url:    wsURL,
		dialer: websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		subs:   make(map[string]subscription),
	}
}

// OnTableChange 注册一个表变更订阅，event 为 "*"、"INSERT"、"UPDATE" 或 "DELETE"。
// 应在 Run 之前调用。
func (r *Realtime) OnTableChange(schema, table, event string, handler ChangeHandler) {
	if schema == "" {
		schema = "public"
	}
	if event == "" {
		event = "*"
	}
	topic := fmt.Sprintf("realtime:%s:%s", schema, table)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs[topic] = subscription{topic: topic, schema: schema, table: table, event: event, handler: handler}
}

// Run 保持连接直到 ctx 结束
func (r *Realtime) Run(ctx context.Context) error {
	delay := time.Second
	for {
		connected, err := r.session(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if connected {
			delay = time.Second
		}
		logger.Ctx(ctx).Warn().Err(err).Dur("retry_in", delay).Msg("realtime connection lost")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		if delay < maxReconnectDelay {
			delay *= 2
		}
	}
}

type wsWriter struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (w *wsWriter) send(msg map[string]any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conn.WriteJSON(msg)
}

func (r *Realtime) nextRef() string {
	return strconv.FormatInt(r.ref.Add(1), 10)
}

func (r *Realtime) session(ctx context.Context) (bool, error) {
	conn, _, err := r.dialer.DialContext(ctx, r.url, nil)
	if err != nil {
		return false, fmt.Errorf("websocket dial: %w", err)
	}
	defer conn.Close()
	w := &wsWriter{conn: conn}

	r.mu.Lock()
	subs := make([]subscription, 0, len(r.subs))
	for _, s := range r.subs {
		subs = append(subs, s)
	}
	r.mu.Unlock()

	for _, s := range subs {
		ref := r.nextRef()
		join := map[string]any{
			"topic": s.topic,
			"event": "phx_join",
			"payload": map[string]any{
				"config": map[string]any{
					"postgres_changes": []map[string]string{
						{"event": s.event, "schema": s.schema, "table": s.table},
					},
				},
			},
			"ref":      ref,
			"join_ref": ref,
		}
		if err := w.send(join); err != nil {
			return true, fmt.Errorf("send join %s: %w", s.topic, err)
		}
	}
	logger.Ctx(ctx).Info().Int("channels", len(subs)).Msg("✅ realtime connected")

	sessionCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go r.heartbeat(sessionCtx, w)
	go func() {
		// ctx 结束时关闭连接，让阻塞的 ReadMessage 返回
		<-sessionCtx.Done()
		conn.Close()
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			return true, err
		}
		r.dispatch(ctx, message)
	}
}

func (r *Realtime) heartbeat(ctx context.Context, w *wsWriter) {
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			msg := map[string]any{"topic": "phoenix", "event": "heartbeat", "payload": map[string]any{}, "ref": r.nextRef()}
			if err := w.send(msg); err != nil {
				return
			}
		}
	}
}

type inbound struct {
	Topic   string `json:"topic"`
	Event   string `json:"event"`
	Payload struct {
		Data ChangeEvent `json:"data"`
	} `json:"payload"`
}

func (r *Realtime) dispatch(ctx context.Context, message []byte) {
	var msg inbound
	if err := json.Unmarshal(message, &msg); err != nil {
		logger.Ctx(ctx).Debug().Err(err).Msg("ignore malformed realtime frame")
		return
	}
	if msg.Event != "postgres_changes" {
		return
	}

	r.mu.Lock()
	sub, ok := r.subs[msg.Topic]
	r.mu.Unlock()
	if !ok {
		return
	}
	if sub.event != "*" && !strings.EqualFold(sub.event, msg.Payload.Data.Type) {
		return
	}
	sub.handler(ctx, msg.Payload.Data)
}
