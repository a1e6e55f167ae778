package interfaces

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"fundgate/internal/pkg/appctx"
	"fundgate/internal/pkg/httpx"
	"fundgate/internal/pkg/logger"
	"fundgate/internal/pkg/supabase"
	"fundgate/internal/service/deposit/domain"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// 跨域由 cors 中间件和 token 校验负责
	CheckOrigin: func(r *http.Request) bool { return true },
}

// FeedMessage 是推送给管理后台的一条变更
type FeedMessage struct {
	Event   string                 `json:"event"`
	Deposit map[string]interface{} `json:"deposit"`
}

// FeedHub 维护所有管理员的 websocket 连接，并负责广播充值申请的变更
type FeedHub struct {
	auth *appctx.Provider

	clients    map[*feedClient]struct{}
	register   chan *feedClient
	unregister chan *feedClient
	broadcast  chan []byte
	done       chan struct{}
	lock       sync.RWMutex
}

func NewFeedHub(auth *appctx.Provider) *FeedHub {
	return &FeedHub{
		auth:       auth,
		clients:    make(map[*feedClient]struct{}),
		register:   make(chan *feedClient),
		unregister: make(chan *feedClient),
		broadcast:  make(chan []byte, 64),
		done:       make(chan struct{}),
	}
}

// Run 直到 ctx 结束，结束时关闭所有连接
func (h *FeedHub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.lock.Lock()
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			h.lock.Unlock()
			return
		case c := <-h.register:
			h.lock.Lock()
			h.clients[c] = struct{}{}
			h.lock.Unlock()
			logger.Ctx(ctx).Info().Str("admin", c.userID).Msg("Deposit feed client registered")
		case c := <-h.unregister:
			h.lock.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.lock.Unlock()
		case msg := <-h.broadcast:
			h.lock.Lock()
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// 慢消费者直接断开
					delete(h.clients, c)
					close(c.send)
				}
			}
			h.lock.Unlock()
		}
	}
}

// Clients 返回当前连接数
func (h *FeedHub) Clients() int {
	h.lock.RLock()
	defer h.lock.RUnlock()
	return len(h.clients)
}

// Broadcast 把消息排队广播，队列满时丢弃
func (h *FeedHub) Broadcast(ctx context.Context, msg FeedMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		logger.Ctx(ctx).Error().Err(err).Msg("Failed to encode feed message")
		return
	}
	select {
	case h.broadcast <- data:
	default:
		logger.Ctx(ctx).Warn().Str("event", msg.Event).Msg("Deposit feed queue full, dropping message")
	}
}

// HandleChange 作为 Realtime 的 deposit_requests 订阅回调
func (h *FeedHub) HandleChange(ctx context.Context, ev supabase.ChangeEvent) {
	record := ev.Record
	if ev.Type == "DELETE" {
		record = ev.OldRecord
	}
	h.Broadcast(ctx, FeedMessage{Event: ev.Type, Deposit: record})
}

// PublishDepositEvent 让自建后端模式下没有 Realtime 时也能推送变更
func (h *FeedHub) PublishDepositEvent(ctx context.Context, e domain.DepositEvent) error {
	status := domain.StatusPending
	switch e.Type {
	case domain.EventDepositApproved:
		status = domain.StatusApproved
	case domain.EventDepositRejected:
		status = domain.StatusRejected
	}
	h.Broadcast(ctx, FeedMessage{Event: e.Type, Deposit: map[string]interface{}{
		"id":      e.RequestID,
		"user_id": e.UserID,
		"amount":  e.Amount.String(),
		"status":  string(status),
	}})
	return nil
}

// RegisterRoutes 浏览器的 websocket 无法设置请求头，所以这里自行校验 access_token
func (h *FeedHub) RegisterRoutes(r chi.Router) {
	r.Get("/api/v1/admin/deposits/feed", h.serveWs)
}

func (h *FeedHub) serveWs(w http.ResponseWriter, r *http.Request) {
	bearer := r.Header.Get("Authorization")
	if bearer == "" {
		bearer = r.URL.Query().Get("access_token")
	}
	session, err := h.auth.Authenticate(r.Context(), bearer)
	if err == nil {
		err = appctx.RequireAdmin(session)
	}
	if err != nil {
		httpx.Fail(w, r, err, nil)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Ctx(r.Context()).Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	c := &feedClient{hub: h, conn: conn, send: make(chan []byte, 32), userID: session.UserID}
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}

type feedClient struct {
	hub    *FeedHub
	conn   *websocket.Conn
	send   chan []byte
	userID string
}

// readPump 只处理 pong 与关闭，管理端不会发送业务消息
func (c *feedClient) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *feedClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
