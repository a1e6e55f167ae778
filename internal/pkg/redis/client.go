// internal/pkg/redis/client.go
package redis

import (
	"context"
	"fmt"
	"sync"

	"fundgate/internal/pkg/logger"

	goredis "github.com/redis/go-redis/v9"
)

// Client 封装 go-redis 客户端，并按名字管理 Lua 脚本
type Client struct {
	rdb     goredis.UniversalClient
	mu      sync.RWMutex
	scripts map[string]*goredis.Script
}

// Config 对应配置文件中的 redis 段
type Config struct {
	Addr     string
	Password string
	DB       int
}

// NewClient 创建客户端并做一次 PING 检查连通性
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}
	logger.Ctx(ctx).Info().Str("addr", cfg.Addr).Msg("✅ Successfully connected to Redis.")
	return Wrap(rdb), nil
}

// Wrap 包装一个已有的 go-redis 客户端
func Wrap(rdb goredis.UniversalClient) *Client {
	return &Client{rdb: rdb, scripts: make(map[string]*goredis.Script)}
}

// LoadScriptFromContent 以 name 注册一段 Lua 脚本，EVALSHA 未命中时 go-redis 会自动回退到 EVAL
func (c *Client) LoadScriptFromContent(name, content string) error {
	if content == "" {
		return fmt.Errorf("script %s is empty", name)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scripts[name] = goredis.NewScript(content)
	return nil
}

// RunScript 执行已注册的脚本
func (c *Client) RunScript(ctx context.Context, name string, keys []string, args ...interface{}) (interface{}, error) {
	c.mu.RLock()
	script, ok := c.scripts[name]
	c.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("script %s is not loaded", name)
	}
	return script.Run(ctx, c.rdb, keys, args...).Result()
}

// GetClient 暴露底层客户端
func (c *Client) GetClient() goredis.UniversalClient {
	return c.rdb
}

// Close 关闭连接池
func (c *Client) Close() error {
	return c.rdb.Close()
}
