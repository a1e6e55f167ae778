// Package supabase 是对 Supabase REST / Storage / Realtime 接口的轻量封装。
// 所有请求都经过可追踪的 httpclient，并记录远端调用耗时。
package supabase

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"fundgate/internal/pkg/httpclient"
	"fundgate/internal/pkg/metrics"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Client 是 Supabase REST 客户端，可并发使用
type Client struct {
	baseURL string
	apiKey  string
	http    *httpclient.Client
}

// Config 是客户端配置
type Config struct {
	URL     string
	APIKey  string
	Timeout time.Duration
	Tracer  trace.Tracer
}

// New 创建客户端，URL 与 APIKey 必填
func New(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("supabase URL is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("supabase API key is required")
	}
	tracer := cfg.Tracer
	if tracer == nil {
		tracer = otel.Tracer("supabase")
	}
	return &Client{
		baseURL: strings.TrimSuffix(cfg.URL, "/"),
		apiKey:  cfg.APIKey,
		http:    httpclient.NewClient(tracer, cfg.Timeout),
	}, nil
}

// BaseURL 返回项目地址，Realtime 客户端用它推导 websocket 地址
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Response 保存状态码与完整响应体
type Response struct {
	StatusCode int
	Body       []byte
	Headers    http.Header
}

// JSON 把响应体解码到 v
func (r *Response) JSON(v any) error {
	return json.Unmarshal(r.Body, v)
}

// Error 在状态码 >= 400 时返回 *APIError
func (r *Response) Error() error {
	if r.StatusCode >= http.StatusBadRequest {
		return parseAPIError(r.StatusCode, r.Body)
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
}

// do 发送请求并读取完整响应体。HTTP 层面成功但业务失败时同时返回 Response 和 *APIError。
func (c *Client) do(req *http.Request, kind, target string) (*Response, error) {
	start := time.Now()
	defer func() {
		metrics.RemoteCallDuration.WithLabelValues(kind, target).Observe(time.Since(start).Seconds())
	}()

	resp, err := c.http.Do(req, "supabase."+kind+"."+target)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	out := &Response{
		StatusCode: resp.StatusCode,
		Body:       body,
		Headers:    resp.Header,
	}
	if err := out.Error(); err != nil {
		return out, err
	}
	return out, nil
}
