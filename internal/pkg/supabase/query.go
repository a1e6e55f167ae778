package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// From 针对一张表开始构造查询
func (c *Client) From(table string) *QueryBuilder {
	return &QueryBuilder{client: c, table: table}
}

type filter struct {
	column string
	expr   string
}

// QueryBuilder 拼装 PostgREST 查询参数
type QueryBuilder struct {
	client  *Client
	table   string
	columns string
	filters []filter
	orders  []string
	limit   int
	single  bool
}

func (q *QueryBuilder) Select(columns string) *QueryBuilder {
	q.columns = columns
	return q
}

// Eq 追加 eq 过滤
func (q *QueryBuilder) Eq(column string, value any) *QueryBuilder {
	q.filters = append(q.filters, filter{column, fmt.Sprintf("eq.%v", value)})
	return q
}

// Is 追加 is 过滤，value 只能是 null、true 或 false
func (q *QueryBuilder) Is(column string, value any) *QueryBuilder {
	q.filters = append(q.filters, filter{column, fmt.Sprintf("is.%v", value)})
	return q
}

// Order 追加排序，可多次调用
func (q *QueryBuilder) Order(column string, ascending bool) *QueryBuilder {
	dir := "asc"
	if !ascending {
		dir = "desc"
	}
	q.orders = append(q.orders, column+"."+dir)
	return q
}

func (q *QueryBuilder) Limit(n int) *QueryBuilder {
	q.limit = n
	return q
}

// Single 期望恰好一行，无结果时返回可被 errors.Is(err, ErrNoRows) 识别的错误
func (q *QueryBuilder) Single() *QueryBuilder {
	q.single = true
	return q
}

func (q *QueryBuilder) endpoint(withSelect bool) string {
	params := url.Values{}
	if withSelect && q.columns != "" {
		params.Set("select", q.columns)
	}
	for _, f := range q.filters {
		params.Add(f.column, f.expr)
	}
	if withSelect {
		if len(q.orders) > 0 {
			params.Set("order", strings.Join(q.orders, ","))
		}
		if q.limit > 0 {
			params.Set("limit", strconv.Itoa(q.limit))
		}
	}
	reqURL := fmt.Sprintf("%s/rest/v1/%s", q.client.baseURL, q.table)
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}
	return reqURL
}

// Execute 发送 GET 查询
func (q *QueryBuilder) Execute(ctx context.Context) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, q.endpoint(true), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	q.client.setHeaders(req)
	if q.single {
		req.Header.Set("Accept", "application/vnd.pgrst.object+json")
	}
	return q.client.do(req, "select", q.table)
}

// ExecuteInto 执行查询并把结果解码到 dest
func (q *QueryBuilder) ExecuteInto(ctx context.Context, dest any) error {
	resp, err := q.Execute(ctx)
	if err != nil {
		return err
	}
	if err := resp.JSON(dest); err != nil {
		return fmt.Errorf("decode %s rows: %w", q.table, err)
	}
	return nil
}

// ExecuteInsert 插入并返回写入后的行
func (q *QueryBuilder) ExecuteInsert(ctx context.Context, data any) (*Response, error) {
	return q.write(ctx, http.MethodPost, q.endpoint(false), data, "insert")
}

// ExecuteUpdate 按过滤条件更新，没有过滤条件时拒绝执行
func (q *QueryBuilder) ExecuteUpdate(ctx context.Context, data any) (*Response, error) {
	if len(q.filters) == 0 {
		return nil, fmt.Errorf("refusing unfiltered update on %s", q.table)
	}
	return q.write(ctx, http.MethodPatch, q.endpoint(false), data, "update")
}

// ExecuteDelete 按过滤条件删除，同样拒绝无条件删除
func (q *QueryBuilder) ExecuteDelete(ctx context.Context) (*Response, error) {
	if len(q.filters) == 0 {
		return nil, fmt.Errorf("refusing unfiltered delete on %s", q.table)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, q.endpoint(false), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	q.client.setHeaders(req)
	req.Header.Set("Prefer", "return=representation")
	return q.client.do(req, "delete", q.table)
}

func (q *QueryBuilder) write(ctx context.Context, method, reqURL string, data any, kind string) (*Response, error) {
	body, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal data: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	q.client.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=representation")
	return q.client.do(req, kind, q.table)
}

// RPC 调用 /rest/v1/rpc 下的存储过程，params 为 nil 时发送空对象
func (c *Client) RPC(ctx context.Context, fn string, params any) (*Response, error) {
	reqURL := fmt.Sprintf("%s/rest/v1/rpc/%s", c.baseURL, fn)

	if params == nil {
		params = map[string]any{}
	}
	data, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("marshal params: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, "rpc", fn)
}
