package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

func (c *Client) Storage() *StorageClient {
	return &StorageClient{client: c}
}

// StorageClient 对应 /storage/v1 接口
type StorageClient struct {
	client *Client
}

// From 返回指定桶的客户端
func (s *StorageClient) From(bucket string) *BucketClient {
	return &BucketClient{client: s.client, bucket: bucket}
}

type BucketClient struct {
	client *Client
	bucket string
}

func escapePath(path string) string {
	segments := strings.Split(path, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}

// Upload 上传对象。桶不存在时返回的错误满足 errors.Is(err, ErrBucketNotFound)。
func (b *BucketClient) Upload(ctx context.Context, path string, data []byte, contentType string) (*Response, error) {
	reqURL := fmt.Sprintf("%s/storage/v1/object/%s/%s", b.client.baseURL, b.bucket, escapePath(path))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	b.client.setHeaders(req)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "false")

	return b.client.do(req, "storage", b.bucket)
}

// Remove 批量删除对象
func (b *BucketClient) Remove(ctx context.Context, paths []string) (*Response, error) {
	reqURL := fmt.Sprintf("%s/storage/v1/object/%s", b.client.baseURL, b.bucket)

	body, err := json.Marshal(map[string][]string{"prefixes": paths})
	if err != nil {
		return nil, fmt.Errorf("marshal data: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, reqURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	b.client.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	return b.client.do(req, "storage", b.bucket)
}

// GetPublicURL 拼出公开桶里对象的访问地址，不发请求
func (b *BucketClient) GetPublicURL(path string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", b.client.baseURL, b.bucket, escapePath(path))
}
