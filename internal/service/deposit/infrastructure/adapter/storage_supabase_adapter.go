package adapter

import (
	"context"
	"errors"
	"fmt"

	"fundgate/internal/pkg/supabase"
	"fundgate/internal/service/deposit/domain/port"
)

// SupabaseStorageAdapter 实现了 port.ProofStorage 接口。
type SupabaseStorageAdapter struct {
	client *supabase.Client
}

func NewSupabaseStorageAdapter(client *supabase.Client) *SupabaseStorageAdapter {
	return &SupabaseStorageAdapter{client: client}
}

// Upload 上传成功后返回对象的公开地址
func (a *SupabaseStorageAdapter) Upload(ctx context.Context, bucket, path string, data []byte, contentType string) (string, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	b := a.client.Storage().From(bucket)
	if _, err := b.Upload(ctx, path, data, contentType); err != nil {
		if errors.Is(err, supabase.ErrBucketNotFound) {
			return "", fmt.Errorf("%w: %s", port.ErrBucketNotFound, bucket)
		}
		return "", err
	}
	return b.GetPublicURL(path), nil
}

func (a *SupabaseStorageAdapter) Remove(ctx context.Context, bucket, path string) error {
	_, err := a.client.Storage().From(bucket).Remove(ctx, []string{path})
	return err
}
