package port

import (
	"context"
	"errors"
)

// ErrBucketNotFound 上传目标桶不存在，调用方据此切换到备用桶
var ErrBucketNotFound = errors.New("storage bucket not found")

// ProofStorage 是付款凭证对象存储的出站端口。
type ProofStorage interface {
	// Upload 上传对象并返回公开访问地址。
	Upload(ctx context.Context, bucket, path string, data []byte, contentType string) (string, error)

	// Remove 是 Upload 的补偿操作。
	Remove(ctx context.Context, bucket, path string) error
}
