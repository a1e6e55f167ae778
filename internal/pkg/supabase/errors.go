package supabase

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrNoRows 对应 PostgREST 在 Single() 查询无结果时返回的 PGRST116
	ErrNoRows = errors.New("supabase: no rows")
	// ErrUniqueViolation 对应 Postgres 唯一约束冲突 23505
	ErrUniqueViolation = errors.New("supabase: unique violation")
	// ErrBucketNotFound 存储桶不存在
	ErrBucketNotFound = errors.New("supabase: bucket not found")
)

// APIError 是 PostgREST / Storage 返回的错误体
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Details    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("supabase error: %s", e.Message)
	}
	return fmt.Sprintf("supabase error: status %d", e.StatusCode)
}

// Is 让调用方可以用 errors.Is 判断具体错误类型
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNoRows:
		return e.Code == "PGRST116"
	case ErrUniqueViolation:
		return e.Code == "23505"
	case ErrBucketNotFound:
		return strings.Contains(strings.ToLower(e.Message), "bucket not found")
	}
	return false
}

func parseAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}
	var payload struct {
		Code    json.RawMessage `json:"code"`
		Message string          `json:"message"`
		Error   string          `json:"error"`
		Details string          `json:"details"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		apiErr.Message = http.StatusText(status)
		return apiErr
	}
	// code 可能是字符串（PostgREST）也可能缺失（Storage）
	var code string
	if len(payload.Code) > 0 && json.Unmarshal(payload.Code, &code) != nil {
		code = strings.Trim(string(payload.Code), `"`)
	}
	apiErr.Code = code
	apiErr.Message = payload.Message
	if apiErr.Message == "" {
		apiErr.Message = payload.Error
	}
	apiErr.Details = payload.Details
	return apiErr
}
