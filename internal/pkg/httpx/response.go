// Package httpx 放各个 HTTP handler 共用的响应与错误映射逻辑
package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"fundgate/internal/pkg/appctx"
	"fundgate/internal/pkg/logger"

	"go.opentelemetry.io/otel/trace"
)

// StatusMapper 把业务错误映射为 HTTP 状态码，返回 0 表示未识别
type StatusMapper func(err error) int

// WriteJSON 以 JSON 写出响应体
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// WriteError 写出 {"error": msg}
func WriteError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, map[string]string{"error": msg})
}

// Fail 统一处理错误响应。未识别的错误按 500 处理，只记录日志不暴露细节。
func Fail(w http.ResponseWriter, r *http.Request, err error, mapper StatusMapper) {
	status := 0
	switch {
	case errors.Is(err, appctx.ErrUnauthenticated):
		status = http.StatusUnauthorized
	case errors.Is(err, appctx.ErrForbidden):
		status = http.StatusForbidden
	case mapper != nil:
		status = mapper(err)
	}

	if status == 0 || status >= http.StatusInternalServerError {
		trace.SpanFromContext(r.Context()).RecordError(err)
		logger.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	if status == 0 {
		WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}
	WriteError(w, status, err.Error())
}

// Decode 解析 JSON 请求体
func Decode(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
