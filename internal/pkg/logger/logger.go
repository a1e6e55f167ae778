// internal/pkg/logger/logger.go
package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// Config 控制全局日志的级别与输出格式
type Config struct {
	Level   string `yaml:"level"`
	Console bool   `yaml:"console"` // true 时输出人类可读格式，本地调试用
}

var base = zerolog.New(os.Stdout).With().Timestamp().Logger()

// Init 根据配置初始化全局 logger，应在服务启动时调用一次
func Init(serviceName string, cfg Config) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339Nano

	var out io.Writer = os.Stdout
	if cfg.Console {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	base = zerolog.New(out).With().Timestamp().Str("service", serviceName).Logger()
}

// SetOutput 替换底层输出，测试中用来捕获日志
func SetOutput(w io.Writer) {
	base = base.Output(w)
}

// L 返回不带请求上下文的基础 logger
func L() *zerolog.Logger {
	return &base
}

// Ctx 返回一个带有 trace_id / span_id 的 logger。
// 没有活跃 span 时退化为基础 logger。
func Ctx(ctx context.Context) *zerolog.Logger {
	if ctx == nil {
		return &base
	}
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return &base
	}
	l := base.With().
		Str("trace_id", sc.TraceID().String()).
		Str("span_id", sc.SpanID().String()).
		Logger()
	return &l
}
