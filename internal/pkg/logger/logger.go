// internal/pkg/logger/logger.go
package logger

import (
	"context"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// base 是进程级的根 logger，由 Init 初始化。
var base = zerolog.New(os.Stdout).With().Timestamp().Logger()

type requestIDKey struct{}

// Init 初始化根 logger，附加服务名，并从 LOG_LEVEL 环境变量读取日志级别。
func Init(serviceName string) {
	level := zerolog.InfoLevel
	if lvl, err := zerolog.ParseLevel(strings.ToLower(os.Getenv("LOG_LEVEL"))); err == nil && lvl != zerolog.NoLevel {
		level = lvl
	}
	base = zerolog.New(os.Stdout).
		Level(level).
		With().
		Timestamp().
		Str("service", serviceName).
		Logger()
}

// WithRequestID 为一次请求生成唯一的 request_id 并存入上下文。
// 如果上下文中已经存在 request_id，则原样返回。
func WithRequestID(ctx context.Context) context.Context {
	if _, ok := ctx.Value(requestIDKey{}).(string); ok {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey{}, uuid.New().String())
}

// Ctx 返回一个绑定了上下文关联字段（request_id、trace_id）的 logger。
// 业务代码统一通过 logger.Ctx(ctx).Info()... 的方式打日志。
func Ctx(ctx context.Context) *zerolog.Logger {
	l := base
	if reqID, ok := ctx.Value(requestIDKey{}).(string); ok {
		l = l.With().Str("request_id", reqID).Logger()
	}
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		l = l.With().Str("trace_id", sc.TraceID().String()).Logger()
	}
	return &l
}

// Logger 返回不带请求上下文的根 logger，用于启动/关停等进程级日志。
func Logger() *zerolog.Logger {
	return &base
}
