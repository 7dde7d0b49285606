package util

import (
	"context"

	"github.com/google/uuid"
)

// contextKey 是私有类型，避免和其它包的 context key 冲突
type contextKey struct{}

var traceIDKey contextKey

// NewTraceID 为一次 API 请求生成追踪 ID
// 同一次请求产生的所有日志共享这个 ID，排查时可以串成一条链
func NewTraceID() string {
	return uuid.NewString()
}

// ContextWithTraceID 把追踪 ID 挂到请求的 Context 上
func ContextWithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

// TraceIDFromContext 取出请求的追踪 ID，没有时返回 false
func TraceIDFromContext(ctx context.Context) (string, bool) {
	traceID, ok := ctx.Value(traceIDKey).(string)
	return traceID, ok
}
