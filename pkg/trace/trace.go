package trace

import (
	"context"

	"github.com/google/uuid"
)

type contextKey struct{}

// HeaderName is the request/response header carrying the trace id.
const HeaderName = "X-Trace-ID"

// GenerateTraceID 生成一个新的 trace ID
func GenerateTraceID() string {
	return uuid.NewString()
}

// FromContext 从 context 中获取 trace_id
func FromContext(ctx context.Context) string {
	if traceID, ok := ctx.Value(contextKey{}).(string); ok {
		return traceID
	}
	return ""
}

// WithContext 将 trace_id 添加到 context 中
func WithContext(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, contextKey{}, traceID)
}

// FromHeader returns the incoming trace id, or a fresh one when the header is empty.
func FromHeader(headerValue string) string {
	if headerValue != "" && len(headerValue) <= 128 {
		return headerValue
	}
	return GenerateTraceID()
}
