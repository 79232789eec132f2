package logging

import (
	"context"

	"go.uber.org/zap"
)

type ctxKey string

const (
	// RequestIDKey is the context key for request ID.
	RequestIDKey ctxKey = "request_id"
	// PictureKey is the context key for the configured picture name.
	PictureKey ctxKey = "picture"
)

// WithContext creates a child logger with request_id and picture taken from
// ctx when present.
func WithContext(logger Logger, ctx context.Context) Logger {
	if ctx == nil {
		return logger
	}

	var fields []zap.Field
	if requestID := stringValue(ctx, RequestIDKey); requestID != "" {
		fields = append(fields, zap.String("request_id", requestID))
	}
	if picture := stringValue(ctx, PictureKey); picture != "" {
		fields = append(fields, zap.String("picture", picture))
	}

	if len(fields) == 0 {
		return logger
	}
	return logger.With(fields...)
}

func stringValue(ctx context.Context, key ctxKey) string {
	if s, ok := ctx.Value(key).(string); ok {
		return s
	}
	return ""
}

// GetRequestID extracts request ID from context.
func GetRequestID(ctx context.Context) string {
	return stringValue(ctx, RequestIDKey)
}

// SetRequestID adds request ID to context.
func SetRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// SetPicture adds the picture name to context.
func SetPicture(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, PictureKey, name)
}

type loggerKey struct{}

// FromContext returns the Logger stored in the context, or the global logger if none.
func FromContext(ctx context.Context) Logger {
	if ctx == nil {
		return Global()
	}
	if l, ok := ctx.Value(loggerKey{}).(Logger); ok {
		return l
	}
	return Global()
}

// ToContext stores the Logger in the context.
func ToContext(ctx context.Context, logger Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}
