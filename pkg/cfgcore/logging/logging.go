package logging

import (
	"context"

	"go.uber.org/zap"
)

const redactedPlaceholder = "[redacted]"

// Logger defines the subset of logging functionality used by the cfgcore
// wrapper. The interface is intentionally small so applications can provide
// their own implementation for testing or redaction policies.
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)
	With(args ...any) Logger
}

// New returns a Logger backed by the provided zap.Logger. Passing nil binds to
// a no-op logger.
func New(logger *zap.Logger) Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &zapLogger{logger: logger.Sugar()}
}

type zapLogger struct {
	logger *zap.SugaredLogger
}

// from returns the logger carrying the fields attached to ctx.
func (l *zapLogger) from(ctx context.Context) *zap.SugaredLogger {
	fields := FieldsFrom(ctx)
	if len(fields) == 0 {
		return l.logger
	}
	args := make([]any, len(fields))
	for i, f := range fields {
		args[i] = f
	}
	return l.logger.With(args...)
}

func (l *zapLogger) Debug(ctx context.Context, msg string, args ...any) {
	l.from(ctx).Debugw(msg, args...)
}

func (l *zapLogger) Info(ctx context.Context, msg string, args ...any) {
	l.from(ctx).Infow(msg, args...)
}

func (l *zapLogger) Warn(ctx context.Context, msg string, args ...any) {
	l.from(ctx).Warnw(msg, args...)
}

func (l *zapLogger) Error(ctx context.Context, msg string, args ...any) {
	l.from(ctx).Errorw(msg, args...)
}

func (l *zapLogger) With(args ...any) Logger {
	return &zapLogger{logger: l.logger.With(args...)}
}

type fieldsKey struct{}

// WithFields returns a context whose log entries carry fields in addition to
// any already attached to ctx.
func WithFields(ctx context.Context, fields ...zap.Field) context.Context {
	if len(fields) == 0 {
		return ctx
	}
	prev := FieldsFrom(ctx)
	merged := make([]zap.Field, 0, len(prev)+len(fields))
	merged = append(merged, prev...)
	merged = append(merged, fields...)
	return context.WithValue(ctx, fieldsKey{}, merged)
}

// FieldsFrom returns the fields attached to ctx by WithFields.
func FieldsFrom(ctx context.Context) []zap.Field {
	if ctx == nil {
		return nil
	}
	fields, _ := ctx.Value(fieldsKey{}).([]zap.Field)
	return fields
}

// Redacted marks attributes that contain sensitive information. Callers must
// avoid logging raw config values; instead, include this field as a reminder
// that the value was intentionally removed.
func Redacted(key string) zap.Field {
	return zap.String(key, redactedPlaceholder)
}

// Placeholder returns the canonical string that represents a redacted value.
func Placeholder() string {
	return redactedPlaceholder
}
