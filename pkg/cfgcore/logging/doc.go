// Package logging provides a minimal logging facade for the cfgcore wrapper.
//
// This package defines a Logger interface over go.uber.org/zap. The interface
// is intentionally small to allow applications to provide custom
// implementations for testing, redaction, or integration with existing
// logging systems.
//
// # Logger Interface
//
//	type Logger interface {
//	    Debug(ctx context.Context, msg string, args ...any)
//	    Info(ctx context.Context, msg string, args ...any)
//	    Warn(ctx context.Context, msg string, args ...any)
//	    Error(ctx context.Context, msg string, args ...any)
//	    With(args ...any) Logger
//	}
//
// Arguments are alternating key/value pairs, zap.Field values, or a mix of
// both, as accepted by zap.SugaredLogger.
//
// # Context Fields
//
// Fields attached to a context with WithFields are added to every entry
// logged with that context:
//
//	ctx = logging.WithFields(ctx, zap.String("request", id))
//	logger.Info(ctx, "store opened") // carries "request"
//
// # Default Implementation
//
//	// No-op logger
//	logger := logging.New(nil)
//
//	// Production JSON logger
//	z, _ := zap.NewProduction()
//	logger := logging.New(z)
//
// # Redaction Support
//
//	logger.Debug(ctx, "value set", "key", key, logging.Redacted("value"))
//	// Logs: "value": "[redacted]"
//
// Config values may hold credentials. Never log them in the clear.
package logging
