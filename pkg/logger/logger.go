package logger

import (
	"context"
	"os"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap.SugaredLogger with request and trace helpers.
type Logger struct {
	*zap.SugaredLogger
}

// New creates a logger for the given level and environment.
func New(level, environment string) *Logger {
	var config zap.Config

	if environment == "production" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	switch level {
	case "debug":
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		config.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		config.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	logger, err := config.Build()
	if err != nil {
		panic(err)
	}

	return &Logger{SugaredLogger: logger.Sugar()}
}

// NewNop returns a logger that discards everything. Intended for tests.
func NewNop() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar()}
}

// Fatal logs a message and then calls os.Exit(1).
func (l *Logger) Fatal(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Fatalw(msg, keysAndValues...)
	os.Exit(1)
}

// WithFields adds fields to the logger context.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	var args []interface{}
	for k, v := range fields {
		args = append(args, k, v)
	}
	return &Logger{SugaredLogger: l.SugaredLogger.With(args...)}
}

// WithError adds an error field to the logger context.
func (l *Logger) WithError(err error) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.With("error", err)}
}

// ForRequest creates a logger with request-specific fields.
func (l *Logger) ForRequest(requestID, method, path string) *Logger {
	return l.WithFields(map[string]interface{}{
		"request_id": requestID,
		"method":     method,
		"path":       path,
	})
}

// ForUser creates a logger scoped to a user's session.
func (l *Logger) ForUser(userID string) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.With("user_id", userID)}
}

// WithContext adds trace correlation from context (if present).
func (l *Logger) WithContext(ctx context.Context) *Logger {
	span := trace.SpanFromContext(ctx)
	if !span.SpanContext().IsValid() {
		return l
	}

	return l.WithFields(map[string]interface{}{
		"trace_id": span.SpanContext().TraceID().String(),
		"span_id":  span.SpanContext().SpanID().String(),
	})
}

// Zap returns the underlying zap.Logger.
func (l *Logger) Zap() *zap.Logger {
	return l.SugaredLogger.Desugar()
}

// NewLogger creates a Logger from an existing zap.Logger.
func NewLogger(zapLog *zap.Logger) *Logger {
	return &Logger{SugaredLogger: zapLog.Sugar()}
}
