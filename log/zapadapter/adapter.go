// Package zapadapter provides a logger that writes to a go.uber.org/zap.Logger.
package zapadapter

import (
	"go.uber.org/zap"
)

type Logger struct {
	logger *zap.Logger
}

func NewLogger(logger *zap.Logger) *Logger {
	return &Logger{logger: logger.WithOptions(zap.AddCallerSkip(1))}
}

func (l *Logger) Debug(msg string, ctx ...interface{}) {
	l.logger.Debug(msg, toFields(ctx)...)
}

func (l *Logger) Info(msg string, ctx ...interface{}) {
	l.logger.Info(msg, toFields(ctx)...)
}

func (l *Logger) Warn(msg string, ctx ...interface{}) {
	l.logger.Warn(msg, toFields(ctx)...)
}

func (l *Logger) Error(msg string, ctx ...interface{}) {
	l.logger.Error(msg, toFields(ctx)...)
}

func toFields(ctx []interface{}) []zap.Field {
	fields := make([]zap.Field, 0, len(ctx)/2)
	for i := 0; i+1 < len(ctx); i += 2 {
		key, ok := ctx[i].(string)
		if !ok {
			continue
		}
		fields = append(fields, zap.Any(key, ctx[i+1]))
	}
	return fields
}
