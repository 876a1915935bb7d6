// Package logrusadapter provides a logger that writes to a github.com/sirupsen/logrus.Logger.
package logrusadapter

import (
	"github.com/sirupsen/logrus"
)

type Logger struct {
	l logrus.FieldLogger
}

func NewLogger(l logrus.FieldLogger) *Logger {
	return &Logger{l: l}
}

func (l *Logger) Debug(msg string, ctx ...interface{}) {
	l.l.WithFields(toFields(ctx)).Debug(msg)
}

func (l *Logger) Info(msg string, ctx ...interface{}) {
	l.l.WithFields(toFields(ctx)).Info(msg)
}

func (l *Logger) Warn(msg string, ctx ...interface{}) {
	l.l.WithFields(toFields(ctx)).Warn(msg)
}

func (l *Logger) Error(msg string, ctx ...interface{}) {
	l.l.WithFields(toFields(ctx)).Error(msg)
}

func toFields(ctx []interface{}) logrus.Fields {
	fields := make(logrus.Fields, len(ctx)/2)
	for i := 0; i+1 < len(ctx); i += 2 {
		key, ok := ctx[i].(string)
		if !ok {
			continue
		}
		fields[key] = ctx[i+1]
	}
	return fields
}
