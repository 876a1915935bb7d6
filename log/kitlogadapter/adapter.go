// Package kitlogadapter provides a logger that writes to a github.com/go-kit/log.Logger.
package kitlogadapter

import (
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

type Logger struct {
	l log.Logger
}

func NewLogger(l log.Logger) *Logger {
	return &Logger{l: l}
}

func (l *Logger) Debug(msg string, ctx ...interface{}) {
	level.Debug(l.l).Log(keyvals(msg, ctx)...)
}

func (l *Logger) Info(msg string, ctx ...interface{}) {
	level.Info(l.l).Log(keyvals(msg, ctx)...)
}

func (l *Logger) Warn(msg string, ctx ...interface{}) {
	level.Warn(l.l).Log(keyvals(msg, ctx)...)
}

func (l *Logger) Error(msg string, ctx ...interface{}) {
	level.Error(l.l).Log(keyvals(msg, ctx)...)
}

func keyvals(msg string, ctx []interface{}) []interface{} {
	kv := make([]interface{}, 0, len(ctx)+2)
	kv = append(kv, "msg", msg)
	kv = append(kv, ctx...)
	return kv
}
