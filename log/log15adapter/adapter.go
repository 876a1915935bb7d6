// Package log15adapter provides a logger that writes to a gopkg.in/inconshreveable/log15.v2.Logger.
package log15adapter

import (
	log15 "gopkg.in/inconshreveable/log15.v2"
)

type Logger struct {
	l log15.Logger
}

func NewLogger(l log15.Logger) *Logger {
	return &Logger{l: l}
}

func (l *Logger) Debug(msg string, ctx ...interface{}) {
	l.l.Debug(msg, ctx...)
}

func (l *Logger) Info(msg string, ctx ...interface{}) {
	l.l.Info(msg, ctx...)
}

func (l *Logger) Warn(msg string, ctx ...interface{}) {
	l.l.Warn(msg, ctx...)
}

func (l *Logger) Error(msg string, ctx ...interface{}) {
	l.l.Error(msg, ctx...)
}
