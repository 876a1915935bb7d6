// Package zerologadapter provides a logger that writes to a github.com/rs/zerolog.
package zerologadapter

import (
	"github.com/rs/zerolog"
)

type Logger struct {
	logger zerolog.Logger
}

// NewLogger accepts a zerolog.Logger as input and returns a new custom pgwire
// logging fascade as output.
func NewLogger(logger zerolog.Logger) *Logger {
	return &Logger{
		logger: logger.With().Str("module", "pgwire").Logger(),
	}
}

func (l *Logger) Debug(msg string, ctx ...interface{}) {
	l.log(l.logger.Debug(), msg, ctx)
}

func (l *Logger) Info(msg string, ctx ...interface{}) {
	l.log(l.logger.Info(), msg, ctx)
}

func (l *Logger) Warn(msg string, ctx ...interface{}) {
	l.log(l.logger.Warn(), msg, ctx)
}

func (l *Logger) Error(msg string, ctx ...interface{}) {
	l.log(l.logger.Error(), msg, ctx)
}

func (l *Logger) log(event *zerolog.Event, msg string, ctx []interface{}) {
	for i := 0; i+1 < len(ctx); i += 2 {
		key, ok := ctx[i].(string)
		if !ok {
			continue
		}
		event = event.Interface(key, ctx[i+1])
	}
	event.Msg(msg)
}
