// Package testingadapter provides a logger that writes to a test or benchmark
// log.
package testingadapter

// TestingLogger interface defines the subset of testing.TB methods used by
// this adapter.
type TestingLogger interface {
	Log(args ...interface{})
}

type Logger struct {
	t TestingLogger
}

func NewLogger(t TestingLogger) *Logger {
	return &Logger{t: t}
}

func (l *Logger) Debug(msg string, ctx ...interface{}) {
	l.log("DEBUG", msg, ctx)
}

func (l *Logger) Info(msg string, ctx ...interface{}) {
	l.log("INFO", msg, ctx)
}

func (l *Logger) Warn(msg string, ctx ...interface{}) {
	l.log("WARN", msg, ctx)
}

func (l *Logger) Error(msg string, ctx ...interface{}) {
	l.log("ERROR", msg, ctx)
}

func (l *Logger) log(lvl, msg string, ctx []interface{}) {
	args := make([]interface{}, 0, len(ctx)+2)
	args = append(args, lvl, msg)
	args = append(args, ctx...)
	l.t.Log(args...)
}
