package zerologadapter_test

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/pgwirekit/pgwire/log/zerologadapter"
)

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := zerologadapter.NewLogger(zerolog.New(&buf))

	logger.Info("hello", "key", 42)

	out := buf.String()
	assert.Contains(t, out, `"message":"hello"`)
	assert.Contains(t, out, `"level":"info"`)
	assert.Contains(t, out, `"key":42`)
	assert.Contains(t, out, `"module":"pgwire"`)
}

func TestLoggerIgnoresDanglingKey(t *testing.T) {
	var buf bytes.Buffer
	logger := zerologadapter.NewLogger(zerolog.New(&buf))

	logger.Error("boom", "only-a-key")

	out := buf.String()
	assert.Contains(t, out, `"message":"boom"`)
	assert.NotContains(t, out, "only-a-key")
}
