package pgwire

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMediatorCopyBufferSize(t *testing.T) {
	t.Parallel()

	m := newMediator()
	assert.Equal(t, defaultCopyBufferSize, m.CopyBufferSize())

	m.SetCopyBufferSize(1024)
	assert.Equal(t, 1024, m.CopyBufferSize())

	m.SetCopyBufferSize(0)
	assert.Equal(t, defaultCopyBufferSize, m.CopyBufferSize())

	m.SetCopyBufferSize(-5)
	assert.Equal(t, defaultCopyBufferSize, m.CopyBufferSize())
}

func TestMediatorReleaseCopyStreamRequiresIdentity(t *testing.T) {
	t.Parallel()

	m := newMediator()
	a := strings.NewReader("a")
	b := strings.NewReader("b")

	m.SetCopyStream(a)
	assert.Same(t, a, m.CopyStream())

	// releasing a stream that is not the active one must not clear it
	m.releaseCopyStream(b)
	assert.Same(t, a, m.CopyStream())

	m.releaseCopyStream(nil)
	assert.Same(t, a, m.CopyStream())

	m.releaseCopyStream(a)
	assert.Nil(t, m.CopyStream())

	// releasing twice is harmless
	m.releaseCopyStream(a)
	assert.Nil(t, m.CopyStream())
}

func TestCopyFormatAccessors(t *testing.T) {
	t.Parallel()

	f := CopyFormat{Binary: true, FieldFormats: []uint16{1, 0, 1}}
	assert.Equal(t, 3, f.FieldCount())
	assert.True(t, f.FieldIsBinary(0))
	assert.False(t, f.FieldIsBinary(1))
	assert.True(t, f.FieldIsBinary(2))
	assert.False(t, f.FieldIsBinary(3))
	assert.False(t, f.FieldIsBinary(-1))

	var zero CopyFormat
	assert.Equal(t, 0, zero.FieldCount())
	assert.False(t, zero.FieldIsBinary(0))
}
