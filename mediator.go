package pgwire

// defaultCopyBufferSize is the chunk size used when streaming from a
// caller-supplied copy source. Matches the flush threshold PostgreSQL's own
// COPY client code tends to use.
const defaultCopyBufferSize = 65536

// CopyFormat is the server-reported format descriptor of an active copy. It is
// supplied at copy start and read-only afterward.
type CopyFormat struct {
	Binary       bool
	FieldFormats []uint16
}

// FieldCount returns the number of fields in the copy.
func (f CopyFormat) FieldCount() int {
	return len(f.FieldFormats)
}

// FieldIsBinary reports whether field n is in binary format. Out of range
// fields report false.
func (f CopyFormat) FieldIsBinary(n int) bool {
	if n < 0 || n >= len(f.FieldFormats) {
		return false
	}
	return f.FieldFormats[n] == 1
}

// Mediator is the per-connection scratch area shared between the Connector's
// state machine and the caller-facing copy operations. It stores transient
// exchange state and has no behavior beyond storage and simple accessors.
//
// Single-writer rules: copyStream is written only by a copy operation's
// Start/End/Cancel on the caller goroutine; copyFormat is written only by the
// Connector when a copy begins; copyBufferSize is written only by the caller
// before a copy starts. The notification listener never touches the Mediator.
type Mediator struct {
	copyStream     interface{}
	copyBufferSize int
	copyFormat     CopyFormat
}

func newMediator() *Mediator {
	return &Mediator{copyBufferSize: defaultCopyBufferSize}
}

// CopyStream returns the active copy stream reference, or nil when no copy
// operation is in control of the connection's data flow.
func (m *Mediator) CopyStream() interface{} {
	return m.copyStream
}

// SetCopyStream announces that the given stream is now the one in control of
// copy data flow. The Mediator does not own the stream.
func (m *Mediator) SetCopyStream(stream interface{}) {
	m.copyStream = stream
}

// releaseCopyStream clears the active stream reference if it still points at
// stream. A stale reference from a finished or failed copy must never survive.
func (m *Mediator) releaseCopyStream(stream interface{}) {
	if stream != nil && m.copyStream == stream {
		m.copyStream = nil
	}
}

// CopyBufferSize returns the chunk size used when streaming from a
// caller-supplied copy source.
func (m *Mediator) CopyBufferSize() int {
	return m.copyBufferSize
}

// SetCopyBufferSize configures the copy chunk size. It must be called before a
// copy operation's Start to take effect.
func (m *Mediator) SetCopyBufferSize(n int) {
	if n <= 0 {
		n = defaultCopyBufferSize
	}
	m.copyBufferSize = n
}

// CopyFormat returns the format descriptor of the active copy. Only meaningful
// while a copy is in progress.
func (m *Mediator) CopyFormat() CopyFormat {
	return m.copyFormat
}

func (m *Mediator) setCopyFormat(f CopyFormat) {
	m.copyFormat = f
}
