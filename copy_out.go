package pgwire

import (
	"io"

	"github.com/pkg/errors"

	"github.com/pgwirekit/pgwire/wire"
)

// CopyOut is a single COPY TO STDOUT transfer. Create it with
// Connector.CopyOut and drive it with Start. With a caller-supplied dst the
// whole transfer completes inside Start; with a nil dst, Start exposes a
// *CopyOutReader that streams payload bytes until the server finishes.
type CopyOut struct {
	conn *Connector
	sql  string

	stream     interface{}
	ownsStream bool
	reader     *CopyOutReader
}

// CopyOut creates a COPY TO STDOUT operation for sql. If dst is non-nil, all
// copy data payloads are written to it during Start and dst remains owned by
// the caller. If dst is nil, Start exposes an engine-owned *CopyOutReader.
func (c *Connector) CopyOut(sql string, dst io.Writer) *CopyOut {
	op := &CopyOut{conn: c, sql: sql}
	if dst != nil {
		op.stream = dst
	}
	return op
}

// Start executes the command and begins the copy. It is only legal when the
// connection is Ready. If the command turns out not to be a COPY TO STDOUT,
// Start fails with a NotCopyError and the connection returns to Ready.
func (op *CopyOut) Start() (CommandTag, error) {
	if s := op.conn.State(); s != StateReady {
		if s == StateBroken {
			return "", ErrDeadConn
		}
		return "", &StateError{Op: "CopyOut.Start", State: s}
	}

	release := op.conn.blockNotifications()
	defer release()

	if op.stream == nil {
		op.reader = &CopyOutReader{op: op}
		op.stream = op.reader
		op.ownsStream = true
	}
	op.conn.mediator.SetCopyStream(op.stream)

	if err := op.conn.beginCopy(op.sql, StateCopyOut); err != nil {
		op.cleanup()
		return "", err
	}

	if !op.ownsStream {
		commandTag, err := op.pumpToDst(op.stream.(io.Writer))
		op.cleanup()
		return commandTag, err
	}

	return "", nil
}

// pumpToDst receives the entire copy data stream into dst and completes the
// exchange back to Ready.
func (op *CopyOut) pumpToDst(dst io.Writer) (CommandTag, error) {
	c := op.conn

	var commandTag CommandTag
	var opErr error

	for {
		msg, err := c.receiveMessage()
		if err != nil {
			return "", err
		}

		switch msg := msg.(type) {
		case *wire.CopyData:
			if opErr == nil {
				if _, werr := dst.Write(msg.Data); werr != nil {
					opErr = werr
				}
			}
		case *wire.CopyDone:
		case *wire.CommandComplete:
			commandTag = CommandTag(msg.CommandTag)
		case *wire.ErrorResponse:
			if opErr == nil {
				opErr = errorResponseToPgError(msg)
			}
		case *wire.ReadyForQuery:
			c.transition(StateReady)
			return commandTag, opErr
		}
	}
}

// IsActive reports whether this operation is the one currently in control of
// the connection's copy data flow.
func (op *CopyOut) IsActive() bool {
	return op.conn != nil &&
		op.conn.State() == StateCopyOut &&
		op.stream != nil &&
		op.conn.mediator.CopyStream() == op.stream
}

// Reader returns the engine-owned copy source, or nil if the caller supplied a
// destination or the operation is not active.
func (op *CopyOut) Reader() *CopyOutReader {
	if !op.IsActive() {
		return nil
	}
	return op.reader
}

// CopyStream returns the stream installed by Start.
func (op *CopyOut) CopyStream() interface{} {
	return op.stream
}

// Cancel abandons the copy by discarding the rest of the server's data stream.
// The connection returns to Ready. If the operation is not active, Cancel is a
// no-op beyond local cleanup.
func (op *CopyOut) Cancel() error {
	defer op.cleanup()

	if !op.IsActive() {
		return nil
	}

	release := op.conn.blockNotifications()
	defer release()

	_, err := op.conn.drainCopyOut()
	return err
}

func (op *CopyOut) cleanup() {
	if op.conn != nil {
		op.conn.mediator.releaseCopyStream(op.stream)
	}
	if op.ownsStream {
		op.stream = nil
		op.reader = nil
	}
}

// IsBinary reports whether the copy's overall format is binary. Returns false
// when the operation is not active.
func (op *CopyOut) IsBinary() bool {
	if !op.IsActive() {
		return false
	}
	return op.conn.mediator.CopyFormat().Binary
}

// FieldCount returns the number of fields in the copy, or -1 when the
// operation is not active.
func (op *CopyOut) FieldCount() int {
	if !op.IsActive() {
		return -1
	}
	return op.conn.mediator.CopyFormat().FieldCount()
}

// FieldIsBinary reports whether field n is in binary format. Returns false
// when the operation is not active or n is out of range.
func (op *CopyOut) FieldIsBinary(n int) bool {
	if !op.IsActive() {
		return false
	}
	return op.conn.mediator.CopyFormat().FieldIsBinary(n)
}

// CopyOutReader is the engine-owned readable copy source exposed by Start when
// the caller supplies no destination. Read returns io.EOF after the server
// finishes the copy, at which point the connection is Ready again.
type CopyOutReader struct {
	op      *CopyOut
	pending []byte
	done    bool
}

func (r *CopyOutReader) Read(p []byte) (int, error) {
	if len(r.pending) > 0 {
		n := copy(p, r.pending)
		r.pending = r.pending[n:]
		return n, nil
	}
	if r.done {
		return 0, io.EOF
	}
	if !r.op.IsActive() {
		return 0, errors.New("copy is not active")
	}

	c := r.op.conn

	release := c.blockNotifications()
	defer release()

	for {
		msg, err := c.receiveMessage()
		if err != nil {
			return 0, err
		}

		switch msg := msg.(type) {
		case *wire.CopyData:
			n := copy(p, msg.Data)
			if n < len(msg.Data) {
				r.pending = append(r.pending[:0], msg.Data[n:]...)
			}
			if n > 0 {
				return n, nil
			}
		case *wire.CopyDone:
			err := r.finish()
			if err != nil {
				return 0, err
			}
			return 0, io.EOF
		case *wire.ErrorResponse:
			opErr := errorResponseToPgError(msg)
			r.finish()
			return 0, opErr
		}
	}
}

// finish drains the trailing CommandComplete/ReadyForQuery exchange, restores
// Ready, and releases the operation.
func (r *CopyOutReader) finish() error {
	c := r.op.conn
	r.done = true

	defer r.op.cleanup()

	for {
		msg, err := c.receiveMessage()
		if err != nil {
			return err
		}

		switch msg.(type) {
		case *wire.CopyData, *wire.CopyDone, *wire.CommandComplete, *wire.ErrorResponse:
		case *wire.ReadyForQuery:
			c.transition(StateReady)
			return nil
		}
	}
}

// Close abandons the rest of the stream, if any, and restores Ready. Safe to
// call after EOF.
func (r *CopyOutReader) Close() error {
	if r.done {
		return nil
	}
	return r.op.Cancel()
}

// drainCopyOut discards the remainder of a copy-out stream through
// ReadyForQuery.
func (c *Connector) drainCopyOut() (CommandTag, error) {
	var commandTag CommandTag
	var pgErr error

	for {
		msg, err := c.receiveMessage()
		if err != nil {
			return "", err
		}

		switch msg := msg.(type) {
		case *wire.CopyData, *wire.CopyDone:
		case *wire.CommandComplete:
			commandTag = CommandTag(msg.CommandTag)
		case *wire.ErrorResponse:
			if pgErr == nil {
				pgErr = errorResponseToPgError(msg)
			}
		case *wire.ReadyForQuery:
			c.transition(StateReady)
			return commandTag, pgErr
		}
	}
}
