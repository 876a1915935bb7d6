package pgwire

import (
	"io"

	"github.com/jackc/pgio"
	"github.com/pkg/errors"

	"github.com/pgwirekit/pgwire/wire"
)

// CopyIn is a single COPY FROM STDIN transfer. Create it with
// Connector.CopyIn, drive it with Start, and finish it with End or Cancel.
// End and Cancel are safe to call defensively: on an operation that never
// became active they perform only local cleanup and no wire traffic.
type CopyIn struct {
	conn *Connector
	sql  string

	stream     interface{}
	ownsStream bool
	writer     *CopyInWriter
}

// CopyIn creates a COPY FROM STDIN operation for sql. If src is non-nil it is
// pumped to the server during Start in Mediator.CopyBufferSize chunks and
// remains owned by the caller. If src is nil, Start exposes a *CopyInWriter
// that forwards writes as copy data; that stream is owned by the engine and
// released when the operation ends.
func (c *Connector) CopyIn(sql string, src io.Reader) *CopyIn {
	op := &CopyIn{conn: c, sql: sql}
	if src != nil {
		op.stream = src
	}
	return op
}

// Start executes the command and begins the copy. It is only legal when the
// connection is Ready. If the command turns out not to be a COPY FROM STDIN,
// Start fails with a NotCopyError and the connection returns to Ready.
func (op *CopyIn) Start() error {
	if s := op.conn.State(); s != StateReady {
		if s == StateBroken {
			return ErrDeadConn
		}
		return &StateError{Op: "CopyIn.Start", State: s}
	}

	release := op.conn.blockNotifications()
	defer release()

	if op.stream == nil {
		op.writer = &CopyInWriter{op: op}
		op.stream = op.writer
		op.ownsStream = true
	}
	op.conn.mediator.SetCopyStream(op.stream)

	if err := op.conn.beginCopy(op.sql, StateCopyIn); err != nil {
		op.cleanup()
		return err
	}

	if !op.ownsStream {
		if err := op.pumpSource(op.stream.(io.Reader)); err != nil {
			op.cleanup()
			return err
		}
	}

	return nil
}

// pumpSource streams the caller-supplied source to the server. A source read
// failure aborts the copy with the read error as the failure message and the
// connection returns to Ready; the read error is the one reported.
func (op *CopyIn) pumpSource(src io.Reader) error {
	err := op.conn.pumpCopySource(src)
	if err == nil {
		return nil
	}
	if op.conn.State() == StateCopyIn {
		op.conn.cancelCopyIn(err.Error())
	}
	return err
}

// IsActive reports whether this operation is the one currently in control of
// the connection's copy data flow. It is the sole gate for End and Cancel.
func (op *CopyIn) IsActive() bool {
	return op.conn != nil &&
		op.conn.State() == StateCopyIn &&
		op.stream != nil &&
		op.conn.mediator.CopyStream() == op.stream
}

// End completes the copy and returns the command tag the server reports for
// it. If the operation is not active, End is a no-op beyond local cleanup.
func (op *CopyIn) End() (CommandTag, error) {
	defer op.cleanup()

	if !op.IsActive() {
		return "", nil
	}

	release := op.conn.blockNotifications()
	defer release()

	return op.conn.endCopyIn()
}

// Cancel aborts the copy, reporting message as the failure cause. The server
// responds with a failed command carrying message, which Cancel returns. If
// the operation is not active, Cancel is a no-op beyond local cleanup.
func (op *CopyIn) Cancel(message string) error {
	defer op.cleanup()

	if !op.IsActive() {
		return nil
	}

	release := op.conn.blockNotifications()
	defer release()

	return op.conn.cancelCopyIn(message)
}

// cleanup runs unconditionally on every terminal path. A failed or finished
// copy must not leave the Mediator pointing at a stale stream.
func (op *CopyIn) cleanup() {
	if op.conn != nil {
		op.conn.mediator.releaseCopyStream(op.stream)
	}
	if op.ownsStream {
		op.stream = nil
		op.writer = nil
	}
}

// CopyStream returns the stream installed by Start: the caller's source if one
// was supplied, the engine's writer otherwise. Nil before Start, and nil again
// after End/Cancel when the engine owned the stream.
func (op *CopyIn) CopyStream() interface{} {
	return op.stream
}

// Writer returns the engine-owned copy sink, or nil if the caller supplied a
// source or the operation is not active.
func (op *CopyIn) Writer() *CopyInWriter {
	if !op.IsActive() {
		return nil
	}
	return op.writer
}

// IsBinary reports whether the copy's overall format is binary. Returns false
// when the operation is not active.
func (op *CopyIn) IsBinary() bool {
	if !op.IsActive() {
		return false
	}
	return op.conn.mediator.CopyFormat().Binary
}

// FieldCount returns the number of fields in the copy, or -1 when the
// operation is not active.
func (op *CopyIn) FieldCount() int {
	if !op.IsActive() {
		return -1
	}
	return op.conn.mediator.CopyFormat().FieldCount()
}

// FieldIsBinary reports whether field n is in binary format. Returns false
// when the operation is not active or n is out of range.
func (op *CopyIn) FieldIsBinary(n int) bool {
	if !op.IsActive() {
		return false
	}
	return op.conn.mediator.CopyFormat().FieldIsBinary(n)
}

// CopyInWriter is the engine-owned writable copy sink exposed by Start when
// the caller supplies no source. Each Write is forwarded to the server as one
// copy data message.
type CopyInWriter struct {
	op *CopyIn
}

func (w *CopyInWriter) Write(p []byte) (int, error) {
	if !w.op.IsActive() {
		return 0, errors.New("copy is not active")
	}
	if len(p) == 0 {
		return 0, nil
	}

	buf := make([]byte, 0, len(p)+5)
	buf = append(buf, 'd')
	buf = pgio.AppendInt32(buf, int32(len(p)+4))
	buf = append(buf, p...)

	if err := w.op.conn.frontend.SendUnbufferedEncodedCopyData(buf); err != nil {
		w.op.conn.die(err)
		return 0, err
	}
	return len(p), nil
}

// beginCopy runs sql and waits for the server to open a copy in the want
// direction. Any other outcome is drained to ReadyForQuery and reported as a
// NotCopyError or the server's error.
func (c *Connector) beginCopy(sql string, want State) error {
	c.transition(StateExecuting)

	c.frontend.Send(&wire.Query{String: sql})
	if err := c.frontend.Flush(); err != nil {
		c.die(err)
		return err
	}

	var pgErr error

	for {
		msg, err := c.receiveMessage()
		if err != nil {
			return err
		}

		switch msg := msg.(type) {
		case *wire.CopyInResponse:
			if want == StateCopyIn {
				c.mediator.setCopyFormat(copyFormat(msg.OverallFormat, msg.ColumnFormatCodes))
				c.transition(StateCopyIn)
				return nil
			}
			c.frontend.Send(&wire.CopyFail{Message: "COPY TO STDOUT expected"})
			if err := c.frontend.Flush(); err != nil {
				c.die(err)
				return err
			}
		case *wire.CopyOutResponse:
			if want == StateCopyOut {
				c.mediator.setCopyFormat(copyFormat(msg.OverallFormat, msg.ColumnFormatCodes))
				c.transition(StateCopyOut)
				return nil
			}
			// wrong direction; the data must be drained before ReadyForQuery
		case *wire.CommandComplete, *wire.RowDescription, *wire.DataRow,
			*wire.EmptyQueryResponse, *wire.CopyData, *wire.CopyDone:
		case *wire.ErrorResponse:
			if pgErr == nil {
				pgErr = errorResponseToPgError(msg)
			}
		case *wire.ReadyForQuery:
			c.transition(StateReady)
			if pgErr != nil {
				return pgErr
			}
			return &NotCopyError{Sql: sql}
		}
	}
}

func copyFormat(overall byte, codes []uint16) CopyFormat {
	return CopyFormat{Binary: overall == 1, FieldFormats: codes}
}

// pumpCopySource reads src in CopyBufferSize chunks and forwards each chunk as
// one copy data message. Returns nil at EOF, the read error on source failure,
// or breaks the connection on a write failure.
func (c *Connector) pumpCopySource(src io.Reader) error {
	buf := make([]byte, 5, c.mediator.CopyBufferSize()+5)
	buf[0] = 'd'

	for {
		n, err := src.Read(buf[5:cap(buf)])
		if n > 0 {
			pgio.SetInt32(buf[1:5], int32(n+4))
			if werr := c.frontend.SendUnbufferedEncodedCopyData(buf[:n+5]); werr != nil {
				c.die(werr)
				return werr
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// endCopyIn sends the copy completion message and waits through the terminal
// exchange back to Ready.
func (c *Connector) endCopyIn() (CommandTag, error) {
	c.frontend.Send(&wire.CopyDone{})
	if err := c.frontend.Flush(); err != nil {
		c.die(err)
		return "", err
	}

	var commandTag CommandTag
	var pgErr error

	for {
		msg, err := c.receiveMessage()
		if err != nil {
			return "", err
		}

		switch msg := msg.(type) {
		case *wire.CommandComplete:
			commandTag = CommandTag(msg.CommandTag)
		case *wire.ErrorResponse:
			if pgErr == nil {
				pgErr = errorResponseToPgError(msg)
			}
		case *wire.ReadyForQuery:
			c.transition(StateReady)
			if c.shouldLog(LogLevelDebug) {
				c.logger.Debug("copy in complete", "commandTag", string(commandTag))
			}
			return commandTag, pgErr
		}
	}
}

// cancelCopyIn sends a copy failure carrying message and waits through the
// server's abort back to Ready. The returned error is the server's failed
// command result, which carries message.
func (c *Connector) cancelCopyIn(message string) error {
	c.frontend.Send(&wire.CopyFail{Message: message})
	if err := c.frontend.Flush(); err != nil {
		c.die(err)
		return err
	}

	var pgErr error

	for {
		msg, err := c.receiveMessage()
		if err != nil {
			return err
		}

		switch msg := msg.(type) {
		case *wire.ErrorResponse:
			if pgErr == nil {
				pgErr = errorResponseToPgError(msg)
			}
		case *wire.ReadyForQuery:
			c.transition(StateReady)
			if c.shouldLog(LogLevelDebug) {
				c.logger.Debug("copy in canceled", "message", message)
			}
			return pgErr
		}
	}
}
