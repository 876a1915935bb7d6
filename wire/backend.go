package wire

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// Backend acts as a server for the PostgreSQL wire protocol version 3. It exists for test servers and protocol
// tooling; the connection engine itself uses Frontend.
type Backend struct {
	cr *chunkReader
	w  io.Writer

	// Frontend message flyweights
	copyData            CopyData
	copyDone            CopyDone
	copyFail            CopyFail
	passwordMessage     PasswordMessage
	query               Query
	saslInitialResponse SASLInitialResponse
	saslResponse        SASLResponse
	startupMessage      StartupMessage
	terminate           Terminate

	bodyLen    int
	msgType    byte
	partialMsg bool

	inSASLAuth bool
	sawSASLIR  bool
}

// NewBackend creates a new Backend that reads from r and writes to w.
func NewBackend(r io.Reader, w io.Writer) *Backend {
	cr := newChunkReader(r, 0)
	return &Backend{cr: cr, w: w}
}

// Send sends a message to the frontend (i.e. the client).
func (b *Backend) Send(msg BackendMessage) error {
	_, err := b.w.Write(msg.Encode(nil))
	return err
}

// ReceiveStartupMessage receives the initial connection message. The startup message is "special" in that it does not
// have a message type byte.
func (b *Backend) ReceiveStartupMessage() (*StartupMessage, error) {
	buf, err := b.cr.Next(4)
	if err != nil {
		return nil, err
	}
	msgSize := int(binary.BigEndian.Uint32(buf) - 4)

	buf, err = b.cr.Next(msgSize)
	if err != nil {
		return nil, translateEOFtoErrUnexpectedEOF(err)
	}

	err = b.startupMessage.Decode(buf)
	if err != nil {
		return nil, err
	}

	return &b.startupMessage, nil
}

// SetSASLAuthInProgress tells the Backend whether a 'p' message byte should be interpreted as a SASL response rather
// than a PasswordMessage. Both share the same message type byte.
func (b *Backend) SetSASLAuthInProgress(inProgress bool) {
	b.inSASLAuth = inProgress
	b.sawSASLIR = false
}

// Receive receives a message from the frontend. The returned message is only valid until the next call to Receive.
//
// A Receive interrupted partway through a message retains the bytes already received; calling Receive again resumes
// where it left off. A clean connection close at a message boundary is reported as io.EOF; mid-message it is reported
// as io.ErrUnexpectedEOF.
func (b *Backend) Receive() (FrontendMessage, error) {
	if !b.partialMsg {
		header, err := b.cr.Next(5)
		if err != nil {
			return nil, err
		}

		b.msgType = header[0]
		b.bodyLen = int(binary.BigEndian.Uint32(header[1:])) - 4
		if b.bodyLen < 0 {
			return nil, errors.Errorf("invalid message length: %d", b.bodyLen+4)
		}
		b.partialMsg = true
	}

	msgBody, err := b.cr.Next(b.bodyLen)
	if err != nil {
		return nil, translateEOFtoErrUnexpectedEOF(err)
	}

	b.partialMsg = false

	var msg FrontendMessage
	switch b.msgType {
	case 'c':
		msg = &b.copyDone
	case 'd':
		msg = &b.copyData
	case 'f':
		msg = &b.copyFail
	case 'p':
		if b.inSASLAuth {
			if b.sawSASLIR {
				msg = &b.saslResponse
			} else {
				b.sawSASLIR = true
				msg = &b.saslInitialResponse
			}
		} else {
			msg = &b.passwordMessage
		}
	case 'Q':
		msg = &b.query
	case 'X':
		msg = &b.terminate
	default:
		return nil, errors.Errorf("unknown message type: %c", b.msgType)
	}

	err = msg.Decode(msgBody)
	return msg, err
}
