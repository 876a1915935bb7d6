package wire

import (
	"fmt"
)

// Message is the interface implemented by an object that can decode and encode
// a particular PostgreSQL message.
type Message interface {
	// Decode is allowed and expected to retain a reference to data after
	// returning (unlike encoding.BinaryUnmarshaler).
	Decode(data []byte) error

	// Encode appends itself to dst and returns the new buffer.
	Encode(dst []byte) []byte
}

// FrontendMessage is a message sent by the frontend (i.e. the client).
type FrontendMessage interface {
	Message
	Frontend() // no-op method to distinguish frontend from backend methods
}

// BackendMessage is a message sent by the backend (i.e. the server).
type BackendMessage interface {
	Message
	Backend() // no-op method to distinguish frontend from backend methods
}

// ProtocolVersionNumber is the wire protocol version this package speaks.
const ProtocolVersionNumber = 196608 // 3.0

// Field format codes.
const (
	TextFormat   = 0
	BinaryFormat = 1
)

type invalidMessageLenErr struct {
	messageType string
	expectedLen int
	actualLen   int
}

func (e *invalidMessageLenErr) Error() string {
	return fmt.Sprintf("%s body must have length of %d, but it is %d", e.messageType, e.expectedLen, e.actualLen)
}

type invalidMessageFormatErr struct {
	messageType string
}

func (e *invalidMessageFormatErr) Error() string {
	return fmt.Sprintf("%s body is invalid", e.messageType)
}

type writeError struct {
	err         error
	safeToRetry bool
}

func (e *writeError) Error() string {
	return fmt.Sprintf("write failed: %s", e.err.Error())
}

func (e *writeError) SafeToRetry() bool {
	return e.safeToRetry
}

func (e *writeError) Unwrap() error {
	return e.err
}
