package wire_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgwirekit/pgwire/wire"
)

func TestBackendReceiveStartupMessage(t *testing.T) {
	t.Parallel()

	want := &wire.StartupMessage{
		ProtocolVersion: wire.ProtocolVersionNumber,
		Parameters: map[string]string{
			"user":     "tester",
			"database": "testdb",
		},
	}

	buf := &bytes.Buffer{}
	buf.Write(want.Encode(nil))

	backend := wire.NewBackend(buf, nil)

	msg, err := backend.ReceiveStartupMessage()
	require.NoError(t, err)
	assert.Equal(t, want, msg)
}

func TestBackendReceiveInterrupted(t *testing.T) {
	t.Parallel()

	server := &interruptReader{}
	server.push([]byte{'Q', 0, 0, 0, 6})

	backend := wire.NewBackend(server, nil)

	msg, err := backend.Receive()
	require.Error(t, err)
	require.Nil(t, msg)

	server.push([]byte{'I', 0})

	msg, err = backend.Receive()
	require.NoError(t, err)
	require.IsType(t, &wire.Query{}, msg)
	assert.Equal(t, "I", msg.(*wire.Query).String)
}

func TestBackendReceiveUnexpectedEOF(t *testing.T) {
	t.Parallel()

	server := &interruptReader{}
	server.push([]byte{'Q', 0, 0, 0, 6})

	backend := wire.NewBackend(server, nil)

	msg, err := backend.Receive()
	assert.Nil(t, msg)
	assert.Equal(t, io.ErrUnexpectedEOF, err)
}

func TestBackendReceiveCleanCloseEOF(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	buf.Write((&wire.Terminate{}).Encode(nil))

	backend := wire.NewBackend(buf, nil)

	msg, err := backend.Receive()
	require.NoError(t, err)
	require.IsType(t, &wire.Terminate{}, msg)

	// closing without another message is a clean close, not a truncated message
	msg, err = backend.Receive()
	assert.Nil(t, msg)
	assert.Equal(t, io.EOF, err)
}

func TestBackendSASLDisambiguation(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	buf.Write((&wire.SASLInitialResponse{AuthMechanism: "SCRAM-SHA-256", Data: []byte("n,,n=,r=abc")}).Encode(nil))
	buf.Write((&wire.SASLResponse{Data: []byte("c=biws,r=abcdef,p=proof")}).Encode(nil))
	buf.Write((&wire.PasswordMessage{Password: "secret"}).Encode(nil))

	backend := wire.NewBackend(buf, nil)
	backend.SetSASLAuthInProgress(true)

	msg, err := backend.Receive()
	require.NoError(t, err)
	require.IsType(t, &wire.SASLInitialResponse{}, msg)
	assert.Equal(t, "SCRAM-SHA-256", msg.(*wire.SASLInitialResponse).AuthMechanism)

	msg, err = backend.Receive()
	require.NoError(t, err)
	require.IsType(t, &wire.SASLResponse{}, msg)

	backend.SetSASLAuthInProgress(false)

	msg, err = backend.Receive()
	require.NoError(t, err)
	require.IsType(t, &wire.PasswordMessage{}, msg)
	assert.Equal(t, "secret", msg.(*wire.PasswordMessage).Password)
}

func TestBackendReceiveCopyMessages(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	buf.Write((&wire.CopyData{Data: []byte("a\tb\n")}).Encode(nil))
	buf.Write((&wire.CopyFail{Message: "aborted"}).Encode(nil))
	buf.Write((&wire.CopyDone{}).Encode(nil))

	backend := wire.NewBackend(buf, nil)

	msg, err := backend.Receive()
	require.NoError(t, err)
	require.IsType(t, &wire.CopyData{}, msg)
	assert.Equal(t, []byte("a\tb\n"), msg.(*wire.CopyData).Data)

	msg, err = backend.Receive()
	require.NoError(t, err)
	require.IsType(t, &wire.CopyFail{}, msg)
	assert.Equal(t, "aborted", msg.(*wire.CopyFail).Message)

	msg, err = backend.Receive()
	require.NoError(t, err)
	require.IsType(t, &wire.CopyDone{}, msg)
}
