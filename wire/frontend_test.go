package wire_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgwirekit/pgwire/wire"
)

// interruptReader returns the pushed chunks one Read at a time and io.EOF when
// it runs dry. Pushing more data "resumes" the stream, simulating a read
// deadline expiring partway through a message.
type interruptReader struct {
	chunks [][]byte
}

func (r *interruptReader) push(p []byte) {
	r.chunks = append(r.chunks, p)
}

func (r *interruptReader) Read(p []byte) (int, error) {
	if len(r.chunks) == 0 {
		return 0, io.EOF
	}
	n := copy(p, r.chunks[0])
	if n == len(r.chunks[0]) {
		r.chunks = r.chunks[1:]
	} else {
		r.chunks[0] = r.chunks[0][n:]
	}
	return n, nil
}

func TestFrontendReceive(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	buf.Write((&wire.ParameterStatus{Name: "server_version", Value: "13.3"}).Encode(nil))
	buf.Write((&wire.BackendKeyData{ProcessID: 42, SecretKey: 84}).Encode(nil))
	buf.Write((&wire.ReadyForQuery{TxStatus: 'I'}).Encode(nil))

	frontend := wire.NewFrontend(buf, nil)

	msg, err := frontend.Receive()
	require.NoError(t, err)
	require.IsType(t, &wire.ParameterStatus{}, msg)
	assert.Equal(t, "server_version", msg.(*wire.ParameterStatus).Name)
	assert.Equal(t, "13.3", msg.(*wire.ParameterStatus).Value)

	msg, err = frontend.Receive()
	require.NoError(t, err)
	require.IsType(t, &wire.BackendKeyData{}, msg)
	assert.EqualValues(t, 42, msg.(*wire.BackendKeyData).ProcessID)
	assert.EqualValues(t, 84, msg.(*wire.BackendKeyData).SecretKey)

	msg, err = frontend.Receive()
	require.NoError(t, err)
	require.IsType(t, &wire.ReadyForQuery{}, msg)
	assert.EqualValues(t, 'I', msg.(*wire.ReadyForQuery).TxStatus)
}

func TestFrontendReceiveInterrupted(t *testing.T) {
	t.Parallel()

	server := &interruptReader{}
	server.push([]byte{'Z', 0, 0, 0, 5})

	frontend := wire.NewFrontend(server, nil)

	msg, err := frontend.Receive()
	require.Error(t, err)
	require.Nil(t, msg)
	assert.True(t, frontend.PartialMsg())

	server.push([]byte{'I'})

	msg, err = frontend.Receive()
	require.NoError(t, err)
	require.IsType(t, &wire.ReadyForQuery{}, msg)
	assert.EqualValues(t, 'I', msg.(*wire.ReadyForQuery).TxStatus)
	assert.False(t, frontend.PartialMsg())
	assert.Equal(t, 0, frontend.ReadBufferLen())
}

func TestFrontendReceiveUnexpectedEOF(t *testing.T) {
	t.Parallel()

	server := &interruptReader{}
	server.push([]byte{'Z', 0, 0, 0, 5})

	frontend := wire.NewFrontend(server, nil)

	msg, err := frontend.Receive()
	assert.Nil(t, msg)
	assert.Equal(t, io.ErrUnexpectedEOF, err)
}

func TestFrontendSendAndFlush(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	frontend := wire.NewFrontend(nil, buf)

	frontend.Send(&wire.Query{String: "select 1"})
	frontend.Send(&wire.Terminate{})
	require.NoError(t, frontend.Flush())

	backend := wire.NewBackend(buf, nil)

	msg, err := backend.Receive()
	require.NoError(t, err)
	require.IsType(t, &wire.Query{}, msg)
	assert.Equal(t, "select 1", msg.(*wire.Query).String)

	msg, err = backend.Receive()
	require.NoError(t, err)
	require.IsType(t, &wire.Terminate{}, msg)
}

func TestFrontendSendUnbufferedEncodedCopyData(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	frontend := wire.NewFrontend(nil, buf)

	encoded := (&wire.CopyData{Data: []byte("1\t2\n")}).Encode(nil)
	require.NoError(t, frontend.SendUnbufferedEncodedCopyData(encoded))

	backend := wire.NewBackend(buf, nil)
	msg, err := backend.Receive()
	require.NoError(t, err)
	require.IsType(t, &wire.CopyData{}, msg)
	assert.Equal(t, []byte("1\t2\n"), msg.(*wire.CopyData).Data)
}

func TestFrontendReceiveErrorResponse(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	buf.Write((&wire.ErrorResponse{
		Severity: "ERROR",
		Code:     "42703",
		Message:  `column "foo" does not exist`,
	}).Encode(nil))

	frontend := wire.NewFrontend(buf, nil)

	msg, err := frontend.Receive()
	require.NoError(t, err)
	require.IsType(t, &wire.ErrorResponse{}, msg)
	errResp := msg.(*wire.ErrorResponse)
	assert.Equal(t, "ERROR", errResp.Severity)
	assert.Equal(t, "42703", errResp.Code)
	assert.Equal(t, `column "foo" does not exist`, errResp.Message)
}
