package pgwire

import (
	"bytes"
	"io/ioutil"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgwirekit/pgwire/internal/pgmock"
	"github.com/pgwirekit/pgwire/wire"
)

func copyOutSteps(sql string, overallFormat byte, columnFormatCodes []uint16) []pgmock.Step {
	steps := pgmock.AcceptUnauthenticatedConnRequestSteps()
	return append(steps,
		pgmock.ExpectMessage(&wire.Query{String: sql}),
		pgmock.SendMessage(&wire.CopyOutResponse{OverallFormat: overallFormat, ColumnFormatCodes: columnFormatCodes}),
	)
}

func TestCopyOutToWriter(t *testing.T) {
	t.Parallel()

	sql := "copy t to stdout"
	steps := copyOutSteps(sql, 0, []uint16{0})
	steps = append(steps,
		pgmock.SendMessage(&wire.CopyData{Data: []byte("1\n")}),
		pgmock.SendMessage(&wire.CopyData{Data: []byte("2\n")}),
		pgmock.SendMessage(&wire.CopyDone{}),
		pgmock.SendMessage(&wire.CommandComplete{CommandTag: []byte("COPY 2")}),
		pgmock.SendMessage(&wire.ReadyForQuery{TxStatus: 'I'}),
		pgmock.WaitForClose(),
	)
	config, serverErrChan := startMockServer(t, steps)

	conn := mustConnect(t, config)

	dst := &bytes.Buffer{}
	op := conn.CopyOut(sql, dst)
	commandTag, err := op.Start()
	require.NoError(t, err)
	assert.Equal(t, CommandTag("COPY 2"), commandTag)
	assert.Equal(t, "1\n2\n", dst.String())
	assert.Equal(t, StateReady, conn.State())
	assert.False(t, op.IsActive())

	closeConn(t, conn)
	require.NoError(t, <-serverErrChan)
}

func TestCopyOutReader(t *testing.T) {
	t.Parallel()

	sql := "copy t to stdout (format binary)"
	steps := copyOutSteps(sql, 1, []uint16{1, 1})
	steps = append(steps,
		pgmock.SendMessage(&wire.CopyData{Data: []byte{0x01, 0x02}}),
		pgmock.SendMessage(&wire.CopyData{Data: []byte{0x03}}),
		pgmock.SendMessage(&wire.CopyDone{}),
		pgmock.SendMessage(&wire.CommandComplete{CommandTag: []byte("COPY 1")}),
		pgmock.SendMessage(&wire.ReadyForQuery{TxStatus: 'I'}),
		pgmock.WaitForClose(),
	)
	config, serverErrChan := startMockServer(t, steps)

	conn := mustConnect(t, config)

	op := conn.CopyOut(sql, nil)
	_, err := op.Start()
	require.NoError(t, err)
	assert.True(t, op.IsActive())
	assert.Equal(t, StateCopyOut, conn.State())
	assert.True(t, op.IsBinary())
	assert.Equal(t, 2, op.FieldCount())
	assert.True(t, op.FieldIsBinary(0))
	assert.True(t, op.FieldIsBinary(1))

	r := op.Reader()
	require.NotNil(t, r)

	data, err := ioutil.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02, 0x03}, data)
	assert.Equal(t, StateReady, conn.State())
	assert.False(t, op.IsActive())

	require.NoError(t, r.Close())

	closeConn(t, conn)
	require.NoError(t, <-serverErrChan)
}

func TestCopyOutNotCopyQuery(t *testing.T) {
	t.Parallel()

	steps := pgmock.AcceptUnauthenticatedConnRequestSteps()
	steps = append(steps,
		pgmock.ExpectMessage(&wire.Query{String: "select 1"}),
		pgmock.SendMessage(&wire.CommandComplete{CommandTag: []byte("SELECT 1")}),
		pgmock.SendMessage(&wire.ReadyForQuery{TxStatus: 'I'}),
		pgmock.WaitForClose(),
	)
	config, serverErrChan := startMockServer(t, steps)

	conn := mustConnect(t, config)

	dst := &bytes.Buffer{}
	op := conn.CopyOut("select 1", dst)
	_, err := op.Start()
	var notCopyErr *NotCopyError
	require.ErrorAs(t, err, &notCopyErr)
	assert.Equal(t, "select 1", notCopyErr.Sql)
	assert.Equal(t, StateReady, conn.State())
	assert.Nil(t, conn.Mediator().CopyStream())

	closeConn(t, conn)
	require.NoError(t, <-serverErrChan)
}

func TestCopyOutCancelDrainsStream(t *testing.T) {
	t.Parallel()

	sql := "copy t to stdout"
	steps := copyOutSteps(sql, 0, []uint16{0})
	steps = append(steps,
		pgmock.SendMessage(&wire.CopyData{Data: []byte("1\n")}),
		pgmock.SendMessage(&wire.CopyData{Data: []byte("2\n")}),
		pgmock.SendMessage(&wire.CopyDone{}),
		pgmock.SendMessage(&wire.CommandComplete{CommandTag: []byte("COPY 2")}),
		pgmock.SendMessage(&wire.ReadyForQuery{TxStatus: 'I'}),
		pgmock.WaitForClose(),
	)
	config, serverErrChan := startMockServer(t, steps)

	conn := mustConnect(t, config)

	op := conn.CopyOut(sql, nil)
	_, err := op.Start()
	require.NoError(t, err)
	require.True(t, op.IsActive())

	require.NoError(t, op.Cancel())
	assert.Equal(t, StateReady, conn.State())
	assert.False(t, op.IsActive())

	// second Cancel is a no-op
	require.NoError(t, op.Cancel())

	closeConn(t, conn)
	require.NoError(t, <-serverErrChan)
}
