package pgmock_test

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgwirekit/pgwire/internal/pgmock"
	"github.com/pgwirekit/pgwire/wire"
)

func TestScriptExpectAndSend(t *testing.T) {
	t.Parallel()

	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	clientErrChan := make(chan error, 1)
	go func() {
		defer close(clientErrChan)

		frontend := wire.NewFrontend(client, client)
		frontend.Send(&wire.Query{String: "select 1"})
		if err := frontend.Flush(); err != nil {
			clientErrChan <- err
			return
		}

		msg, err := frontend.Receive()
		if err != nil {
			clientErrChan <- err
			return
		}
		if _, ok := msg.(*wire.ReadyForQuery); !ok {
			clientErrChan <- err
		}
	}()

	script := &pgmock.Script{
		Steps: []pgmock.Step{
			pgmock.ExpectMessage(&wire.Query{String: "select 1"}),
			pgmock.SendMessage(&wire.ReadyForQuery{TxStatus: 'I'}),
		},
	}

	backend := wire.NewBackend(server, server)
	require.NoError(t, script.Run(backend))
	require.NoError(t, <-clientErrChan)
}

func TestScriptExpectMessageMismatch(t *testing.T) {
	t.Parallel()

	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	go func() {
		frontend := wire.NewFrontend(client, client)
		frontend.Send(&wire.Query{String: "select 2"})
		frontend.Flush()
	}()

	script := &pgmock.Script{
		Steps: []pgmock.Step{
			pgmock.ExpectMessage(&wire.Query{String: "select 1"}),
		},
	}

	backend := wire.NewBackend(server, server)
	err := script.Run(backend)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "select 2")
}
