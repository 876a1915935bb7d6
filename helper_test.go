package pgwire

import (
	"net"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pgwirekit/pgwire/internal/pgmock"
	"github.com/pgwirekit/pgwire/wire"
)

// startMockServer runs a scripted server on a local listener and returns a
// ConnConfig pointed at it. The server's script error, if any, is delivered on
// the returned channel; a clean script run delivers nothing and closes it.
func startMockServer(t *testing.T, steps []pgmock.Step) (ConnConfig, <-chan error) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	serverErrChan := make(chan error, 1)
	go func() {
		defer close(serverErrChan)

		conn, err := ln.Accept()
		if err != nil {
			serverErrChan <- err
			return
		}
		defer conn.Close()

		backend := wire.NewBackend(conn, conn)
		script := &pgmock.Script{Steps: steps}
		if err := script.Run(backend); err != nil {
			serverErrChan <- err
		}
	}()

	return configForListener(t, ln), serverErrChan
}

func configForListener(t *testing.T, ln net.Listener) ConnConfig {
	t.Helper()

	host, portStr, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	port, err := strconv.ParseUint(portStr, 10, 16)
	require.NoError(t, err)

	return ConnConfig{Host: host, Port: uint16(port), User: "pgwire_test", Database: "pgwire_test"}
}

// mustConnect connects to a mock server that begins with the standard
// unauthenticated accept steps.
func mustConnect(t *testing.T, config ConnConfig) *Connector {
	t.Helper()

	conn, err := Connect(config)
	require.NoError(t, err)
	return conn
}

func closeConn(t *testing.T, conn *Connector) {
	t.Helper()
	require.NoError(t, conn.Close())
}

// forceState jumps the connection to a state for violation tests.
func forceState(c *Connector, s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}
