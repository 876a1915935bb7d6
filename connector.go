package pgwire

import (
	"crypto/md5"
	"crypto/tls"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"

	"github.com/pgwirekit/pgwire/wire"
)

// Connector is a low-level PostgreSQL connection handle. It owns the physical
// connection, the Mediator, the current protocol State and the background
// notification listener. It is driven by a single synchronous caller
// goroutine; the only other goroutine permitted to read the socket is the
// notification listener, and the two are serialized by the pause handshake in
// blockNotifications.
type Connector struct {
	conn     net.Conn
	frontend *wire.Frontend
	mediator *Mediator
	config   ConnConfig
	logger   Logger
	logLevel int

	mu           sync.Mutex // guards state, causeOfDeath and parameterStatuses
	state        State
	causeOfDeath error

	pid       uint32
	secretKey uint32
	txStatus  byte

	parameterStatuses map[string]string

	listening    bool
	pauseReq     chan struct{}
	pauseAck     chan struct{}
	resume       chan struct{}
	stopListen   chan struct{}
	listenerDone chan struct{}
}

// CommandTag is the result of an Exec function.
type CommandTag string

// RowsAffected returns the number of rows affected. If the CommandTag was not
// for a row affecting command (e.g. "CREATE TABLE") then it returns 0.
func (ct CommandTag) RowsAffected() int64 {
	s := string(ct)
	index := strings.LastIndex(s, " ")
	if index == -1 {
		return 0
	}
	var n int64
	for _, b := range []byte(s[index+1:]) {
		if b < '0' || b > '9' {
			return 0
		}
		n = n*10 + int64(b-'0')
	}
	return n
}

// Connect establishes a connection with a PostgreSQL server using config.
// config.Host must be specified. config.User will default to the OS user name.
// Other config fields are optional.
func Connect(config ConnConfig) (*Connector, error) {
	err := config.assignDefaults()
	if err != nil {
		return nil, err
	}

	c := &Connector{
		config:            config,
		logger:            config.Logger,
		logLevel:          config.LogLevel,
		mediator:          newMediator(),
		parameterStatuses: make(map[string]string),
		state:             StateClosed,
	}

	c.conn, err = config.Dial(config.NetworkAddress())
	if err != nil {
		return nil, &connectError{config: &config, msg: "dial failed", err: err}
	}

	c.transition(StateConnecting)

	if config.TLSConfig != nil {
		if err := c.startTLS(config.TLSConfig); err != nil {
			c.die(err)
			return nil, &connectError{config: &config, msg: "TLS negotiation failed", err: err}
		}
	}

	c.frontend = wire.NewFrontend(c.conn, c.conn)

	startupMsg := wire.StartupMessage{
		ProtocolVersion: wire.ProtocolVersionNumber,
		Parameters:      make(map[string]string),
	}
	for k, v := range config.RuntimeParams {
		startupMsg.Parameters[k] = v
	}
	startupMsg.Parameters["user"] = config.User
	if config.Database != "" {
		startupMsg.Parameters["database"] = config.Database
	}

	c.frontend.Send(&startupMsg)
	if err := c.frontend.Flush(); err != nil {
		c.die(err)
		return nil, &connectError{config: &config, msg: "failed to write startup message", err: err}
	}

	for {
		msg, err := c.frontend.Receive()
		if err != nil {
			c.die(err)
			return nil, &connectError{config: &config, msg: "failed to receive message", err: err}
		}

		switch msg := msg.(type) {
		case *wire.BackendKeyData:
			c.pid = msg.ProcessID
			c.secretKey = msg.SecretKey
		case *wire.AuthenticationOk:
		case *wire.AuthenticationCleartextPassword:
			err = c.txPasswordMessage(config.Password)
		case *wire.AuthenticationMD5Password:
			digestedPassword := "md5" + hexMD5(hexMD5(config.Password+config.User)+string(msg.Salt[:]))
			err = c.txPasswordMessage(digestedPassword)
		case *wire.AuthenticationSASL:
			err = c.scramAuth(msg.AuthMechanisms)
		case *wire.ParameterStatus:
			c.parameterStatuses[msg.Name] = msg.Value
		case *wire.NoticeResponse:
		case *wire.ReadyForQuery:
			c.txStatus = msg.TxStatus
			c.transition(StateReady)
			if c.shouldLog(LogLevelInfo) {
				c.logger.Info("connection established", "pid", c.pid)
			}
			return c, nil
		case *wire.ErrorResponse:
			pgErr := errorResponseToPgError(msg)
			c.die(pgErr)
			return nil, &connectError{config: &config, msg: "server error", err: pgErr}
		default:
			protoErr := ProtocolError(fmt.Sprintf("unexpected message during handshake: %T", msg))
			c.die(protoErr)
			return nil, &connectError{config: &config, msg: "handshake failed", err: protoErr}
		}

		if err != nil {
			c.die(err)
			return nil, &connectError{config: &config, msg: "authentication failed", err: err}
		}
	}
}

func (c *Connector) startTLS(tlsConfig *tls.Config) error {
	err := binary.Write(c.conn, binary.BigEndian, []int32{8, 80877103})
	if err != nil {
		return err
	}

	response := make([]byte, 1)
	if _, err = io.ReadFull(c.conn, response); err != nil {
		return err
	}

	if response[0] != 'S' {
		return ProtocolError("server refused TLS connection")
	}

	c.conn = tls.Client(c.conn, tlsConfig)

	return nil
}

func (c *Connector) txPasswordMessage(password string) error {
	c.frontend.Send(&wire.PasswordMessage{Password: password})
	return c.frontend.Flush()
}

func hexMD5(s string) string {
	hash := md5.New()
	io.WriteString(hash, s)
	return hex.EncodeToString(hash.Sum(nil))
}

// State returns the connection's current protocol state.
func (c *Connector) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// CauseOfDeath returns the error that drove the connection into the Broken
// state, or nil.
func (c *Connector) CauseOfDeath() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.causeOfDeath
}

// Mediator returns the connection's exchange scratch area. Callers use it to
// configure the copy buffer size and to observe the active copy stream.
func (c *Connector) Mediator() *Mediator {
	return c.mediator
}

// PID returns the backend process id.
func (c *Connector) PID() uint32 {
	return c.pid
}

// SecretKey returns the key usable to send a cancel request to the server.
func (c *Connector) SecretKey() uint32 {
	return c.secretKey
}

// TxStatus returns the last reported transaction status byte.
func (c *Connector) TxStatus() byte {
	return c.txStatus
}

// ParameterStatus returns the value of a parameter reported by the server
// (e.g. server_version). Returns an empty string for unknown parameters.
func (c *Connector) ParameterStatus(key string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.parameterStatuses[key]
}

// transition installs to as the new current state. Transitions happen only on
// sucessful message exchanges or explicit caller action; an illegal internal
// transition is a protocol-sequence violation and breaks the connection.
func (c *Connector) transition(to State) {
	c.mu.Lock()
	from := c.state
	legal := transitionLegal(from, to)
	if legal {
		c.state = to
	}
	c.mu.Unlock()

	if !legal {
		c.die(ProtocolError(fmt.Sprintf("illegal state transition from %s to %s", from, to)))
		return
	}

	if c.shouldLog(LogLevelDebug) {
		c.logger.Debug("state transition", "from", from.String(), "to", to.String())
	}
}

// die drives the connection into the Broken state. All further operations fail
// fast with ErrDeadConn rather than attempting protocol exchange.
func (c *Connector) die(err error) {
	c.mu.Lock()
	if c.state == StateBroken || c.state == StateClosed {
		c.mu.Unlock()
		return
	}
	c.state = StateBroken
	c.causeOfDeath = err
	c.mu.Unlock()

	c.conn.Close()

	if c.shouldLog(LogLevelError) {
		c.logger.Error("connection died", "err", err)
	}
}

func (c *Connector) shouldLog(lvl int) bool {
	return c.logger != nil && c.logLevel >= lvl
}

// receiveMessage receives a message and processes the messages that are not
// exclusive to one context, such as parameter statuses, notices and
// notifications. The response to these is the same regardless of when they
// occur.
func (c *Connector) receiveMessage() (wire.BackendMessage, error) {
	msg, err := c.frontend.Receive()
	if err != nil {
		c.die(err)
		return nil, err
	}

	switch msg := msg.(type) {
	case *wire.ReadyForQuery:
		c.txStatus = msg.TxStatus
	case *wire.ParameterStatus:
		c.mu.Lock()
		c.parameterStatuses[msg.Name] = msg.Value
		c.mu.Unlock()
	case *wire.NoticeResponse:
		if c.shouldLog(LogLevelInfo) {
			c.logger.Info("notice", "severity", msg.Severity, "message", msg.Message)
		}
	case *wire.NotificationResponse:
		c.deliverNotification(msg)
	case *wire.ErrorResponse:
		if msg.Severity == "FATAL" {
			pgErr := errorResponseToPgError(msg)
			c.die(pgErr)
			return nil, pgErr
		}
	}

	return msg, nil
}

// Exec executes sql via the simple query protocol and returns the command tag
// of the last command run. It is only legal in the Ready state.
//
// A COPY FROM STDIN begun under Exec is immediately failed so the connection
// stays usable; use a CopyIn operation instead. A COPY TO STDOUT under Exec
// runs to completion with its data discarded.
func (c *Connector) Exec(sql string) (CommandTag, error) {
	if s := c.State(); s != StateReady {
		if s == StateBroken {
			return "", ErrDeadConn
		}
		return "", &StateError{Op: "Exec", State: s}
	}

	release := c.blockNotifications()
	defer release()

	c.transition(StateExecuting)

	c.frontend.Send(&wire.Query{String: sql})
	if err := c.frontend.Flush(); err != nil {
		c.die(err)
		return "", err
	}

	var commandTag CommandTag
	var execErr error

	for {
		msg, err := c.receiveMessage()
		if err != nil {
			return "", err
		}

		switch msg := msg.(type) {
		case *wire.CommandComplete:
			commandTag = CommandTag(msg.CommandTag)
		case *wire.RowDescription, *wire.DataRow, *wire.EmptyQueryResponse:
		case *wire.CopyInResponse:
			c.frontend.Send(&wire.CopyFail{Message: "COPY FROM STDIN requires a copy operation"})
			if err := c.frontend.Flush(); err != nil {
				c.die(err)
				return "", err
			}
			if execErr == nil {
				execErr = &StateError{Op: "Exec of COPY FROM STDIN", State: StateExecuting}
			}
		case *wire.CopyOutResponse, *wire.CopyData, *wire.CopyDone:
			// drained
		case *wire.ErrorResponse:
			if execErr == nil {
				execErr = errorResponseToPgError(msg)
			}
		case *wire.ReadyForQuery:
			c.transition(StateReady)
			if c.shouldLog(LogLevelDebug) {
				c.logger.Debug("exec complete", "sql", sql, "commandTag", string(commandTag))
			}
			return commandTag, execErr
		}
	}
}

// Close closes a connection. It is safe to call Close on an already closed
// connection.
func (c *Connector) Close() error {
	c.StopListening()

	s := c.State()
	if s == StateClosed {
		return nil
	}
	if s == StateBroken {
		c.mu.Lock()
		c.state = StateClosed
		c.mu.Unlock()
		c.conn.Close()
		return nil
	}

	c.mu.Lock()
	c.state = StateClosed
	c.mu.Unlock()

	c.frontend.Send(&wire.Terminate{})
	err := c.frontend.Flush()

	closeErr := c.conn.Close()
	if err == nil {
		err = closeErr
	}

	if c.shouldLog(LogLevelInfo) {
		c.logger.Info("connection closed")
	}
	return err
}
