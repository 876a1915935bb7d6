package pgwire

import (
	"fmt"
	"net"
	"time"

	"github.com/pgwirekit/pgwire/wire"
)

// Notification is a message received from the PostgreSQL LISTEN/NOTIFY system.
type Notification struct {
	PID     uint32 // backend pid that sent the notification
	Channel string
	Payload string
}

const listenerPollInterval = 100 * time.Millisecond

// StartListening starts the background notification listener goroutine.
// Received notifications are delivered to config.OnNotification. While the
// listener runs, synchronous operations transparently pause it for the
// duration of their protocol exchange.
//
// It is a no-op if the listener is already running.
func (c *Connector) StartListening() error {
	if s := c.State(); s != StateReady {
		if s == StateBroken {
			return ErrDeadConn
		}
		return &StateError{Op: "StartListening", State: s}
	}

	if c.listening {
		return nil
	}

	c.pauseReq = make(chan struct{})
	c.pauseAck = make(chan struct{})
	c.resume = make(chan struct{})
	c.stopListen = make(chan struct{})
	c.listenerDone = make(chan struct{})
	c.listening = true

	go c.listenLoop()

	if c.shouldLog(LogLevelDebug) {
		c.logger.Debug("notification listener started")
	}
	return nil
}

// StopListening stops the background notification listener and waits for it to
// exit. It is a no-op if the listener is not running.
func (c *Connector) StopListening() {
	if !c.listening {
		return
	}

	close(c.stopListen)
	<-c.listenerDone
	c.listening = false

	if c.shouldLog(LogLevelDebug) {
		c.logger.Debug("notification listener stopped")
	}
}

// listenLoop polls the socket with a bounded read deadline so it can observe
// pause and stop requests. It parks only at a message boundary: a partially
// buffered message is drained before acknowledging a pause so the synchronous
// caller never observes a torn wire stream. It polls the socket only while
// the connection is idle; while a copy is in flight the copy operation owns
// the socket and any server message belongs to it, not to the listener.
func (c *Connector) listenLoop() {
	defer close(c.listenerDone)

	for {
		select {
		case <-c.stopListen:
			return
		case <-c.pauseReq:
			if !c.parkUntilResumed() {
				return
			}
			continue
		default:
		}

		if c.State() != StateReady {
			select {
			case <-c.stopListen:
				return
			case <-c.pauseReq:
				if !c.parkUntilResumed() {
					return
				}
			case <-time.After(listenerPollInterval):
			}
			continue
		}

		c.conn.SetReadDeadline(time.Now().Add(listenerPollInterval))
		msg, err := c.frontend.Receive()
		c.conn.SetReadDeadline(time.Time{})

		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				continue
			}
			c.die(err)
			return
		}

		if !c.handleAsyncMessage(msg) {
			return
		}
	}
}

// parkUntilResumed drains any partially buffered message, acknowledges the
// pause, and waits for the pausing caller to resume the listener. Reports
// false if the listener should exit.
func (c *Connector) parkUntilResumed() bool {
	if !c.drainPending() {
		return false
	}
	c.pauseAck <- struct{}{}
	select {
	case <-c.resume:
		return true
	case <-c.stopListen:
		return false
	}
}

// drainPending finishes reading any message the poll loop has partially
// buffered. Reports false if the connection died while draining.
func (c *Connector) drainPending() bool {
	for c.frontend.PartialMsg() || c.frontend.ReadBufferLen() > 0 {
		c.conn.SetReadDeadline(time.Now().Add(listenerPollInterval))
		msg, err := c.frontend.Receive()
		c.conn.SetReadDeadline(time.Time{})

		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				if c.frontend.PartialMsg() {
					continue
				}
				return true
			}
			c.die(err)
			return false
		}

		if !c.handleAsyncMessage(msg) {
			return false
		}
	}
	return true
}

// handleAsyncMessage processes a message received while no synchronous
// operation is in flight. Reports false if the message broke the connection.
func (c *Connector) handleAsyncMessage(msg wire.BackendMessage) bool {
	switch msg := msg.(type) {
	case *wire.NotificationResponse:
		c.deliverNotification(msg)
	case *wire.ParameterStatus:
		c.mu.Lock()
		c.parameterStatuses[msg.Name] = msg.Value
		c.mu.Unlock()
	case *wire.NoticeResponse:
		if c.shouldLog(LogLevelInfo) {
			c.logger.Info("notice", "severity", msg.Severity, "message", msg.Message)
		}
	case *wire.ErrorResponse:
		c.die(errorResponseToPgError(msg))
		return false
	default:
		c.die(ProtocolError(fmt.Sprintf("unexpected message while idle: %T", msg)))
		return false
	}
	return true
}

func (c *Connector) deliverNotification(msg *wire.NotificationResponse) {
	if c.shouldLog(LogLevelDebug) {
		c.logger.Debug("notification received", "channel", msg.Channel, "pid", msg.PID)
	}
	if c.config.OnNotification != nil {
		c.config.OnNotification(&Notification{PID: msg.PID, Channel: msg.Channel, Payload: msg.Payload})
	}
}

// blockNotifications parks the notification listener at a message boundary and
// returns a function that resumes it. If the listener is not running, or has
// already exited, the returned function is a no-op.
func (c *Connector) blockNotifications() func() {
	if !c.listening {
		return func() {}
	}

	select {
	case c.pauseReq <- struct{}{}:
	case <-c.listenerDone:
		return func() {}
	}

	select {
	case <-c.pauseAck:
	case <-c.listenerDone:
		return func() {}
	}

	return func() {
		select {
		case c.resume <- struct{}{}:
		case <-c.listenerDone:
		}
	}
}
