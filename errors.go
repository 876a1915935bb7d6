package pgwire

import (
	"errors"
	"fmt"

	"github.com/pgwirekit/pgwire/wire"
)

// ErrDeadConn is returned when an operation is attempted on a connection that
// has been driven into the Broken state. The cause is available from
// Connector.CauseOfDeath.
var ErrDeadConn = errors.New("connection not usable")

// ProtocolError occurs when the server sends an unexpected or malformed
// message sequence.
type ProtocolError string

func (e ProtocolError) Error() string {
	return string(e)
}

// PgError represents an error reported by the PostgreSQL server. See
// https://www.postgresql.org/docs/current/protocol-error-fields.html for
// detailed field description.
type PgError struct {
	Severity         string
	Code             string
	Message          string
	Detail           string
	Hint             string
	Position         int32
	InternalPosition int32
	InternalQuery    string
	Where            string
	SchemaName       string
	TableName        string
	ColumnName       string
	DataTypeName     string
	ConstraintName   string
	File             string
	Line             int32
	Routine          string
}

func (pe *PgError) Error() string {
	return pe.Severity + ": " + pe.Message + " (SQLSTATE " + pe.Code + ")"
}

func errorResponseToPgError(msg *wire.ErrorResponse) *PgError {
	return &PgError{
		Severity:         msg.Severity,
		Code:             msg.Code,
		Message:          msg.Message,
		Detail:           msg.Detail,
		Hint:             msg.Hint,
		Position:         msg.Position,
		InternalPosition: msg.InternalPosition,
		InternalQuery:    msg.InternalQuery,
		Where:            msg.Where,
		SchemaName:       msg.SchemaName,
		TableName:        msg.TableName,
		ColumnName:       msg.ColumnName,
		DataTypeName:     msg.DataTypeName,
		ConstraintName:   msg.ConstraintName,
		File:             msg.File,
		Line:             msg.Line,
		Routine:          msg.Routine,
	}
}

// StateError is returned when an operation is attempted in a protocol phase
// where it is not legal. It is a programming or protocol error, not a
// retryable fault, and it does not change the connection state.
type StateError struct {
	Op    string
	State State
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s is not legal in state %s", e.Op, e.State)
}

// NotCopyError is returned by a copy operation's Start when the executed
// command turned out not to be a COPY. The connection remains usable.
type NotCopyError struct {
	Sql string
}

func (e *NotCopyError) Error() string {
	return fmt.Sprintf("query was not a COPY: %s", e.Sql)
}

type connectError struct {
	config *ConnConfig
	msg    string
	err    error
}

func (e *connectError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("failed to connect to `host=%s user=%s database=%s`: %s", e.config.Host, e.config.User, e.config.Database, e.msg)
	}
	return fmt.Sprintf("failed to connect to `host=%s user=%s database=%s`: %s (%s)", e.config.Host, e.config.User, e.config.Database, e.msg, e.err.Error())
}

func (e *connectError) Unwrap() error {
	return e.err
}
