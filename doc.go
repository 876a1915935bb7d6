// Package pgwire is a low-level PostgreSQL connection protocol engine.
//
// It drives a single connection through the wire protocol v3: establishment
// (including TLS and cleartext, MD5 and SCRAM-SHA-256 authentication), simple
// query execution, the COPY subprotocol in both directions, and asynchronous
// notification delivery.
//
// Establishing a Connection
//
//	config := pgwire.ConnConfig{Host: "localhost", Database: "app"}
//	conn, err := pgwire.Connect(config)
//
// Every connection is a small state machine. State reports the current phase
// (Ready, Executing, CopyIn, ...) and each operation is legal only in specific
// phases; an operation attempted elsewhere fails with a *StateError without
// touching the wire. Any transport failure or protocol-sequence violation
// drives the connection to Broken, after which all operations fail fast with
// ErrDeadConn.
//
// Bulk Copy
//
// CopyIn and CopyOut stream bulk data as opaque bytes, either from/to a
// caller-supplied stream or through an engine-owned one:
//
//	op := conn.CopyIn("copy t from stdin", nil)
//	if err := op.Start(); err != nil { ... }
//	op.Writer().Write(row1)
//	op.Writer().Write(row2)
//	commandTag, err := op.End()
//
// End and Cancel always release the connection's copy bookkeeping, even when
// called on an operation that never started; defensive cleanup calls are safe.
//
// Notifications
//
// Set ConnConfig.OnNotification and call StartListening to receive
// LISTEN/NOTIFY messages on a background goroutine. Synchronous operations
// transparently pause the listener for the duration of their exchange, so the
// two never read the socket concurrently.
//
// This package does not parse SQL, encode or decode field values, pool
// connections, or adapt to database/sql. It treats commands and copy data as
// opaque bytes and leaves those layers to the caller.
package pgwire
