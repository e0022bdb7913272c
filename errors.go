package drda

import "fmt"

// TransportError wraps a failure reading or writing the underlying
// net.Conn: a closed socket, a read/write timeout, a short read past the
// retry bound.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("drda: transport error during %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsTransportError reports whether err is a *TransportError.
func IsTransportError(err error) bool {
	_, ok := err.(*TransportError)
	return ok
}

// ProtocolError reports a malformed or unexpected DSS/DDM structure: a bad
// DSSFMT byte, a code point the parser didn't expect in context, a length
// that doesn't fit the bytes actually read.
type ProtocolError struct {
	Context string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("drda: protocol error: %s", e.Context)
}

// IsProtocolError reports whether err is a *ProtocolError.
func IsProtocolError(err error) bool {
	_, ok := err.(*ProtocolError)
	return ok
}

// OperationalError is a server-reported SQLCARD with a negative SQLCODE:
// the statement was rejected by the RDBMS, not by this codec.
type OperationalError struct {
	SQLCode  int32
	SQLState string
	Message  string
}

func (e *OperationalError) Error() string {
	return fmt.Sprintf("drda: sqlcode %d (%s): %s", e.SQLCode, e.SQLState, e.Message)
}

// IsOperationalError reports whether err is an *OperationalError.
func IsOperationalError(err error) bool {
	_, ok := err.(*OperationalError)
	return ok
}

// DatabaseError reports a server refusal prior to SQL execution, such as
// RDBNFNRM ("database not found").
type DatabaseError struct {
	Message string
}

func (e *DatabaseError) Error() string {
	return fmt.Sprintf("drda: database error: %s", e.Message)
}

// IsDatabaseError reports whether err is a *DatabaseError.
func IsDatabaseError(err error) bool {
	_, ok := err.(*DatabaseError)
	return ok
}

// NotSupportedError reports a feature this codec deliberately doesn't
// implement: scrollable cursors, stored-procedure calls, an unrecognized
// dialect.
type NotSupportedError struct {
	Feature string
}

func (e *NotSupportedError) Error() string {
	return fmt.Sprintf("drda: not supported: %s", e.Feature)
}

// IsNotSupportedError reports whether err is a *NotSupportedError.
func IsNotSupportedError(err error) bool {
	_, ok := err.(*NotSupportedError)
	return ok
}
