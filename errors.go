package redispoll

import "errors"

// Fatal errors invalidate the byte-to-request correlation of the whole
// connection. Once one of them surfaces, the safe recovery is to discard the
// connection and let the ConnectionHandler dial a fresh one.
var (
	// ErrTimeout means no response arrived within the configured deadline.
	// Fatal: the whole future series is invalidated.
	ErrTimeout = errors.New("redispoll: timeout waiting for response")

	// ErrProtocolViolation means undecodable bytes arrived. Fatal and
	// sticky: frame indexes can no longer be trusted.
	ErrProtocolViolation = errors.New("redispoll: response violates the wire protocol")

	// ErrInvalidFuture means the future belongs to a retired series, a
	// side effect of some earlier fatal error on the same connection.
	ErrInvalidFuture = errors.New("redispoll: future belongs to an invalidated series")

	// ErrMemoryFull means the response buffer reached its configured
	// byte ceiling before the response completed.
	ErrMemoryFull = errors.New("redispoll: response buffer memory limit reached")

	// ErrEncodingFailed means the command frame could not be serialized.
	// Affects the triggering request only.
	ErrEncodingFailed = errors.New("redispoll: encoding command failed")

	// ErrResponseViolation means the decoded response does not match the
	// shape the command expects. Affects the triggering request only.
	ErrResponseViolation = errors.New("redispoll: response does not match command expectation")

	// ErrTimer means the clock backing a timeout failed mid-flight.
	// Callers treat it like a timeout.
	ErrTimer = errors.New("redispoll: timer failure")

	// ErrInvalidPushMessage means a frame received in subscriber mode is
	// not a well-formed pub/sub push message.
	ErrInvalidPushMessage = errors.New("redispoll: malformed push message")

	// ErrFutureConsumed means Wait was called on a future whose response
	// was already taken by an earlier Wait or released by Discard.
	ErrFutureConsumed = errors.New("redispoll: future already consumed")
)

// TransportError wraps a low-level failure of the byte transport.
type TransportError struct {
	Op  string // "dial", "send", "receive" or "close"
	Err error
}

func (e *TransportError) Error() string {
	return "redispoll: transport " + e.Op + ": " + e.Err.Error()
}

func (e *TransportError) Unwrap() error { return e.Err }

// ServerError is an error response reported by the server itself, carrying
// the server-supplied message. The connection stays usable.
type ServerError struct {
	Message string
}

func (e *ServerError) Error() string {
	return "redispoll: server error: " + e.Message
}

// AuthError wraps a failed AUTH round trip during connection setup. The
// handler discards the half-initialized socket on the next Connect call.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	return "redispoll: authentication failed: " + e.Err.Error()
}

func (e *AuthError) Unwrap() error { return e.Err }

// HandshakeError wraps a failed HELLO round trip during connection setup.
type HandshakeError struct {
	Err error
}

func (e *HandshakeError) Error() string {
	return "redispoll: protocol handshake failed: " + e.Err.Error()
}

func (e *HandshakeError) Unwrap() error { return e.Err }

// IsFatal reports whether err poisons the connection. Fatal errors require
// reconnecting; everything else affects only the request that observed it.
func IsFatal(err error) bool {
	if errors.Is(err, ErrTimeout) || errors.Is(err, ErrProtocolViolation) ||
		errors.Is(err, ErrInvalidFuture) || errors.Is(err, ErrMemoryFull) ||
		errors.Is(err, ErrTimer) {
		return true
	}
	var transportErr *TransportError
	return errors.As(err, &transportErr)
}
