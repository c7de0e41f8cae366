package redispoll

import (
	"time"

	"go.uber.org/zap"
)

// Client executes commands over the connection cached by its
// ConnectionHandler. Clients are cheap, short-lived façades: construct one
// per task or scope as needed.
//
// A Client (and the Futures it hands out) must be used from one goroutine
// at a time; the underlying session enforces this at runtime.
type Client struct {
	session *session
	clock   Clock

	// Max. time waiting for a single response. Zero means no limit.
	timeoutDuration time.Duration

	// Response to the HELLO handshake, only set for RESP3 connections.
	hello *HelloResponse

	logger *zap.Logger
}

// Send encodes and writes the command without waiting for the response,
// and returns the Future that will carry it. It is a free function because
// every command carries its own result type.
func Send[R any](c *Client, command Command[R]) (*Future[R], error) {
	id, err := c.session.send(command.Encode())
	if err != nil {
		return nil, err
	}

	t, err := newTimeout(c.clock, c.timeoutDuration)
	if err != nil {
		return nil, err
	}

	return &Future[R]{
		id:      id,
		command: command,
		session: c.session,
		timeout: t,
	}, nil
}

// HelloResponse returns the cached response to the HELLO handshake
// executed during connection initialization, or nil on RESP2 connections.
func (c *Client) HelloResponse() *HelloResponse {
	return c.hello
}

// Close reclaims the responses of any remaining dropped futures so the
// connection is left in a clean state for the next Client. The drain is
// bounded by the configured timeout; leftover work is abandoned silently.
func (c *Client) Close() {
	if !c.session.remainingDroppedFutures() {
		return
	}

	timer, err := newTimeout(c.clock, c.timeoutDuration)
	if err != nil {
		return
	}

	for c.session.remainingDroppedFutures() {
		expired, err := timer.expired()
		if err != nil || expired {
			c.logger.Debug("abandoning dropped-future drain",
				zap.Int("remaining", c.session.droppedFutureCount()))
			return
		}
		c.session.handleDroppedFutures()
	}
}

// auth runs the blocking AUTH round trip during connection setup.
func (c *Client) auth(credentials *Credentials) error {
	if credentials == nil {
		return nil
	}

	future, err := Send(c, NewAuthCommand(credentials))
	if err != nil {
		return &AuthError{Err: err}
	}
	if _, err := future.Wait(); err != nil {
		return &AuthError{Err: err}
	}
	return nil
}

// init authenticates and, when the protocol variant demands it, performs
// the HELLO handshake. Returns the handshake response for caching by the
// handler (nil for variants without handshake).
func (c *Client) init(credentials *Credentials) (*HelloResponse, error) {
	if err := c.auth(credentials); err != nil {
		return nil, err
	}

	if !c.session.codec.RequiresHandshake() {
		return nil, nil
	}

	future, err := Send(c, &HelloCommand{})
	if err != nil {
		return nil, &HandshakeError{Err: err}
	}
	hello, err := future.Wait()
	if err != nil {
		return nil, &HandshakeError{Err: err}
	}
	return hello, nil
}
