package redispoll

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/arens-io/redispoll/resp"
)

// scriptTransport is an in-memory Transport. Inbound chunks are queued
// with reply(); once drained, Receive reports ErrWouldBlock. Every Send
// payload is recorded.
type scriptTransport struct {
	inbound  [][]byte
	outbound [][]byte

	sendErr    error
	receiveErr error
	closed     bool
}

func (t *scriptTransport) Send(data []byte) error {
	if t.sendErr != nil {
		return t.sendErr
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	t.outbound = append(t.outbound, buf)
	return nil
}

func (t *scriptTransport) Receive(buf []byte) (int, error) {
	if t.receiveErr != nil {
		return 0, t.receiveErr
	}
	if len(t.inbound) == 0 {
		return 0, ErrWouldBlock
	}

	chunk := t.inbound[0]
	n := copy(buf, chunk)
	if n < len(chunk) {
		t.inbound[0] = chunk[n:]
	} else {
		t.inbound = t.inbound[1:]
	}
	return n, nil
}

func (t *scriptTransport) Close() error {
	t.closed = true
	return nil
}

func (t *scriptTransport) reply(data string) {
	t.inbound = append(t.inbound, []byte(data))
}

// scriptDialer hands out a fixed sequence of transports, one per Dial.
type scriptDialer struct {
	transports []*scriptTransport
	dialErr    error
	dials      int
}

func (d *scriptDialer) Dial(addr string) (Transport, error) {
	if d.dialErr != nil {
		return nil, d.dialErr
	}
	if d.dials >= len(d.transports) {
		return nil, errors.New("no transport scripted for this dial")
	}
	transport := d.transports[d.dials]
	d.dials++
	return transport, nil
}

// manualClock is a Clock whose time only moves via advance().
type manualClock struct {
	now time.Duration

	newTimerErr error
	expiredErr  error
}

func (c *manualClock) NewTimer(d time.Duration) (Timer, error) {
	if c.newTimerErr != nil {
		return nil, c.newTimerErr
	}
	return &manualTimer{clock: c, deadline: c.now + d}, nil
}

func (c *manualClock) advance(d time.Duration) {
	c.now += d
}

type manualTimer struct {
	clock    *manualClock
	deadline time.Duration
}

func (t *manualTimer) Expired() (bool, error) {
	if t.clock.expiredErr != nil {
		return false, t.clock.expiredErr
	}
	return t.clock.now >= t.deadline, nil
}

// expiringClock expires every timer after a fixed number of Expired calls,
// so blocking waits terminate without real time passing.
type expiringClock struct {
	polls int
}

func (c *expiringClock) NewTimer(d time.Duration) (Timer, error) {
	return &expiringTimer{remaining: c.polls}, nil
}

type expiringTimer struct {
	remaining int
}

func (t *expiringTimer) Expired() (bool, error) {
	if t.remaining == 0 {
		return true, nil
	}
	t.remaining--
	return false, nil
}

func newTestSession(transport Transport) *session {
	return newSession(transport, resp.RESP2{}, DefaultMemoryParameters())
}

func newTestClient(s *session, clock Clock, timeout time.Duration) *Client {
	return &Client{
		session:         s,
		clock:           clock,
		timeoutDuration: timeout,
		logger:          zap.NewNop(),
	}
}
