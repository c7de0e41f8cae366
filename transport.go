package redispoll

import (
	"errors"
	"net"
	"time"
)

// ErrWouldBlock is returned by Transport.Receive when no bytes are
// available right now. It is not a failure; the caller polls again later.
var ErrWouldBlock = errors.New("redispoll: operation would block")

// Transport is a non-blocking byte stream to the server. Implementations
// report "no data yet" as ErrWouldBlock and reserve real errors for fatal
// conditions.
type Transport interface {
	// Send writes p completely or fails.
	Send(p []byte) error

	// Receive reads up to len(p) bytes without blocking. It returns
	// (0, ErrWouldBlock) when nothing is available.
	Receive(p []byte) (int, error)

	Close() error
}

// Dialer opens Transports. The default implementation speaks TCP; tests
// substitute in-memory transports.
type Dialer interface {
	Dial(addr string) (Transport, error)
}

// NetDialer is the production Dialer on top of the net package.
type NetDialer struct {
	// ConnectTimeout bounds the blocking dial. Zero means no limit.
	ConnectTimeout time.Duration
}

func (d *NetDialer) Dial(addr string) (Transport, error) {
	conn, err := net.DialTimeout("tcp", addr, d.ConnectTimeout)
	if err != nil {
		return nil, err
	}
	return &netTransport{conn: conn}, nil
}

// netTransport adapts a blocking net.Conn to the non-blocking Transport
// contract by reading under an immediate deadline.
type netTransport struct {
	conn net.Conn
}

func (t *netTransport) Send(p []byte) error {
	_, err := t.conn.Write(p)
	return err
}

func (t *netTransport) Receive(p []byte) (int, error) {
	if err := t.conn.SetReadDeadline(time.Now()); err != nil {
		return 0, err
	}
	n, err := t.conn.Read(p)
	if n > 0 {
		return n, nil
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return 0, ErrWouldBlock
	}
	return 0, err
}

func (t *netTransport) Close() error {
	return t.conn.Close()
}
