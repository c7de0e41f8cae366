package redispoll

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNetTransport_ReceiveWouldBlockWhenIdle(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()

	transport := &netTransport{conn: client}
	defer transport.Close()

	buf := make([]byte, 16)
	n, err := transport.Receive(buf)
	assert.Zero(t, n)
	assert.ErrorIs(t, err, ErrWouldBlock)
}

// Pending bytes need a buffered connection to be observable under an
// immediate deadline, so this one runs over a real loopback socket.
func TestNetTransport_ReceiveReturnsPendingBytes(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		conn, err := listener.Accept()
		if err == nil {
			accepted <- conn
		}
	}()

	conn, err := net.Dial("tcp", listener.Addr().String())
	require.NoError(t, err)
	transport := &netTransport{conn: conn}
	defer transport.Close()

	server := <-accepted
	defer server.Close()
	_, err = server.Write([]byte("hello"))
	require.NoError(t, err)

	buf := make([]byte, 16)
	var n int
	for attempts := 0; attempts < 1000; attempts++ {
		n, err = transport.Receive(buf)
		if err == nil {
			break
		}
		require.ErrorIs(t, err, ErrWouldBlock)
		time.Sleep(time.Millisecond)
	}
	require.NoError(t, err)
	assert.Equal(t, "hello", string(buf[:n]))
}

func TestNetTransport_SendWritesThrough(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()

	transport := &netTransport{conn: client}
	defer transport.Close()

	received := make(chan []byte, 1)
	go func() {
		buf := make([]byte, 16)
		n, _ := server.Read(buf)
		received <- buf[:n]
	}()

	require.NoError(t, transport.Send([]byte("PING")))
	assert.Equal(t, "PING", string(<-received))
}

func TestNetTransport_ClosedConnectionIsFatal(t *testing.T) {
	client, server := net.Pipe()
	transport := &netTransport{conn: client}

	server.Close()

	buf := make([]byte, 16)
	_, err := transport.Receive(buf)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrWouldBlock)
}
