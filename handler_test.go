package redispoll

import (
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const helloReply = "%7\r\n" +
	"$6\r\nserver\r\n$5\r\nredis\r\n" +
	"$7\r\nversion\r\n$5\r\n7.4.0\r\n" +
	"$5\r\nproto\r\n:3\r\n" +
	"$2\r\nid\r\n:42\r\n" +
	"$4\r\nmode\r\n$10\r\nstandalone\r\n" +
	"$4\r\nrole\r\n$6\r\nmaster\r\n" +
	"$7\r\nmodules\r\n*0\r\n"

func TestHandler_ConnectCachesConnection(t *testing.T) {
	transport := &scriptTransport{}
	dialer := &scriptDialer{transports: []*scriptTransport{transport}}

	handler := NewConnectionHandler(Config{Addr: "localhost:6379", Dialer: dialer})

	client, err := handler.Connect()
	require.NoError(t, err)
	require.NotNil(t, client)

	// A second Connect reuses the cached transport.
	_, err = handler.Connect()
	require.NoError(t, err)
	assert.Equal(t, 1, dialer.dials)
}

func TestHandler_AuthenticatesDuringSetup(t *testing.T) {
	transport := &scriptTransport{}
	transport.reply("+OK\r\n")
	dialer := &scriptDialer{transports: []*scriptTransport{transport}}

	handler := NewConnectionHandler(Config{
		Addr:     "localhost:6379",
		Dialer:   dialer,
		Username: "app",
		Password: "secret",
	})

	_, err := handler.Connect()
	require.NoError(t, err)

	require.Len(t, transport.outbound, 1)
	assert.Equal(t, "*3\r\n$4\r\nAUTH\r\n$3\r\napp\r\n$6\r\nsecret\r\n",
		string(transport.outbound[0]))
}

func TestHandler_RESP3PerformsHandshake(t *testing.T) {
	transport := &scriptTransport{}
	transport.reply(helloReply)
	dialer := &scriptDialer{transports: []*scriptTransport{transport}}

	handler := NewConnectionHandler(Config{
		Addr:   "localhost:6379",
		Dialer: dialer,
		RESP3:  true,
	})

	client, err := handler.Connect()
	require.NoError(t, err)

	require.Len(t, transport.outbound, 1)
	assert.Equal(t, "*2\r\n$5\r\nHELLO\r\n$1\r\n3\r\n", string(transport.outbound[0]))

	hello := client.HelloResponse()
	require.NotNil(t, hello)
	assert.Equal(t, "redis", hello.Server)
	assert.Equal(t, "7.4.0", hello.Version)
	assert.Equal(t, int64(3), hello.Protocol)
	assert.Equal(t, "master", hello.Role)

	// The handshake result is cached across Connect calls.
	client, err = handler.Connect()
	require.NoError(t, err)
	assert.Equal(t, hello, client.HelloResponse())
}

func TestHandler_FailedSetupForcesFreshDial(t *testing.T) {
	first := &scriptTransport{}
	first.reply("-ERR invalid password\r\n")
	second := &scriptTransport{}
	second.reply("+OK\r\n")
	dialer := &scriptDialer{transports: []*scriptTransport{first, second}}

	handler := NewConnectionHandler(Config{
		Addr:     "localhost:6379",
		Dialer:   dialer,
		Password: "secret",
	})

	_, err := handler.Connect()
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)

	// The half-initialized socket is discarded, the retry dials anew.
	_, err = handler.Connect()
	require.NoError(t, err)
	assert.Equal(t, 2, dialer.dials)
	assert.True(t, first.closed)
}

func TestHandler_PingProbeReplacesDeadConnection(t *testing.T) {
	first := &scriptTransport{}
	second := &scriptTransport{}
	dialer := &scriptDialer{transports: []*scriptTransport{first, second}}

	handler := NewConnectionHandler(Config{
		Addr:    "localhost:6379",
		Dialer:  dialer,
		UsePing: true,
		Timeout: time.Second,
		Clock:   &expiringClock{polls: 2},
	})

	_, err := handler.Connect()
	require.NoError(t, err)
	require.Equal(t, 1, dialer.dials)

	// The connection dies silently; the probe times out and the handler
	// dials a replacement.
	first.receiveErr = assert.AnError

	_, err = handler.Connect()
	require.NoError(t, err)
	assert.Equal(t, 2, dialer.dials)
	assert.True(t, first.closed)
}

func TestHandler_DialFailure(t *testing.T) {
	dialer := &scriptDialer{dialErr: assert.AnError}
	handler := NewConnectionHandler(Config{Addr: "localhost:6379", Dialer: dialer})

	_, err := handler.Connect()
	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, "dial", transportErr.Op)
}

func TestHandler_CircuitBreakerOpensAfterRepeatedFailures(t *testing.T) {
	dialer := &scriptDialer{dialErr: assert.AnError}

	handler := NewConnectionHandler(Config{
		Addr:              "localhost:6379",
		Dialer:            dialer,
		NewCircuitBreaker: NewCircuitBreakerConfig(1, 0, time.Minute),
	})

	for i := 0; i < 3; i++ {
		_, err := handler.Connect()
		require.Error(t, err)
	}

	_, err := handler.Connect()
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
}

func TestHandler_DisconnectDropsState(t *testing.T) {
	transport := &scriptTransport{}
	transport.reply(helloReply)
	dialer := &scriptDialer{transports: []*scriptTransport{transport, {}}}

	handler := NewConnectionHandler(Config{
		Addr:   "localhost:6379",
		Dialer: dialer,
		RESP3:  true,
	})

	_, err := handler.Connect()
	require.NoError(t, err)

	handler.Disconnect()
	assert.True(t, transport.closed)
	assert.Nil(t, handler.session)
	assert.Nil(t, handler.hello)
}
