package redispoll

import (
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/arens-io/redispoll/resp"
)

// Config holds the configuration surface of a ConnectionHandler. The
// struct-tag names allow loading it from the environment via LoadConfig.
type Config struct {
	// Addr is the server address in host:port form.
	Addr string `env:"REDISPOLL_ADDR, default=127.0.0.1:6379"`

	// Username enables ACL based authentication when combined with
	// Password. Requires server version >= 6 with ACL enabled.
	Username string `env:"REDISPOLL_USERNAME"`

	// Password enables authentication during connection setup.
	Password string `env:"REDISPOLL_PASSWORD"`

	// Timeout is the maximum duration waiting for a single response.
	// Zero means wait forever.
	Timeout time.Duration `env:"REDISPOLL_TIMEOUT"`

	// UsePing probes a cached connection with PING before reusing it;
	// a failed probe forces a fresh dial.
	UsePing bool `env:"REDISPOLL_USE_PING"`

	// RESP3 selects the typed protocol variant with its mandatory
	// HELLO handshake. Ignored when Codec is set explicitly.
	RESP3 bool `env:"REDISPOLL_RESP3"`

	// BufferSize is the pre-allocated receive buffer capacity in bytes.
	BufferSize int `env:"REDISPOLL_BUFFER_SIZE"`

	// FrameCapacity is the pre-allocated frame table length.
	FrameCapacity int `env:"REDISPOLL_FRAME_CAPACITY"`

	// MemoryLimit is an optional hard ceiling in bytes on buffered
	// response data. Zero means no limit.
	MemoryLimit int `env:"REDISPOLL_MEMORY_LIMIT"`

	// Codec overrides the protocol variant. If nil, RESP3 picks
	// between resp.RESP2 and resp.RESP3.
	Codec resp.Codec

	// Dialer opens the transport. If nil, a plain TCP dialer is used.
	Dialer Dialer

	// Clock drives timeouts. If nil, the system monotonic clock is
	// used.
	Clock Clock

	// Logger receives connection lifecycle events. If nil, logging is
	// disabled.
	Logger *zap.Logger

	// NewCircuitBreaker wraps Connect attempts with a circuit breaker.
	// Called once with the server address. If nil, no breaker is used.
	NewCircuitBreaker func(addr string) *gobreaker.CircuitBreaker[*Client]
}

func (c Config) credentials() *Credentials {
	if c.Password == "" {
		return nil
	}
	if c.Username == "" {
		return PasswordOnly(c.Password)
	}
	return ACLCredentials(c.Username, c.Password)
}

func (c Config) memory() MemoryParameters {
	memory := DefaultMemoryParameters()
	if c.BufferSize > 0 {
		memory.BufferSize = c.BufferSize
	}
	if c.FrameCapacity > 0 {
		memory.FrameCapacity = c.FrameCapacity
	}
	memory.MemoryLimit = c.MemoryLimit
	return memory
}

// NewCircuitBreakerConfig returns a NewCircuitBreaker hook with a common
// trip policy: open after at least 3 attempts with a 60% failure ratio.
func NewCircuitBreakerConfig(maxRequests uint32, interval, timeout time.Duration) func(string) *gobreaker.CircuitBreaker[*Client] {
	return func(addr string) *gobreaker.CircuitBreaker[*Client] {
		settings := gobreaker.Settings{
			Name:        addr,
			MaxRequests: maxRequests,
			Interval:    interval,
			Timeout:     timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
				return counts.Requests >= 3 && failureRatio >= 0.6
			},
		}
		return gobreaker.NewCircuitBreaker[*Client](settings)
	}
}

// ConnectionHandler is the long-lived owner of the transport connection
// and of the cached authentication/handshake outcome. Connect returns
// cheap short-lived Clients borrowing the active connection, so callers
// are free to create one per task.
type ConnectionHandler struct {
	addr        string
	codec       resp.Codec
	dialer      Dialer
	clock       Clock
	credentials *Credentials
	timeout     time.Duration
	memory      MemoryParameters
	usePing     bool
	logger      *zap.Logger
	breaker     *gobreaker.CircuitBreaker[*Client]

	// Cached connection state. A session lives exactly as long as its
	// transport.
	transport Transport
	session   *session

	// The previous connect attempt failed during AUTH or HELLO; the
	// half-initialized socket gets discarded on the next Connect.
	initFailed bool

	// Cached HELLO response, RESP3 only.
	hello *HelloResponse
}

// NewConnectionHandler builds a handler from the given configuration.
func NewConnectionHandler(config Config) *ConnectionHandler {
	codec := config.Codec
	if codec == nil {
		if config.RESP3 {
			codec = resp.RESP3{}
		} else {
			codec = resp.RESP2{}
		}
	}

	dialer := config.Dialer
	if dialer == nil {
		dialer = &NetDialer{ConnectTimeout: config.Timeout}
	}

	clock := config.Clock
	if clock == nil {
		clock = SystemClock{}
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	handler := &ConnectionHandler{
		addr:        config.Addr,
		codec:       codec,
		dialer:      dialer,
		clock:       clock,
		credentials: config.credentials(),
		timeout:     config.Timeout,
		memory:      config.memory(),
		usePing:     config.UsePing,
		logger:      logger,
	}

	if config.NewCircuitBreaker != nil {
		handler.breaker = config.NewCircuitBreaker(config.Addr)
	}

	return handler
}

// Connect returns a ready-to-use Client. The underlying connection is
// cached: the first call dials, authenticates and performs the protocol
// handshake, later calls are cheap. The handler is not safe for
// concurrent use.
func (h *ConnectionHandler) Connect() (*Client, error) {
	if h.breaker != nil {
		return h.breaker.Execute(h.connect)
	}
	return h.connect()
}

func (h *ConnectionHandler) connect() (*Client, error) {
	// The previous socket may be stuck half-initialized, close it first.
	if h.initFailed {
		h.Disconnect()
	}

	h.probeTransport()

	if h.transport != nil {
		return h.client(), nil
	}

	transport, err := h.dialer.Dial(h.addr)
	if err != nil {
		h.logger.Warn("dial failed", zap.String("addr", h.addr), zap.Error(err))
		return nil, &TransportError{Op: "dial", Err: err}
	}

	h.transport = transport
	h.session = newSession(transport, h.codec, h.memory)

	hello, err := h.client().init(h.credentials)
	if err != nil {
		h.initFailed = true
		h.logger.Warn("connection setup failed", zap.String("addr", h.addr), zap.Error(err))
		return nil, err
	}
	h.hello = hello

	h.logger.Debug("connection established",
		zap.String("addr", h.addr),
		zap.Bool("handshake", h.codec.RequiresHandshake()))

	return h.client(), nil
}

// probeTransport checks a cached connection with a PING round trip when
// the liveness probe is enabled. Any failure discards the connection so a
// fresh one gets dialed.
func (h *ConnectionHandler) probeTransport() {
	if h.transport == nil || !h.usePing {
		return
	}

	if err := h.ping(); err != nil {
		h.logger.Warn("liveness probe failed, reconnecting", zap.Error(err))
		h.Disconnect()
	}
}

func (h *ConnectionHandler) ping() error {
	future, err := h.client().Ping()
	if err != nil {
		return err
	}
	_, err = future.Wait()
	return err
}

// Disconnect closes and forgets the cached connection, along with the
// cached handshake result.
func (h *ConnectionHandler) Disconnect() {
	if h.transport == nil {
		return
	}

	if err := h.transport.Close(); err != nil {
		h.logger.Debug("closing transport", zap.Error(err))
	}
	h.transport = nil
	h.session = nil
	h.hello = nil
	h.initFailed = false
}

func (h *ConnectionHandler) client() *Client {
	return &Client{
		session:         h.session,
		clock:           h.clock,
		timeoutDuration: h.timeout,
		hello:           h.hello,
		logger:          h.logger,
	}
}
