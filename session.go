package redispoll

import (
	"sync/atomic"

	"github.com/edwingeng/deque/v2"

	"github.com/arens-io/redispoll/resp"
)

// receiveChunkSize bounds a single non-blocking transport read.
const receiveChunkSize = 32

// Identity correlates one sent request with its eventual response slot.
//
// The series is a generation counter: it is bumped exactly when a fatal
// condition (timeout, decode fault) makes the mapping between buffered
// bytes and pending requests unreliable, which invalidates every
// outstanding identity at once. The index is assigned in strict send order
// within a series.
type Identity struct {
	series int
	index  int
}

// session glues the transport, the response buffer and the identity scheme
// together. One session exclusively owns its buffer and counters; all
// mutation happens through session methods from a single goroutine, which
// is enforced at runtime by ownerGuard.
type session struct {
	codec     resp.Codec
	transport Transport
	buffer    *responseBuffer

	currentSeries int
	nextIndex     int

	// Set by invalidateFutures: the transport must be drained and the
	// buffer cleared before the next send can correlate fresh requests
	// to fresh bytes.
	clearPending bool

	// Identities of futures discarded before their response was
	// retrieved. Their frames are reclaimed opportunistically so
	// abandoned requests cannot leak buffer memory.
	dropped *deque.Deque[Identity]

	guard ownerGuard

	chunk [receiveChunkSize]byte
}

func newSession(transport Transport, codec resp.Codec, memory MemoryParameters) *session {
	return &session{
		codec:     codec,
		transport: transport,
		buffer:    newResponseBuffer(codec, memory),
		dropped:   deque.NewDeque[Identity](),
	}
}

// send encodes and writes one request frame and allocates its Identity.
// A pending fatal clearance is resolved first: all available transport
// bytes are drained and discarded and the buffer is reset, guaranteeing a
// clean slate. Dropped futures are reclaimed opportunistically.
func (s *session) send(frame *resp.Frame) (Identity, error) {
	defer s.guard.exit(s.guard.enter())

	if s.clearPending {
		s.drainTransport()
		s.clearPending = false
	}

	s.reclaimDropped()

	if err := s.writeFrame(frame); err != nil {
		return Identity{}, err
	}

	id := Identity{series: s.currentSeries, index: s.nextIndex}
	s.nextIndex++
	return id, nil
}

// sendFrame writes a frame without allocating an Identity. Subscription
// traffic uses this, since push-style responses carry no request index.
func (s *session) sendFrame(frame *resp.Frame) error {
	defer s.guard.exit(s.guard.enter())
	return s.writeFrame(frame)
}

func (s *session) writeFrame(frame *resp.Frame) error {
	buf := encodeBuffers.Get()
	data, err := s.codec.Encode(buf, frame)
	if err != nil {
		encodeBuffers.Put(buf)
		return ErrEncodingFailed
	}

	err = s.transport.Send(data)
	encodeBuffers.Put(data)
	if err != nil {
		return &TransportError{Op: "send", Err: err}
	}
	return nil
}

// receiveChunk reads one bounded chunk without blocking and feeds it to the
// buffer. ErrWouldBlock means no data was available, which is not a
// failure.
func (s *session) receiveChunk() error {
	defer s.guard.exit(s.guard.enter())
	return s.receiveChunkLocked()
}

func (s *session) receiveChunkLocked() error {
	n, err := s.transport.Receive(s.chunk[:])
	if err != nil {
		if err == ErrWouldBlock {
			return ErrWouldBlock
		}
		return &TransportError{Op: "receive", Err: err}
	}
	s.buffer.append(s.chunk[:n])
	return nil
}

// receiveAll pumps available transport bytes into the buffer until the
// transport would block or fails.
func (s *session) receiveAll() {
	for s.receiveChunkLocked() == nil {
	}
}

// isComplete reports whether the response for id has been fully decoded.
// An identity from a retired series fails with ErrInvalidFuture. A faulted
// buffer invalidates every outstanding future and fails with
// ErrProtocolViolation.
func (s *session) isComplete(id Identity) (bool, error) {
	defer s.guard.exit(s.guard.enter())

	if id.series != s.currentSeries {
		return false, ErrInvalidFuture
	}

	if s.buffer.isComplete(id.index) {
		return true, nil
	}

	if s.buffer.isFaulty() {
		s.invalidateLocked()
		return false, ErrProtocolViolation
	}

	return false, nil
}

// takeFrame removes and returns the frame for id, or nil if the identity's
// series was retired, the frame is not complete yet, or it was already
// taken.
func (s *session) takeFrame(id Identity) *resp.Frame {
	defer s.guard.exit(s.guard.enter())

	if id.series != s.currentSeries {
		return nil
	}
	return s.buffer.takeFrame(id.index)
}

// takeNextFrame removes and returns the first pending frame regardless of
// identity.
func (s *session) takeNextFrame() *resp.Frame {
	defer s.guard.exit(s.guard.enter())
	return s.buffer.takeNextFrame()
}

// invalidateFutures is the single choke point through which every fatal
// condition cascades to all outstanding requests: the series moves on, the
// index restarts, and the next send drains the transport first.
func (s *session) invalidateFutures() {
	defer s.guard.exit(s.guard.enter())
	s.invalidateLocked()
}

func (s *session) invalidateLocked() {
	s.currentSeries++
	s.nextIndex = 0
	s.clearPending = true
}

// dropFuture records an identity whose future was discarded before its
// response was retrieved.
func (s *session) dropFuture(id Identity) {
	defer s.guard.exit(s.guard.enter())
	s.dropped.PushBack(id)
}

// handleDroppedFutures receives what is available and discards the frames
// of dropped identities that have since completed. Identities from retired
// series are forgotten unconditionally: their frames can never be found.
// Failures on this path are best-effort; nobody is waiting to observe them.
func (s *session) handleDroppedFutures() {
	defer s.guard.exit(s.guard.enter())
	s.reclaimDropped()
}

func (s *session) reclaimDropped() {
	if s.dropped.Len() == 0 {
		return
	}

	s.receiveAll()

	for i, n := 0, s.dropped.Len(); i < n; i++ {
		id := s.dropped.PopFront()
		if id.series != s.currentSeries {
			continue
		}
		if s.buffer.isComplete(id.index) {
			s.buffer.takeFrame(id.index)
			continue
		}
		s.dropped.PushBack(id)
	}
}

func (s *session) remainingDroppedFutures() bool {
	return s.dropped.Len() > 0
}

func (s *session) droppedFutureCount() int {
	return s.dropped.Len()
}

func (s *session) pendingFrameCount() int {
	return s.buffer.pendingFrameCount()
}

func (s *session) bufferFull() bool {
	return s.buffer.isFull()
}

// drainTransport discards all currently available transport bytes and
// resets the buffer. Called on the first send after a fatal event.
func (s *session) drainTransport() {
	for {
		if _, err := s.transport.Receive(s.chunk[:]); err != nil {
			break
		}
	}
	s.buffer.clear()
}

// ownerGuard enforces the single-owner discipline of the session at
// runtime. Call patterns are always non-reentrant within one session, so a
// violation is a programming error, not a recoverable condition.
type ownerGuard struct {
	held atomic.Bool
}

func (g *ownerGuard) enter() struct{} {
	if !g.held.CompareAndSwap(false, true) {
		panic("redispoll: concurrent session access")
	}
	return struct{}{}
}

func (g *ownerGuard) exit(struct{}) {
	g.held.Store(false)
}
