package redispoll

import (
	"errors"
	"runtime"
)

// Future is the poll/wait handle for one in-flight request. It is bound to
// the session that sent the request and is the only concurrency primitive
// exposed to callers: there is no background goroutine, all progress
// happens inside Ready and Wait.
//
// A Future that will never be waited on must be released with Discard, so
// its eventual response can be reclaimed instead of pinning buffer memory.
type Future[R any] struct {
	id      Identity
	command Command[R]
	session *session
	timeout timeout

	// Error observed during Ready, replayed by Wait.
	err error

	// Wait was called (or the future was discarded).
	resolved bool
}

// Ready performs one non-blocking processing pass and reports whether Wait
// will return without blocking. Fatal conditions observed during the pass
// (transport failure, protocol fault, elapsed timeout) are cached and make
// Ready return true, so a later Wait fails fast instead of spinning on
// data that can never arrive.
func (f *Future[R]) Ready() bool {
	if err := f.process(false); err != nil {
		f.err = err
		return true
	}

	complete, err := f.session.isComplete(f.id)
	if err != nil {
		f.err = err
		return true
	}
	return complete
}

// Wait blocks in a spin-poll loop until the response arrived, then
// evaluates it through the command. Server error frames surface as
// *ServerError before the command sees them; a response of the wrong shape
// surfaces as ErrResponseViolation. An elapsed timeout invalidates the
// whole series before returning ErrTimeout.
//
// A future is single-shot: once Wait returned a result or Discard released
// it, further Wait calls replay the fatal error if one was observed and
// fail with ErrFutureConsumed otherwise.
func (f *Future[R]) Wait() (R, error) {
	var zero R

	if f.resolved {
		if f.err != nil {
			return zero, f.err
		}
		return zero, ErrFutureConsumed
	}
	f.resolved = true

	if f.err != nil {
		return zero, f.err
	}

	if err := f.process(true); err != nil {
		f.err = err
		return zero, err
	}

	// The process call above guarantees the frame is present.
	frame := f.session.takeFrame(f.id)

	if message, isErr := f.session.codec.ErrorMessage(frame); isErr {
		return zero, &ServerError{Message: message}
	}

	result, err := f.command.Evaluate(frame)
	if err != nil {
		return zero, ErrResponseViolation
	}
	return result, nil
}

// Discard releases a future that will not be waited on. Its identity is
// handed to the session so the eventual response gets drained and thrown
// away. Discarding a resolved future is a no-op.
func (f *Future[R]) Discard() {
	if f.resolved {
		return
	}
	f.resolved = true
	f.session.dropFuture(f.id)
}

// process pumps transport bytes into the buffer until the response for
// this future is complete. With block=false it returns after the transport
// would block; with block=true it spins until completion, a fatal error,
// an exceeded memory ceiling, or the timeout elapses.
func (f *Future[R]) process(block bool) error {
	for {
		complete, err := f.session.isComplete(f.id)
		if err != nil {
			return err
		}
		if complete {
			return nil
		}

		receiveErr := f.session.receiveChunk()

		if f.session.bufferFull() {
			return ErrMemoryFull
		}

		if receiveErr == nil {
			continue
		}
		if !errors.Is(receiveErr, ErrWouldBlock) {
			return receiveErr
		}

		expired, err := f.timeout.expired()
		if err != nil {
			return err
		}
		if expired {
			f.session.invalidateFutures()
			return ErrTimeout
		}

		if !block {
			return nil
		}
		runtime.Gosched()
	}
}
