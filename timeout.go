package redispoll

import "time"

// timeout wraps an optional one-shot timer. The zero value never expires,
// which models "no timeout configured".
type timeout struct {
	timer Timer
}

// newTimeout arms a timer on the given clock. A nil clock or a zero
// duration yields a timeout that never expires. A clock that rejects
// arming surfaces as ErrTimer.
func newTimeout(clock Clock, duration time.Duration) (timeout, error) {
	if clock == nil || duration == 0 {
		return timeout{}, nil
	}

	timer, err := clock.NewTimer(duration)
	if err != nil {
		return timeout{}, ErrTimer
	}
	return timeout{timer: timer}, nil
}

// expired reports whether the deadline has passed. A clock failure
// mid-flight surfaces as ErrTimer; callers treat it as fatal, equivalent
// to an elapsed timeout.
func (t timeout) expired() (bool, error) {
	if t.timer == nil {
		return false, nil
	}

	result, err := t.timer.Expired()
	if err != nil {
		return false, ErrTimer
	}
	return result, nil
}
