package redispoll

import "time"

// Clock is a pluggable monotonic time source. A nil Clock on the handler
// disables timeouts entirely.
type Clock interface {
	// NewTimer arms a one-shot timer expiring after d.
	NewTimer(d time.Duration) (Timer, error)
}

// Timer is a one-shot deadline. Expired is side-effect-free and stays true
// once the deadline has passed.
type Timer interface {
	Expired() (bool, error)
}

// SystemClock implements Clock on the runtime's monotonic clock.
type SystemClock struct{}

func (SystemClock) NewTimer(d time.Duration) (Timer, error) {
	return &systemTimer{deadline: time.Now().Add(d)}, nil
}

type systemTimer struct {
	deadline time.Time
}

func (t *systemTimer) Expired() (bool, error) {
	return !time.Now().Before(t.deadline), nil
}
