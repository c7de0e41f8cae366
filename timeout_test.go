package redispoll

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeout_ZeroDurationNeverExpires(t *testing.T) {
	clock := &manualClock{}

	timeout, err := newTimeout(clock, 0)
	require.NoError(t, err)

	clock.advance(time.Hour)
	expired, err := timeout.expired()
	require.NoError(t, err)
	assert.False(t, expired)
}

func TestTimeout_NilClockNeverExpires(t *testing.T) {
	timeout, err := newTimeout(nil, time.Second)
	require.NoError(t, err)

	expired, err := timeout.expired()
	require.NoError(t, err)
	assert.False(t, expired)
}

func TestTimeout_ExpiresAfterDeadline(t *testing.T) {
	clock := &manualClock{}

	timeout, err := newTimeout(clock, 100*time.Millisecond)
	require.NoError(t, err)

	expired, err := timeout.expired()
	require.NoError(t, err)
	require.False(t, expired)

	clock.advance(100 * time.Millisecond)
	expired, err = timeout.expired()
	require.NoError(t, err)
	assert.True(t, expired)
}

func TestTimeout_ArmFailure(t *testing.T) {
	clock := &manualClock{newTimerErr: assert.AnError}

	_, err := newTimeout(clock, time.Second)
	assert.ErrorIs(t, err, ErrTimer)
}

func TestTimeout_ClockFailureWhilePolling(t *testing.T) {
	clock := &manualClock{}

	timeout, err := newTimeout(clock, time.Second)
	require.NoError(t, err)

	clock.expiredErr = assert.AnError
	_, err = timeout.expired()
	assert.ErrorIs(t, err, ErrTimer)
}
