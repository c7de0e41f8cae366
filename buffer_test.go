package redispoll

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arens-io/redispoll/resp"
)

func newTestBuffer() *responseBuffer {
	return newResponseBuffer(resp.RESP2{}, DefaultMemoryParameters())
}

func TestBuffer_DecodeInOrder(t *testing.T) {
	buffer := newTestBuffer()
	buffer.append([]byte("+OK\r\n:42\r\n"))

	require.True(t, buffer.isComplete(0))
	require.True(t, buffer.isComplete(1))
	require.False(t, buffer.isComplete(2))
	assert.Equal(t, 2, buffer.pendingFrameCount())

	first := buffer.takeFrame(0)
	require.NotNil(t, first)
	status, ok := first.StringValue()
	require.True(t, ok)
	assert.Equal(t, "OK", status)

	second := buffer.takeFrame(1)
	require.NotNil(t, second)
	number, ok := second.IntegerValue()
	require.True(t, ok)
	assert.Equal(t, int64(42), number)
}

func TestBuffer_PartialFrameCompletesAcrossAppends(t *testing.T) {
	buffer := newTestBuffer()

	buffer.append([]byte("$5\r\nhel"))
	require.False(t, buffer.isComplete(0))

	buffer.append([]byte("lo\r\n"))
	require.True(t, buffer.isComplete(0))

	frame := buffer.takeFrame(0)
	require.NotNil(t, frame)
	data, ok := frame.StringBytes()
	require.True(t, ok)
	assert.Equal(t, "hello", string(data))
}

func TestBuffer_OutOfOrderTake(t *testing.T) {
	buffer := newTestBuffer()
	buffer.append([]byte("+one\r\n+two\r\n+three\r\n"))

	require.NotNil(t, buffer.takeFrame(2))
	require.NotNil(t, buffer.takeFrame(0))
	require.NotNil(t, buffer.takeFrame(1))
	assert.Nil(t, buffer.takeFrame(1))
}

// A decode fault is sticky but frames decoded before it stay retrievable.
func TestBuffer_FaultIsolation(t *testing.T) {
	buffer := newTestBuffer()
	buffer.append([]byte("+OK\r\n&bad\r\n"))

	require.True(t, buffer.isFaulty())
	require.True(t, buffer.isComplete(0))

	frame := buffer.takeFrame(0)
	require.NotNil(t, frame)

	// Parsing never resumes, even with valid bytes appended.
	buffer.append([]byte("+later\r\n"))
	assert.True(t, buffer.isFaulty())
	assert.False(t, buffer.isComplete(1))
}

// Draining the whole window collapses the frame table and advances the
// offset, so later frames keep globally increasing indexes.
func TestBuffer_OffsetAdvancesAfterFullDrain(t *testing.T) {
	buffer := newTestBuffer()
	buffer.append([]byte("+a\r\n+b\r\n+c\r\n"))

	for i := 0; i < 3; i++ {
		require.NotNil(t, buffer.takeFrame(i))
	}
	assert.Equal(t, 3, buffer.frameOffset)

	buffer.append([]byte("+d\r\n+e\r\n"))

	// Retired indexes stay dead.
	require.False(t, buffer.isComplete(0))
	require.Nil(t, buffer.takeFrame(2))

	require.True(t, buffer.isComplete(3))
	require.True(t, buffer.isComplete(4))
	require.NotNil(t, buffer.takeFrame(3))
	require.NotNil(t, buffer.takeFrame(4))
}

// A taken slot inside the current window still reports complete; only
// full-window compaction retires indexes.
func TestBuffer_TakenSlotStaysComplete(t *testing.T) {
	buffer := newTestBuffer()
	buffer.append([]byte("+a\r\n+b\r\n"))

	require.NotNil(t, buffer.takeFrame(0))
	assert.True(t, buffer.isComplete(0))
	assert.Nil(t, buffer.takeFrame(0))
}

func TestBuffer_MemoryLimit(t *testing.T) {
	memory := MemoryParameters{BufferSize: 16, FrameCapacity: 2, MemoryLimit: 8}
	buffer := newResponseBuffer(resp.RESP2{}, memory)

	// Incomplete frame larger than the ceiling.
	buffer.append([]byte("$100\r\nmore than"))
	require.True(t, buffer.isFull())

	// Further appends are dropped while full.
	tail := len(buffer.tail)
	buffer.append([]byte("ignored"))
	assert.Equal(t, tail, len(buffer.tail))

	buffer.clear()
	assert.False(t, buffer.isFull())
}

func TestBuffer_ClearResetsEverything(t *testing.T) {
	buffer := newTestBuffer()
	buffer.append([]byte("+a\r\n&bad\r\n"))
	require.NotNil(t, buffer.takeFrame(0))
	require.True(t, buffer.isFaulty())

	buffer.clear()

	assert.False(t, buffer.isFaulty())
	assert.Equal(t, 0, buffer.frameOffset)
	assert.Equal(t, 0, buffer.pendingFrameCount())

	buffer.append([]byte("+fresh\r\n"))
	assert.True(t, buffer.isComplete(0))
}

func TestBuffer_TakeNextFrameSkipsTakenSlots(t *testing.T) {
	buffer := newTestBuffer()
	buffer.append([]byte("+a\r\n+b\r\n+c\r\n"))

	require.NotNil(t, buffer.takeFrame(0))

	next := buffer.takeNextFrame()
	require.NotNil(t, next)
	status, ok := next.StringValue()
	require.True(t, ok)
	assert.Equal(t, "b", status)

	assert.Nil(t, buffer.takeFrame(1))
}
