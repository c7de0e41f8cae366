package redispoll

import "github.com/arens-io/redispoll/resp"

// MemoryParameters tunes the allocation behavior of the response buffer.
type MemoryParameters struct {
	// BufferSize is the pre-allocated capacity of the unparsed byte
	// tail. Should correspond to the maximum expected response size.
	BufferSize int

	// FrameCapacity is the pre-allocated length of the frame table.
	// Should correspond to the expected number of in-flight requests.
	FrameCapacity int

	// MemoryLimit is an optional hard ceiling in bytes on the unparsed
	// tail, guarding against unbounded buffer growth. Zero means no
	// limit. Exceeding the limit surfaces as ErrMemoryFull on the
	// affected future.
	MemoryLimit int
}

// DefaultMemoryParameters returns the defaults used when the handler
// config leaves the memory fields zero.
func DefaultMemoryParameters() MemoryParameters {
	return MemoryParameters{BufferSize: 256, FrameCapacity: 8}
}

// responseBuffer accumulates received bytes and incrementally decodes them
// into an indexed table of frames.
//
// Frames are addressed by a global index: slot 0 of the table corresponds
// to global index frameOffset. When every frame of the current window has
// been taken the table collapses and the offset advances by its prior
// length, reclaiming memory after a fully drained pipeline.
type responseBuffer struct {
	codec resp.Codec

	// Unparsed byte tail. Always positioned at a frame boundary.
	tail []byte

	// Frame table. A nil entry is a frame that was already taken.
	frames []*resp.Frame

	// Number of present (untaken) frames in the table.
	frameCount int

	// Global index represented by table slot 0.
	frameOffset int

	// Set once an undecodable byte sequence was seen. Sticky: only
	// clear() resets it. Frames decoded before the fault stay
	// retrievable; parsing never resumes.
	faulty bool

	// Byte ceiling for tail. 0 means unlimited.
	limit int
}

func newResponseBuffer(codec resp.Codec, memory MemoryParameters) *responseBuffer {
	return &responseBuffer{
		codec:  codec,
		tail:   make([]byte, 0, memory.BufferSize),
		frames: make([]*resp.Frame, 0, memory.FrameCapacity),
		limit:  memory.MemoryLimit,
	}
}

// append adds received bytes to the tail and decodes as many complete
// frames as possible. Once the byte ceiling is exceeded, append is a no-op.
func (b *responseBuffer) append(data []byte) {
	if b.isFull() {
		return
	}

	b.tail = append(b.tail, data...)
	b.parseFrames()
}

// parseFrames decodes frames from the tail until the data runs out mid
// frame or a decode fault occurs, then truncates the tail to the unparsed
// remainder. If no frame completed, the tail stays untouched so a later
// append can finish the in-progress frame.
func (b *responseBuffer) parseFrames() {
	consumed := 0

	for !b.faulty && consumed < len(b.tail) {
		frame, n, err := b.codec.Decode(b.tail[consumed:])
		if err != nil {
			b.faulty = true
			break
		}
		if frame == nil {
			break
		}

		b.frames = append(b.frames, frame)
		b.frameCount++
		consumed += n
	}

	if consumed == 0 {
		return
	}
	if consumed == len(b.tail) {
		b.tail = b.tail[:0]
		return
	}
	b.tail = append(b.tail[:0], b.tail[consumed:]...)
}

// isComplete reports whether the frame at the given global index has been
// decoded. Indexes below the current offset belong to a retired window and
// report false. An index inside the current window reports true even if
// that slot was already taken; only full-window compaction retires indexes.
func (b *responseBuffer) isComplete(index int) bool {
	if index < b.frameOffset {
		return false
	}
	return index-b.frameOffset < len(b.frames)
}

// takeFrame removes and returns the frame at the given global index, or nil
// if the index is out of range or the slot was already taken. Taking the
// last present frame collapses the table.
func (b *responseBuffer) takeFrame(index int) *resp.Frame {
	if index < b.frameOffset {
		return nil
	}
	index -= b.frameOffset
	if index >= len(b.frames) {
		return nil
	}

	frame := b.frames[index]
	if frame != nil {
		b.frames[index] = nil
		b.frameCount--
	}

	if b.frameCount == 0 {
		b.frameOffset += len(b.frames)
		b.frames = b.frames[:0]
	}

	return frame
}

// takeNextFrame removes and returns the first still-present frame in table
// order, independent of any request identity. Push-style consumers read
// unsolicited frames through this.
func (b *responseBuffer) takeNextFrame() *resp.Frame {
	for i, frame := range b.frames {
		if frame != nil {
			return b.takeFrame(i + b.frameOffset)
		}
	}
	return nil
}

func (b *responseBuffer) isFaulty() bool {
	return b.faulty
}

func (b *responseBuffer) isFull() bool {
	return b.limit > 0 && len(b.tail) > b.limit
}

// clear hard-resets the buffer, including the faulty flag and the offset.
// Used only on the fatal path together with a full transport drain.
func (b *responseBuffer) clear() {
	b.tail = b.tail[:0]
	b.frames = b.frames[:0]
	b.frameCount = 0
	b.frameOffset = 0
	b.faulty = false
}

func (b *responseBuffer) pendingFrameCount() int {
	return b.frameCount
}
