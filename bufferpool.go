package redispoll

import "sync"

// encodeBuffers recycles scratch buffers for the frame encode path, so
// repeated sends on hot paths do not allocate.
var encodeBuffers = newByteBufferPool(256)

type byteBufferPool struct {
	pool sync.Pool
}

func newByteBufferPool(initialSize int) *byteBufferPool {
	return &byteBufferPool{
		pool: sync.Pool{
			New: func() any {
				buf := make([]byte, 0, initialSize)
				return &buf
			},
		},
	}
}

func (p *byteBufferPool) Get() []byte {
	return (*p.pool.Get().(*[]byte))[:0]
}

func (p *byteBufferPool) Put(buf []byte) {
	buf = buf[:0]
	p.pool.Put(&buf)
}
