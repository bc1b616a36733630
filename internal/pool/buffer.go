package pool

import (
	"sync"
)

const (
	// SmallBufferSize serves header and metadata reads (4KB).
	SmallBufferSize = 4 * 1024
	// MediumBufferSize serves small object bodies (64KB).
	MediumBufferSize = 64 * 1024
	// LargeBufferSize is the scratch size for streaming object bodies
	// to disk (1MB).
	LargeBufferSize = 1024 * 1024
)

// BufferPool hands out reusable fixed-size buffers.
type BufferPool struct {
	small  *sync.Pool
	medium *sync.Pool
	large  *sync.Pool
}

// NewBufferPool creates a pool covering all three buffer sizes.
func NewBufferPool() *BufferPool {
	return &BufferPool{
		small:  newSizedPool(SmallBufferSize),
		medium: newSizedPool(MediumBufferSize),
		large:  newSizedPool(LargeBufferSize),
	}
}

func newSizedPool(size int) *sync.Pool {
	return &sync.Pool{
		New: func() interface{} {
			buf := make([]byte, size)
			return &buf
		},
	}
}

// Get returns a full-length buffer of at least size bytes. Requests beyond
// LargeBufferSize allocate a fresh buffer that Put will not pool.
func (bp *BufferPool) Get(size int) []byte {
	switch {
	case size <= SmallBufferSize:
		return *bp.small.Get().(*[]byte)
	case size <= MediumBufferSize:
		return *bp.medium.Get().(*[]byte)
	case size <= LargeBufferSize:
		return *bp.large.Get().(*[]byte)
	default:
		return make([]byte, size)
	}
}

// Put returns a buffer to the pool matching its capacity. Buffers of any
// other capacity are dropped.
func (bp *BufferPool) Put(buf []byte) {
	buf = buf[:cap(buf)]
	switch cap(buf) {
	case SmallBufferSize:
		bp.small.Put(&buf)
	case MediumBufferSize:
		bp.medium.Put(&buf)
	case LargeBufferSize:
		bp.large.Put(&buf)
	}
}

// globalPool backs the package-level helpers.
var globalPool = NewBufferPool()

// GetCopyBuffer returns a scratch buffer sized for streaming downloads.
func GetCopyBuffer() []byte {
	return globalPool.Get(LargeBufferSize)
}

// PutCopyBuffer hands a buffer from GetCopyBuffer back to the pool.
func PutCopyBuffer(buf []byte) {
	globalPool.Put(buf)
}
