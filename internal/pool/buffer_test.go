package pool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBufferPool(t *testing.T) {
	bp := NewBufferPool()
	require.NotNil(t, bp)
	assert.NotNil(t, bp.small)
	assert.NotNil(t, bp.medium)
	assert.NotNil(t, bp.large)
}

func TestBufferPool_Get(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		wantCap int
	}{
		{"small request", 100, SmallBufferSize},
		{"exact small", SmallBufferSize, SmallBufferSize},
		{"medium request", SmallBufferSize + 1, MediumBufferSize},
		{"large request", MediumBufferSize + 1, LargeBufferSize},
		{"oversized request", LargeBufferSize + 1, LargeBufferSize + 1},
	}

	bp := NewBufferPool()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := bp.Get(tt.size)
			assert.Equal(t, tt.wantCap, cap(buf))
			assert.Equal(t, cap(buf), len(buf), "buffers must come back full length")
			assert.GreaterOrEqual(t, len(buf), tt.size)
			bp.Put(buf)
		})
	}
}

func TestBufferPool_PutRestoresLength(t *testing.T) {
	bp := NewBufferPool()

	buf := bp.Get(MediumBufferSize)
	buf = buf[:10]
	bp.Put(buf)

	again := bp.Get(MediumBufferSize)
	assert.Equal(t, MediumBufferSize, len(again), "pooled buffer must be full length on reuse")
}

func TestBufferPool_PutDropsUnknownCapacity(t *testing.T) {
	bp := NewBufferPool()

	// Odd capacity never enters a pool; this must not panic or corrupt
	// later Gets.
	bp.Put(make([]byte, 7777))

	buf := bp.Get(SmallBufferSize)
	assert.Equal(t, SmallBufferSize, cap(buf))
}

func TestGetCopyBuffer(t *testing.T) {
	buf := GetCopyBuffer()
	require.Equal(t, LargeBufferSize, len(buf))

	for i := range buf[:16] {
		buf[i] = byte(i)
	}
	PutCopyBuffer(buf)

	again := GetCopyBuffer()
	assert.Equal(t, LargeBufferSize, len(again))
	PutCopyBuffer(again)
}
