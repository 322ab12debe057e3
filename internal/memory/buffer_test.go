package memory

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferFilledRoundTrip(t *testing.T) {
	ctx, _ := testContext(t)

	b, err := NewBuffer[uint64, Unified](ctx, 0, 5)
	require.NoError(t, err)
	defer b.Free()

	Slice(b)[2] = 1
	assert.Equal(t, []uint64{0, 0, 1, 0, 0}, Slice(b))
}

func TestBufferFromSlice(t *testing.T) {
	ctx, _ := testContext(t)

	vals := []float32{1.5, 2.5, 3.5}
	b, err := NewBufferFromSlice[float32, Locked](ctx, vals)
	require.NoError(t, err)
	defer b.Free()

	assert.Equal(t, 3, b.Len())
	assert.Equal(t, vals, Slice(b))

	// The buffer owns its storage: mutating the source must not show.
	vals[0] = -1
	assert.Equal(t, float32(1.5), Slice(b)[0])
}

func TestBufferUninitializedElementSlots(t *testing.T) {
	ctx, _ := testContext(t)

	const n = 16
	b, err := NewBufferUninitialized[uint32, Unified](ctx, n)
	require.NoError(t, err)
	defer b.Free()

	s := Slice(b)
	require.Len(t, s, n)
	for i := range s {
		s[i] = uint32(i * 3)
	}
	// No aliasing between adjacent slots: every element keeps its value.
	for i, got := range Slice(b) {
		assert.Equal(t, uint32(i*3), got)
	}
}

func TestBufferSizeOverflowCheckedBeforeBackend(t *testing.T) {
	ctx, counters := testContext(t)

	_, err := NewBufferUninitialized[uint64, Device](ctx, math.MaxInt-1)
	assert.ErrorIs(t, err, ErrSizeOverflow)
	assert.Equal(t, int64(0), counters.allocs.Load(), "overflow must be caught before any driver call")
}

func TestBufferNegativeCount(t *testing.T) {
	ctx, _ := testContext(t)

	_, err := NewBufferUninitialized[byte, Locked](ctx, -1)
	assert.Error(t, err)
}

func TestBufferZeroCountBehavesEmptyNotReleased(t *testing.T) {
	ctx, counters := testContext(t)

	b, err := NewBufferUninitialized[int64, Unified](ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), counters.allocs.Load())

	assert.False(t, b.Released())
	assert.Empty(t, Slice(b))
	require.NoError(t, b.TryFree())
	assert.True(t, b.Released())
	assert.ErrorIs(t, b.TryFree(), ErrReleased)
}

func TestBufferZeroSizedElements(t *testing.T) {
	ctx, counters := testContext(t)

	b, err := NewBuffer[empty, Locked](ctx, empty{}, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(0), counters.allocs.Load())

	// Iterates as an ordinary sequence of four elements.
	assert.Len(t, Slice(b), 4)
	assert.False(t, b.Released())
	require.NoError(t, b.TryFree())
}

func TestBufferRawPartsRoundTripIdentity(t *testing.T) {
	ctx, _ := testContext(t)

	orig, err := NewBufferFromSlice[uint16, Unified](ctx, []uint16{9, 8, 7, 6})
	require.NoError(t, err)

	raw, capacity := orig.IntoRawParts()
	assert.True(t, orig.Released())
	assert.Equal(t, 4, capacity)

	rebuilt := AdoptRawParts[uint16, Unified](ctx, raw, capacity)
	defer rebuilt.Free()
	assert.Equal(t, []uint16{9, 8, 7, 6}, Slice(rebuilt))
}

func TestBufferTryFreeFailureKeepsContents(t *testing.T) {
	ctx, counters := testContext(t)

	b, err := NewBufferFromSlice[byte, Locked](ctx, []byte{1, 2, 3})
	require.NoError(t, err)

	counters.failFreeWith(errors.New("deferred async failure"))
	err = b.TryFree()
	var relErr *ReleaseError
	require.ErrorAs(t, err, &relErr)

	assert.False(t, b.Released())
	assert.Equal(t, []byte{1, 2, 3}, Slice(b))

	counters.clearFreeErr()
	require.NoError(t, b.TryFree())
}

func TestSliceReleasedBufferPanics(t *testing.T) {
	ctx, _ := testContext(t)

	b, err := NewBuffer[int32, Unified](ctx, 0, 2)
	require.NoError(t, err)
	require.NoError(t, b.TryFree())

	assert.Panics(t, func() { Slice(b) })
}

func TestDeviceBufferAllocatesButForbidsNothingElse(t *testing.T) {
	ctx, counters := testContext(t)

	// Device buffers allocate normally; access is transfer-only, which is
	// enforced at compile time by the HostPolicy constraint on Slice.
	b, err := NewBufferUninitialized[float64, Device](ctx, 8)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counters.allocs.Load())
	require.NoError(t, b.TryFree())
}
