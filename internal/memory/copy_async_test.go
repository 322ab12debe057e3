package memory

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsyncCopyReturnsBeforeExecuting(t *testing.T) {
	ctx, _ := testContext(t)

	s, err := ctx.CreateStream(true, 0)
	require.NoError(t, err)

	src, err := NewBufferFromSlice[int32, Locked](ctx, []int32{1, 2, 3})
	require.NoError(t, err)
	defer src.Free()
	dst, err := NewBuffer[int32, Locked](ctx, 0, 3)
	require.NoError(t, err)
	defer dst.Free()

	// Stall the stream so the copy cannot possibly have run yet.
	gate := make(chan struct{})
	s.Submit(func() { <-gate })

	require.NoError(t, CopyBufferAsync(s, dst, src))
	assert.Equal(t, []int32{0, 0, 0}, Slice(dst), "enqueue must not execute synchronously")

	close(gate)
	s.Synchronize()
	assert.Equal(t, []int32{1, 2, 3}, Slice(dst))
}

func TestAsyncCopiesSameStreamKeepSubmissionOrder(t *testing.T) {
	ctx, _ := testContext(t)

	s, err := ctx.CreateStream(true, 0)
	require.NoError(t, err)

	first, err := NewBufferFromSlice[byte, Locked](ctx, []byte{1, 1, 1})
	require.NoError(t, err)
	defer first.Free()
	second, err := NewBufferFromSlice[byte, Locked](ctx, []byte{2, 2, 2})
	require.NoError(t, err)
	defer second.Free()
	dst, err := NewBuffer[byte, Locked](ctx, 0, 3)
	require.NoError(t, err)
	defer dst.Free()

	require.NoError(t, CopyBufferAsync(s, dst, first))
	require.NoError(t, CopyBufferAsync(s, dst, second))
	s.Synchronize()

	assert.Equal(t, []byte{2, 2, 2}, Slice(dst), "the later copy must land last on one stream")
}

func TestAsyncCopiesDistinctStreamsUnordered(t *testing.T) {
	ctx, _ := testContext(t)

	s1, err := ctx.CreateStream(true, 0)
	require.NoError(t, err)
	s2, err := ctx.CreateStream(true, 0)
	require.NoError(t, err)

	// Completion recorder: notes which stream's work finished, in
	// wall-clock completion order.
	var mu sync.Mutex
	var completions []int
	record := func(id int) {
		mu.Lock()
		completions = append(completions, id)
		mu.Unlock()
	}

	// Stall stream 1 so stream 2 finishes first, proving no cross-stream
	// ordering is imposed even though stream 1's work was submitted first.
	gate := make(chan struct{})
	s1.Submit(func() { <-gate })

	a, err := NewBufferFromSlice[byte, Locked](ctx, []byte{1})
	require.NoError(t, err)
	defer a.Free()
	b, err := NewBuffer[byte, Locked](ctx, 0, 1)
	require.NoError(t, err)
	defer b.Free()
	c, err := NewBuffer[byte, Locked](ctx, 0, 1)
	require.NoError(t, err)
	defer c.Free()

	require.NoError(t, CopyBufferAsync(s1, b, a))
	s1.Submit(func() { record(1) })
	require.NoError(t, CopyBufferAsync(s2, c, a))
	s2.Submit(func() { record(2) })

	s2.Synchronize()
	close(gate)
	s1.Synchronize()

	require.Equal(t, []int{2, 1}, completions,
		"work on an unblocked stream completes regardless of submission order on another stream")
	assert.Equal(t, []byte{1}, Slice(b))
	assert.Equal(t, []byte{1}, Slice(c))
}

func TestAsyncCopySizeMismatchDetectedBeforeEnqueue(t *testing.T) {
	ctx, _ := testContext(t)

	s, err := ctx.CreateStream(true, 0)
	require.NoError(t, err)

	a, err := NewBuffer[byte, Locked](ctx, 0, 2)
	require.NoError(t, err)
	defer a.Free()
	b, err := NewBuffer[byte, Locked](ctx, 0, 3)
	require.NoError(t, err)
	defer b.Free()

	var mismatch *SizeMismatchError
	assert.ErrorAs(t, CopyBufferAsync(s, a, b), &mismatch)
	s.Synchronize()
	assert.Equal(t, []byte{0, 0}, Slice(a))
}

func TestAsyncBoxCopy(t *testing.T) {
	ctx, _ := testContext(t)

	s, err := ctx.CreateStream(true, 0)
	require.NoError(t, err)

	src, err := NewBox[uint64, Locked](ctx, 99)
	require.NoError(t, err)
	defer src.Free()
	dev, err := NewBoxUninitialized[uint64, Device](ctx)
	require.NoError(t, err)
	defer dev.Free()

	require.NoError(t, CopyBoxAsync(s, dev, src))
	s.Synchronize()

	var out uint64
	require.NoError(t, CopyBoxOut(&out, dev))
	assert.Equal(t, uint64(99), out)
}
