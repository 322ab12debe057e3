package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromiseResolvesExactlyOnce(t *testing.T) {
	ctx, _ := testContext(t)

	s, err := ctx.CreateStream(true, 0)
	require.NoError(t, err)

	runs := 0
	p := NewPromise(ctx, s, func(e *Executor) {
		runs++
		assert.Same(t, s, e.Stream())
		assert.Same(t, ctx, e.Context())
	})

	require.NoError(t, p.Resolve())
	assert.Equal(t, 1, runs)

	assert.ErrorIs(t, p.Resolve(), ErrAlreadyResolved)
	assert.Equal(t, 1, runs)
}

func TestPromiseDiscardDropsClosure(t *testing.T) {
	ctx, _ := testContext(t)

	s, err := ctx.CreateStream(true, 0)
	require.NoError(t, err)

	runs := 0
	p := NewPromise(ctx, s, func(*Executor) { runs++ })

	p.Discard()
	assert.ErrorIs(t, p.Resolve(), ErrDiscarded)
	assert.Equal(t, 0, runs, "a discarded closure must never run")

	// Discard is terminal and idempotent.
	p.Discard()
}

func TestPromiseDiscardAfterResolveIsNoop(t *testing.T) {
	ctx, _ := testContext(t)

	s, err := ctx.CreateStream(true, 0)
	require.NoError(t, err)

	p := NewPromise(ctx, s, func(*Executor) {})
	require.NoError(t, p.Resolve())
	p.Discard()
	assert.ErrorIs(t, p.Resolve(), ErrAlreadyResolved)
}

func TestPromiseReadyNeverReportsCompletion(t *testing.T) {
	ctx, _ := testContext(t)

	s, err := ctx.CreateStream(true, 0)
	require.NoError(t, err)

	p := NewPromise(ctx, s, func(e *Executor) {
		e.Enqueue(func() {})
	})

	assert.False(t, p.Ready())
	require.NoError(t, p.Resolve())
	s.Synchronize()

	// Completion is observable only through the stream, never here.
	assert.False(t, p.Ready())
}

func TestPromiseExecutorWorkIsStreamOrdered(t *testing.T) {
	ctx, _ := testContext(t)

	s, err := ctx.CreateStream(true, 0)
	require.NoError(t, err)

	src, err := NewBufferFromSlice[int32, Locked](ctx, []int32{5, 6})
	require.NoError(t, err)
	defer src.Free()
	dst, err := NewBuffer[int32, Locked](ctx, 0, 2)
	require.NoError(t, err)
	defer dst.Free()

	var observed []int32
	p := NewPromise(ctx, s, func(e *Executor) {
		// Enqueued work runs after everything already on the stream.
		require.NoError(t, CopyBufferAsync(e.Stream(), dst, src))
		e.Enqueue(func() {
			observed = append([]int32(nil), Slice(dst)...)
		})
	})

	require.NoError(t, p.Resolve())
	s.Synchronize()

	assert.Equal(t, []int32{5, 6}, observed, "executor tasks observe earlier stream work")
	assert.Equal(t, []int32{5, 6}, Slice(dst))
}
