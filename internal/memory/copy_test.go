package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axon-gpu/axon/internal/driver/hostsim"
)

func TestCopyBufferHostDeviceHost(t *testing.T) {
	ctx, _ := testContext(t)

	src, err := NewBufferFromSlice[int32, Locked](ctx, []int32{1, 2, 3, 4})
	require.NoError(t, err)
	defer src.Free()

	dev, err := NewBufferUninitialized[int32, Device](ctx, 4)
	require.NoError(t, err)
	defer dev.Free()

	back, err := NewBuffer[int32, Locked](ctx, 0, 4)
	require.NoError(t, err)
	defer back.Free()

	require.NoError(t, CopyBuffer(dev, src))
	require.NoError(t, CopyBuffer(back, dev))
	assert.Equal(t, []int32{1, 2, 3, 4}, Slice(back))
}

func TestCopyBufferSizeMismatch(t *testing.T) {
	ctx, _ := testContext(t)

	a, err := NewBuffer[byte, Locked](ctx, 0, 4)
	require.NoError(t, err)
	defer a.Free()
	b, err := NewBuffer[byte, Locked](ctx, 0, 5)
	require.NoError(t, err)
	defer b.Free()

	err = CopyBuffer(a, b)
	var mismatch *SizeMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, 4, mismatch.Dst)
	assert.Equal(t, 5, mismatch.Src)

	// Nothing was truncated.
	assert.Equal(t, []byte{0, 0, 0, 0}, Slice(a))
}

func TestCopyInOut(t *testing.T) {
	ctx, _ := testContext(t)

	dev, err := NewBufferUninitialized[uint64, Device](ctx, 3)
	require.NoError(t, err)
	defer dev.Free()

	require.NoError(t, CopyIn(dev, []uint64{10, 20, 30}))

	out := make([]uint64, 3)
	require.NoError(t, CopyOut(out, dev))
	assert.Equal(t, []uint64{10, 20, 30}, out)

	assert.Error(t, CopyIn(dev, []uint64{1}))
	assert.Error(t, CopyOut(make([]uint64, 2), dev))
}

func TestCopyBoxBetweenPolicies(t *testing.T) {
	ctx, _ := testContext(t)

	src, err := NewBox[float64, Unified](ctx, 2.5)
	require.NoError(t, err)
	defer src.Free()

	dev, err := NewBoxUninitialized[float64, Device](ctx)
	require.NoError(t, err)
	defer dev.Free()

	dst, err := NewBoxUninitialized[float64, Locked](ctx)
	require.NoError(t, err)
	defer dst.Free()

	require.NoError(t, CopyBox(dev, src))
	require.NoError(t, CopyBox(dst, dev))
	assert.Equal(t, 2.5, Load(dst))
}

func TestCopyReleasedEndpoint(t *testing.T) {
	ctx, _ := testContext(t)

	a, err := NewBuffer[byte, Locked](ctx, 0, 2)
	require.NoError(t, err)
	b, err := NewBuffer[byte, Locked](ctx, 0, 2)
	require.NoError(t, err)
	require.NoError(t, b.TryFree())

	assert.ErrorIs(t, CopyBuffer(a, b), ErrReleased)
	assert.ErrorIs(t, CopyBuffer(b, a), ErrReleased)
	require.NoError(t, a.TryFree())
}

func TestCopyAcrossContextsRefused(t *testing.T) {
	ctx1, _ := testContext(t)

	d2 := hostsim.New()
	t.Cleanup(func() { _ = d2.Close() })
	ctx2 := NewContext(d2)

	a, err := NewBuffer[byte, Locked](ctx1, 0, 2)
	require.NoError(t, err)
	defer a.Free()
	b, err := NewBuffer[byte, Locked](ctx2, 0, 2)
	require.NoError(t, err)
	defer b.Free()

	assert.ErrorIs(t, CopyBuffer(a, b), ErrContextMismatch)
}

func TestCopyZeroSizedElements(t *testing.T) {
	ctx, _ := testContext(t)

	a, err := NewBuffer[empty, Locked](ctx, empty{}, 3)
	require.NoError(t, err)
	defer a.Free()
	b, err := NewBuffer[empty, Unified](ctx, empty{}, 3)
	require.NoError(t, err)
	defer b.Free()

	assert.NoError(t, CopyBuffer(a, b))
}
