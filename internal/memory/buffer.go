package memory

import (
	"fmt"
	"unsafe"

	"github.com/axon-gpu/axon/internal/driver"
)

// Buffer exclusively owns an allocation sized for capacity contiguous T
// elements in the region selected by P. Zero-capacity and zero-size-element
// buffers allocate nothing but stay distinguishable from released buffers:
// they behave as ordinary empty sequences, not as freed memory.
type Buffer[T any, P Policy] struct {
	ctx *Context
	ptr driver.Ptr
	cap int
}

// NewBufferUninitialized allocates room for count elements without writing
// them.
//
// The overflow check on count * element size runs before any driver call,
// so a rejected request never leaves partial allocation state behind. The
// contents are undefined until every element the caller will read has been
// written, via Slice or a transfer.
func NewBufferUninitialized[T any, P Policy](ctx *Context, count int) (*Buffer[T, P], error) {
	if count < 0 {
		return nil, fmt.Errorf("memory: negative buffer capacity %d", count)
	}
	var pol P
	elem := sizeOf[T]()
	if elem == 0 || count == 0 {
		return &Buffer[T, P]{ctx: ctx, ptr: sentinelPtr(pol.region()), cap: count}, nil
	}
	if uintptr(count) > ^uintptr(0)/elem {
		return nil, ErrSizeOverflow
	}
	bytes := uintptr(count) * elem
	p, err := ctx.drv.Alloc(pol.region(), bytes)
	if err != nil {
		return nil, &AllocError{Region: pol.region(), Size: bytes, Err: err}
	}
	return &Buffer[T, P]{ctx: ctx, ptr: p, cap: count}, nil
}

// NewBuffer allocates a buffer of count elements, every one set to val.
// Filling writes through the host, so only host-dereferenceable policies
// compile; build a device buffer by filling a Locked one and copying.
func NewBuffer[T any, P HostPolicy](ctx *Context, val T, count int) (*Buffer[T, P], error) {
	b, err := NewBufferUninitialized[T, P](ctx, count)
	if err != nil {
		return nil, err
	}
	s := Slice(b)
	for i := range s {
		s[i] = val
	}
	return b, nil
}

// NewBufferFromSlice allocates a buffer sized to vals and copies every
// element in. Host-dereferenceable policies only, as with NewBuffer.
func NewBufferFromSlice[T any, P HostPolicy](ctx *Context, vals []T) (*Buffer[T, P], error) {
	b, err := NewBufferUninitialized[T, P](ctx, len(vals))
	if err != nil {
		return nil, err
	}
	copy(Slice(b), vals)
	return b, nil
}

// Len returns the buffer's capacity in elements.
func (b *Buffer[T, P]) Len() int { return b.cap }

// Released reports whether the buffer no longer owns an allocation.
func (b *Buffer[T, P]) Released() bool { return b.ptr.IsZero() }

// Slice exposes the buffer as a []T of length Len. The slice aliases the
// allocation directly: it is valid only while the buffer is live, and must
// not be used past TryFree, Free, or IntoRawParts. Only host-dereferenceable
// policies compile. Panics on a released buffer.
func Slice[T any, P HostPolicy](b *Buffer[T, P]) []T {
	if b.ptr.IsZero() {
		panic("memory: slice of released Buffer")
	}
	return unsafe.Slice((*T)(b.ptr.Raw()), b.cap)
}

// IntoRawParts consumes the buffer and returns its ownership token and
// capacity. No release runs; reassemble with AdoptRawParts.
func (b *Buffer[T, P]) IntoRawParts() (Raw, int) {
	raw := Raw{ptr: b.ptr}
	capacity := b.cap
	b.ptr = driver.Ptr{}
	b.cap = 0
	return raw, capacity
}

// AdoptRawParts reconstructs a buffer from a token and capacity previously
// produced by IntoRawParts on a buffer of the same element type and policy.
// A mismatched token, capacity, or element type is not detected and
// corrupts the owner table.
func AdoptRawParts[T any, P Policy](ctx *Context, raw Raw, capacity int) *Buffer[T, P] {
	return &Buffer[T, P]{ctx: ctx, ptr: raw.ptr, cap: capacity}
}

// Leak consumes the buffer and intentionally never releases the allocation.
func (b *Buffer[T, P]) Leak() Raw {
	raw, _ := b.IntoRawParts()
	return raw
}

// TryFree explicitly releases the allocation; see Box.TryFree for the
// failure contract. Trivially succeeds when no real allocation backs the
// buffer (zero capacity or zero-size elements).
func (b *Buffer[T, P]) TryFree() error {
	if err := tryFree(b.ctx, &b.ptr); err != nil {
		return err
	}
	b.cap = 0
	return nil
}

// Free releases the allocation on the implicit, end-of-scope path; see
// Box.Free. Intended for defer; failure is fatal.
func (b *Buffer[T, P]) Free() {
	implicitFree(b.ctx, &b.ptr)
	b.cap = 0
}
