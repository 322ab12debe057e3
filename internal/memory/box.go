package memory

import (
	"cmp"
	"hash/maphash"
	"runtime"
	"unsafe"

	"go.uber.org/zap"

	"github.com/axon-gpu/axon/internal/driver"
)

// Box exclusively owns one allocation sized for a single T in the region
// selected by P. A Box is either live (owning a valid allocation, or the
// zero-size sentinel) or released; it is never partially initialized once a
// constructor returns.
//
// Release is explicit and two-tiered: TryFree reports failure and keeps the
// handle usable, Free treats failure as unrecoverable. There is no silent
// path that discards a release error.
type Box[T any, P Policy] struct {
	ctx *Context
	ptr driver.Ptr
}

func sizeOf[T any]() uintptr {
	return unsafe.Sizeof(*new(T))
}

// NewBox allocates room for one T and writes val into it. For a zero-size T
// no driver call is made; the box carries a sentinel token instead. A driver
// rejection is propagated untouched inside an AllocError.
func NewBox[T any, P Policy](ctx *Context, val T) (*Box[T, P], error) {
	b, err := NewBoxUninitialized[T, P](ctx)
	if err != nil {
		return nil, err
	}
	if sizeOf[T]() == 0 {
		return b, nil
	}

	var pol P
	if pol.hostAccessible() {
		*(*T)(b.ptr.Raw()) = val
		return b, nil
	}

	// Device region: stage the value through a blocking copy.
	src := driver.HostPtr(unsafe.Pointer(&val), sizeOf[T]())
	if err := ctx.drv.Memcpy(b.ptr, src, sizeOf[T]()); err != nil {
		b.Free()
		return nil, err
	}
	runtime.KeepAlive(&val)
	return b, nil
}

// NewBoxUninitialized allocates room for one T without writing anything.
//
// The contents are undefined until the caller fully initializes them, via
// Store or a transfer; reading first observes garbage. This is the only
// constructor-side escape hatch and exists for transfers that would
// overwrite the value anyway.
func NewBoxUninitialized[T any, P Policy](ctx *Context) (*Box[T, P], error) {
	var pol P
	if sizeOf[T]() == 0 {
		return &Box[T, P]{ctx: ctx, ptr: sentinelPtr(pol.region())}, nil
	}
	p, err := ctx.drv.Alloc(pol.region(), sizeOf[T]())
	if err != nil {
		return nil, &AllocError{Region: pol.region(), Size: sizeOf[T](), Err: err}
	}
	return &Box[T, P]{ctx: ctx, ptr: p}, nil
}

// AdoptRawBox reconstructs a Box from a token produced by IntoRaw on a box
// of the same element type and policy. Ownership transfers to the new box.
// Adopting a foreign or already-adopted token is not detected and corrupts
// the owner table.
func AdoptRawBox[T any, P Policy](ctx *Context, raw Raw) *Box[T, P] {
	return &Box[T, P]{ctx: ctx, ptr: raw.ptr}
}

// IntoRaw consumes the box and returns its ownership token. No release
// runs; the caller is responsible for the allocation, typically by adopting
// the token into a new box later.
func (b *Box[T, P]) IntoRaw() Raw {
	raw := Raw{ptr: b.ptr}
	b.ptr = driver.Ptr{}
	return raw
}

// Leak consumes the box and intentionally never releases the allocation.
// The token is returned for reference only; the memory lives for the rest
// of the process.
func (b *Box[T, P]) Leak() Raw {
	raw := Raw{ptr: b.ptr}
	b.ptr = driver.Ptr{}
	return raw
}

// Released reports whether the box no longer owns an allocation.
func (b *Box[T, P]) Released() bool { return b.ptr.IsZero() }

// TryFree explicitly releases the allocation. On failure the error is
// returned as a ReleaseError and the box remains live and fully usable, so
// the caller can retry, keep it, or escalate. Trivially succeeds for the
// zero-size sentinel. Returns ErrReleased if the box was already released.
func (b *Box[T, P]) TryFree() error {
	return tryFree(b.ctx, &b.ptr)
}

// Free releases the allocation on the implicit, end-of-scope path, intended
// for defer. A release failure here has no caller to report to and is
// escalated as fatal rather than silently dropped; use TryFree first when
// recoverability matters. Free on an already-released box is a no-op.
func (b *Box[T, P]) Free() {
	implicitFree(b.ctx, &b.ptr)
}

func tryFree(ctx *Context, p *driver.Ptr) error {
	if p.IsZero() {
		return ErrReleased
	}
	if isSentinel(*p) {
		*p = driver.Ptr{}
		return nil
	}
	if err := ctx.drv.Free(*p); err != nil {
		return &ReleaseError{Region: p.Region(), Err: err}
	}
	*p = driver.Ptr{}
	return nil
}

func implicitFree(ctx *Context, p *driver.Ptr) {
	if p.IsZero() {
		return
	}
	if isSentinel(*p) {
		*p = driver.Ptr{}
		return
	}
	if err := ctx.drv.Free(*p); err != nil {
		ctx.log.Fatal("memory: release failed on implicit free path",
			zap.Stringer("region", p.Region()),
			zap.Uint64("bytes", uint64(p.Size())),
			zap.Error(err))
	}
	*p = driver.Ptr{}
}

// Deref returns a pointer to the boxed value. Only host-dereferenceable
// policies compile; a Device box has no direct access and must be copied to
// host-visible memory first. Panics on a released box.
func Deref[T any, P HostPolicy](b *Box[T, P]) *T {
	if b.ptr.IsZero() {
		panic("memory: deref of released Box")
	}
	return (*T)(b.ptr.Raw())
}

// Load reads the boxed value.
func Load[T any, P HostPolicy](b *Box[T, P]) T {
	return *Deref(b)
}

// Store writes the boxed value.
func Store[T any, P HostPolicy](b *Box[T, P], val T) {
	*Deref(b) = val
}

// LeakRef consumes the box and returns a pointer valid for the remainder of
// the process. The allocation is never released.
func LeakRef[T any, P HostPolicy](b *Box[T, P]) *T {
	p := Deref(b)
	b.Leak()
	return p
}

// BoxEqual reports whether two boxes hold equal values. Equality delegates
// to the pointee, not the allocation identity.
func BoxEqual[T comparable, P HostPolicy](a, b *Box[T, P]) bool {
	return Load(a) == Load(b)
}

// BoxCompare orders two boxes by their contained values.
func BoxCompare[T cmp.Ordered, P HostPolicy](a, b *Box[T, P]) int {
	return cmp.Compare(Load(a), Load(b))
}

// BoxHash hashes the contained value, so two boxes holding equal values
// hash identically under the same seed.
func BoxHash[T comparable, P HostPolicy](seed maphash.Seed, b *Box[T, P]) uint64 {
	return maphash.Comparable(seed, Load(b))
}
